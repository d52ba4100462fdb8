package services

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a domain failure with a caller-safe message. Cause, when set, is
// for logs only.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

var (
	ErrDuplicateEmail     = &Error{Kind: KindConflict, Message: "User with this email already exists"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "Email already exists"}
	ErrAlreadyEnrolled    = &Error{Kind: KindConflict, Message: "Already enrolled in this course"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "Invalid email or password"}
)

func invalidInput(msg string) error { return &Error{Kind: KindInvalidInput, Message: msg} }

func forbidden(msg string) error { return &Error{Kind: KindForbidden, Message: msg} }

func notFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func internal(cause error) error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Cause: cause}
}

// KindOf classifies any error; errors not produced here are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
