package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var validate = validator.New()

// AuthService is the credential store: registration, login and logout.
type AuthService struct {
	DB      *gorm.DB
	Tokens  *utils.TokenService
	Revoked utils.TokenBlacklist
	Cost    int

	// dummyHash equalizes login cost for unknown emails.
	dummyHash []byte
}

func NewAuthService(db *gorm.DB, tokens *utils.TokenService, revoked utils.TokenBlacklist, cost int) *AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return &AuthService{
		DB:        db,
		Tokens:    tokens,
		Revoked:   revoked,
		Cost:      cost,
		dummyHash: dummy,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, invalidInput("A valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, invalidInput("Password must be at least 6 characters")
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.Valid() {
		return nil, invalidInput("Role must be one of ADMIN, INSTRUCTOR, STUDENT")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.Cost)
	if err != nil {
		return nil, internal(err)
	}

	user := models.User{
		Email:    email,
		Password: string(hashed),
		Name:     strings.TrimSpace(input.Name),
		Role:     role,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, internal(err)
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	return &user, nil
}

// Login returns the same error whether the email is unknown or the password
// does not match.
func (s *AuthService) Login(email, password string) (string, *models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if !utils.IsNotFound(err) {
			return "", nil, internal(err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user.Identity())
	if err != nil {
		return "", nil, internal(err)
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	return token, &user, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *utils.CustomClaims) error {
	if claims == nil || claims.RegisteredClaims.ID == "" {
		return invalidInput("Token cannot be revoked")
	}
	var until time.Time
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := s.Revoked.Revoke(ctx, claims.RegisteredClaims.ID, until); err != nil {
		return internal(err)
	}
	utils.InfoLogger.Printf("Token revoked for user %d", claims.ID)
	return nil
}
