package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yeremiapane/clipper-lms/models"
)

// ErrInvalidToken is returned for every verification failure. Callers are
// never told which check failed.
var ErrInvalidToken = errors.New("invalid token")

type CustomClaims struct {
	ID   uint        `json:"id"`
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

func (c *CustomClaims) Identity() models.Identity {
	return models.Identity{ID: c.ID, Role: c.Role, Name: c.Name}
}

// TokenService signs and verifies HS256 tokens. A zero ttl issues tokens
// without an expiry.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (ts *TokenService) Issue(identity models.Identity) (string, error) {
	now := ts.now()
	claims := &CustomClaims{
		ID:   identity.ID,
		Role: identity.Role,
		Name: identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   ts.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ts.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		ErrorLogger.Printf("Error signing token for user %d: %v", identity.ID, err)
		return "", err
	}
	return signed, nil
}

func (ts *TokenService) Verify(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		opts = append(opts, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.ID == 0 || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
