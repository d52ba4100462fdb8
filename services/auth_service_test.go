package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *utils.MemoryBlacklist) {
	db := setupTestDB(t)
	revoked := utils.NewMemoryBlacklist()
	tokens := utils.NewTokenService("test-secret", "clipper-lms", time.Hour)
	return NewAuthService(db, tokens, revoked, bcrypt.MinCost), revoked
}

func TestRegister(t *testing.T) {
	s, _ := newAuthService(t)

	user, err := s.Register(RegisterInput{Email: "  Siti@Example.com ", Password: "secret1", Name: "Siti"})
	require.NoError(t, err)
	assert.Equal(t, "siti@example.com", user.Email)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret1")))

	instructor, err := s.Register(RegisterInput{Email: "budi@example.com", Password: "secret1", Name: "Budi", Role: models.RoleInstructor})
	require.NoError(t, err)
	assert.Equal(t, models.RoleInstructor, instructor.Role)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newAuthService(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "secret1"}},
		{"short password", RegisterInput{Email: "a@example.com", Password: "12345"}},
		{"unknown role", RegisterInput{Email: "a@example.com", Password: "secret1", Role: "ROOT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(tt.input)
			assertKind(t, KindInvalidInput, err)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _ := newAuthService(t)

	_, err := s.Register(RegisterInput{Email: "dup@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = s.Register(RegisterInput{Email: "DUP@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLogin(t *testing.T) {
	s, _ := newAuthService(t)
	_, err := s.Register(RegisterInput{Email: "siti@example.com", Password: "secret1", Name: "Siti", Role: models.RoleInstructor})
	require.NoError(t, err)

	token, user, err := s.Login("SITI@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "siti@example.com", user.Email)

	claims, err := s.Tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.Identity(), claims.Identity())

	_, _, err = s.Login("siti@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login("ghost@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	s, revoked := newAuthService(t)
	_, err := s.Register(RegisterInput{Email: "siti@example.com", Password: "secret1"})
	require.NoError(t, err)

	token, _, err := s.Login("siti@example.com", "secret1")
	require.NoError(t, err)
	claims, err := s.Tokens.Verify(token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(context.Background(), claims))

	isRevoked, err := revoked.IsRevoked(context.Background(), claims.RegisteredClaims.ID)
	require.NoError(t, err)
	assert.True(t, isRevoked)

	err = s.Logout(context.Background(), &utils.CustomClaims{ID: 1})
	assertKind(t, KindInvalidInput, err)
}
