package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clipper-lms/models"
)

func TestIssueAndVerify(t *testing.T) {
	ts := NewTokenService("secret", "clipper-lms", time.Hour)
	identity := models.Identity{ID: 7, Role: models.RoleInstructor, Name: "Budi"}

	token, err := ts.Issue(identity)
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity, claims.Identity())
	assert.NotEmpty(t, claims.RegisteredClaims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueGivesEachTokenItsOwnID(t *testing.T) {
	ts := NewTokenService("secret", "", time.Hour)
	identity := models.Identity{ID: 1, Role: models.RoleStudent, Name: "A"}

	first, err := ts.Issue(identity)
	require.NoError(t, err)
	second, err := ts.Issue(identity)
	require.NoError(t, err)

	c1, err := ts.Verify(first)
	require.NoError(t, err)
	c2, err := ts.Verify(second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.RegisteredClaims.ID, c2.RegisteredClaims.ID)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	ts := NewTokenService("secret", "", time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	ts.now = func() time.Time { return issuedAt }

	token, err := ts.Issue(models.Identity{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)

	ts.now = time.Now
	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestZeroTTLIssuesTokenWithoutExpiry(t *testing.T) {
	ts := NewTokenService("secret", "", 0)
	token, err := ts.Issue(models.Identity{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	ts := NewTokenService("secret", "clipper-lms", time.Hour)
	other := NewTokenService("other-secret", "clipper-lms", time.Hour)
	wrongIssuer := NewTokenService("secret", "someone-else", time.Hour)

	foreign, err := other.Issue(models.Identity{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)
	misissued, err := wrongIssuer.Issue(models.Identity{ID: 1, Role: models.RoleStudent})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{ID: 1, Role: models.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		ID:               1,
		Role:             "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "clipper-lms"},
	})
	badRoleToken, err := badRole.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"wrong issuer", misissued},
		{"alg none", unsigned},
		{"unknown role", badRoleToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
