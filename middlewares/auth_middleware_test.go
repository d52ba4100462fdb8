package middlewares

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.InitLogger("error", "text")
	utils.InfoLogger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newProtectedRouter(tokens *utils.TokenService, revoked utils.TokenBlacklist) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens, revoked), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, identity)
	})
	r.GET("/admin", AuthMiddleware(tokens, revoked), RoleCheck(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/ws", WebSocketAuthMiddleware(tokens, revoked), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenService("secret", "clipper-lms", time.Hour)
	revoked := utils.NewMemoryBlacklist()
	r := newProtectedRouter(tokens, revoked)

	identity := models.Identity{ID: 5, Role: models.RoleStudent, Name: "Siti"}
	token, err := tokens.Issue(identity)
	require.NoError(t, err)

	w := doRequest(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Identity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, identity, got)

	w = doRequest(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Missing token", errorMessage(t, w))

	w = doRequest(r, "/me", "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Missing token", errorMessage(t, w))

	w = doRequest(r, "/me", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid token", errorMessage(t, w))
}

func TestAuthMiddlewareRejectsRevokedToken(t *testing.T) {
	tokens := utils.NewTokenService("secret", "", time.Hour)
	revoked := utils.NewMemoryBlacklist()
	r := newProtectedRouter(tokens, revoked)

	token, err := tokens.Issue(models.Identity{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)
	claims, err := tokens.Verify(token)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, doRequest(r, "/me", "Bearer "+token).Code)
	require.NoError(t, revoked.Revoke(context.Background(), claims.RegisteredClaims.ID, claims.ExpiresAt.Time))

	w := doRequest(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized: Invalid token", errorMessage(t, w))
}

func TestRoleCheck(t *testing.T) {
	tokens := utils.NewTokenService("secret", "", time.Hour)
	r := newProtectedRouter(tokens, nil)

	admin, err := tokens.Issue(models.Identity{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	student, err := tokens.Issue(models.Identity{ID: 2, Role: models.RoleStudent})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, doRequest(r, "/admin", "Bearer "+admin).Code)

	w := doRequest(r, "/admin", "Bearer "+student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Forbidden: Access denied", errorMessage(t, w))
}

func TestWebSocketAuthAcceptsQueryToken(t *testing.T) {
	tokens := utils.NewTokenService("secret", "", time.Hour)
	r := newProtectedRouter(tokens, nil)

	token, err := tokens.Issue(models.Identity{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, doRequest(r, "/ws?token="+token, "").Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, "/ws", "Bearer "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/ws", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "/ws?token=bad", "").Code)
}
