package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"
)

var (
	errMissingToken = errors.New("Unauthorized: Missing token")
	errInvalidToken = errors.New("Unauthorized: Invalid token")
)

// AuthMiddleware is the authorization gate in front of every protected route.
// It requires "Authorization: Bearer <token>" and stores the caller's
// identity on the context.
func AuthMiddleware(tokens *utils.TokenService, revoked utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			utils.AbortWithError(c, http.StatusUnauthorized, errMissingToken)
			return
		}
		authenticate(c, tokens, revoked, strings.TrimPrefix(authHeader, "Bearer "))
	}
}

// WebSocketAuthMiddleware also accepts ?token= since browsers cannot set
// headers on a websocket upgrade.
func WebSocketAuthMiddleware(tokens *utils.TokenService, revoked utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, errMissingToken)
			return
		}
		authenticate(c, tokens, revoked, token)
	}
}

func authenticate(c *gin.Context, tokens *utils.TokenService, revoked utils.TokenBlacklist, raw string) {
	claims, err := tokens.Verify(strings.TrimSpace(raw))
	if err != nil {
		utils.AbortWithError(c, http.StatusUnauthorized, errInvalidToken)
		return
	}

	if revoked != nil && claims.RegisteredClaims.ID != "" {
		isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.RegisteredClaims.ID)
		if err != nil {
			utils.ErrorLogger.Printf("Error checking token revocation: %v", err)
			utils.AbortWithError(c, http.StatusInternalServerError, errors.New("Internal server error"))
			return
		}
		if isRevoked {
			utils.AbortWithError(c, http.StatusUnauthorized, errInvalidToken)
			return
		}
	}

	c.Set(identityKey, claims.Identity())
	c.Set(claimsKey, claims)
	c.Next()
}

// CurrentIdentity returns the identity stored by the gate.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok
}

func CurrentClaims(c *gin.Context) (*utils.CustomClaims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.CustomClaims)
	return claims, ok
}
