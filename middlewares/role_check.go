package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/utils"
)

// RoleCheck lets the request through only for the given roles. It must run
// after one of the auth middlewares.
func RoleCheck(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			utils.AbortWithError(c, http.StatusUnauthorized, errors.New("Unauthorized: Authentication required"))
			return
		}

		for _, r := range roles {
			if identity.Role == r {
				c.Next()
				return
			}
		}
		utils.AbortWithError(c, http.StatusForbidden, errors.New("Forbidden: Access denied"))
	}
}
