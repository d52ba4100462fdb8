package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/clipper-lms/middlewares"
	"github.com/yeremiapane/clipper-lms/models"
	"github.com/yeremiapane/clipper-lms/services"
	"github.com/yeremiapane/clipper-lms/utils"
)

var errAuthRequired = errors.New("Unauthorized: Authentication required")

// respondServiceError maps a domain error onto its HTTP status. Internal
// causes are logged and never sent to the client.
func respondServiceError(c *gin.Context, err error) {
	var status int
	switch services.KindOf(err) {
	case services.KindInvalidInput, services.KindConflict:
		status = http.StatusBadRequest
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	default:
		utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, errors.Unwrap(err))
		_ = c.Error(err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Internal server error"))
		return
	}
	utils.RespondError(c, status, err)
}

// identityOrAbort fetches the caller set by the auth middleware.
func identityOrAbort(c *gin.Context) (models.Identity, bool) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, errAuthRequired)
	}
	return identity, ok
}

// parseID reads a positive numeric path parameter; what names the entity in
// the error message.
func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Invalid "+what+" ID"))
		return 0, false
	}
	return uint(id), true
}
