package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondJSON writes {"message": message, ...payload}.
func RespondJSON(c *gin.Context, code int, message string, payload gin.H) {
	body := gin.H{"message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

// AbortWithError responds and stops the handler chain.
func AbortWithError(c *gin.Context, code int, err error) {
	RespondError(c, code, err)
	c.Abort()
}
