package httperr

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HTTPError is the body of every JSON error reply.
type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

// Write aborts the chain so no later handler appends to the reply.
func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

// Status maps a business code to the status of its JSON reply. The empty
// code stands for an unexpected failure.
func Status(code string) int {
	switch {
	case code == "":
		return http.StatusInternalServerError
	case code == "not_owner", code == "not_master", code == "admin_required":
		return http.StatusForbidden
	case strings.HasSuffix(code, "_not_found"):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
