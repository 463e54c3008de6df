package handlers

import (
	"errors"
	"io"
	"net/http"

	"kanban/internal/domain"
	"kanban/internal/logger"

	"github.com/gin-gonic/gin"
)

var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrMissingCredentials, http.StatusBadRequest, "Username and password required"},
	{domain.ErrUsernameTaken, http.StatusBadRequest, "Username already exists"},
	{domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{domain.ErrMissingCredential, http.StatusBadRequest, "Missing credential"},
	{domain.ErrInvalidGoogleToken, http.StatusUnauthorized, "Invalid Google token"},
	{domain.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{domain.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
	{domain.ErrAlreadyShared, http.StatusBadRequest, "Task already shared with this user"},
	{domain.ErrNotOwner, http.StatusForbidden, "Not an owner of this task"},
	{domain.ErrEmptyText, http.StatusBadRequest, "Task text required"},
	{domain.ErrInvalidStatus, http.StatusBadRequest, "Invalid status"},
	{domain.ErrMissingShareTarget, http.StatusBadRequest, "Target username required"},
}

// writeError maps domain errors to their HTTP status and message. Anything
// else is logged and reported as an internal error.
func writeError(c *gin.Context, err error) {
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			c.JSON(r.status, gin.H{"error": r.message})
			return
		}
	}

	logger.WithContext(c.Request.Context()).Error("request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"error", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// bindJSON decodes the body into dst. An empty body leaves dst zeroed so
// the field checks report what is missing.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
