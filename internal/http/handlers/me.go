package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}
