package handlers

import (
	"kanban/internal/http/middleware"
	"kanban/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Auth   *service.AuthService
	Tasks  *service.TaskService
	Tokens *service.TokenIssuer
	Users  service.UserStore
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, tokens *service.TokenIssuer, users service.UserStore) *Handler {
	return &Handler{Auth: auth, Tasks: tasks, Tokens: tokens, Users: users}
}

// userID returns the caller id set by middleware.JWT.
func userID(c *gin.Context) (string, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}
