package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type googleRequest struct {
	Credential string `json:"credential"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.Auth.Signup(c.Request.Context(), req.Username, req.Password); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Signup successful")
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":    sess.Token,
		"username": sess.User.Username,
	})
}

func (h *Handler) Google(c *gin.Context) {
	var req googleRequest
	if !bindJSON(c, &req) {
		return
	}

	sess, err := h.Auth.GoogleLogin(c.Request.Context(), req.Credential)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": sess.Token,
		"user": gin.H{
			"username": sess.User.Username,
			"email":    sess.User.Email,
		},
	})
}
