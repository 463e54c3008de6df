package handlers

import (
	"net/http"

	"kanban/internal/domain"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Text string `json:"text"`
}

// updateTaskRequest uses pointers so omitted fields stay unchanged.
type updateTaskRequest struct {
	Text   *string `json:"text"`
	Status *string `json:"status"`
}

type shareTaskRequest struct {
	ToUsername string `json:"toUsername"`
}

func (h *Handler) ListTasks(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.Tasks.Create(c.Request.Context(), uid, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, id)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	var req updateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := domain.TaskPatch{Text: req.Text}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		patch.Status = &status
	}

	if err := h.Tasks.Update(c.Request.Context(), uid, c.Param("id"), patch); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Task updated")
}

func (h *Handler) DeleteTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	if err := h.Tasks.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Task deleted")
}

func (h *Handler) ShareTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing Authorization header"})
		return
	}

	var req shareTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Tasks.Share(c.Request.Context(), uid, c.Param("id"), req.ToUsername); err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, "Task shared")
}
