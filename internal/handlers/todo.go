package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reminder/internal/domain"
	"reminder/internal/dto"
	"reminder/internal/service"
)

// TodoHandler exposes the todo service over HTTP.
type TodoHandler struct {
	svc *service.TodoService
}

// NewTodoHandler returns a new TodoHandler.
func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Create handles POST /todos.
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Create(c.Request.Context(), service.CreateTodo{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		RemindAt:    req.RemindAt.Ptr(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromTodo(t))
}

// List handles GET /todos. With a userId query parameter it lists that
// user's todos, otherwise todos across all users.
func (h *TodoHandler) List(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}

	var (
		list []domain.Todo
		err  error
	)
	if userID := c.Query("userId"); userID != "" {
		list, err = h.svc.ListByUser(c.Request.Context(), userID, limit, offset)
	} else {
		list, err = h.svc.ListAll(c.Request.Context(), limit, offset)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTodosResponse{Items: dto.FromTodos(list)})
}

// ListByUser handles GET /users/:id/todos.
func (h *TodoHandler) ListByUser(c *gin.Context) {
	limit, offset, ok := parsePage(c)
	if !ok {
		return
	}
	list, err := h.svc.ListByUser(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTodosResponse{Items: dto.FromTodos(list)})
}

// GetByID handles GET /todos/:id.
func (h *TodoHandler) GetByID(c *gin.Context) {
	t, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Update handles PATCH /todos/:id.
func (h *TodoHandler) Update(c *gin.Context) {
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.UpdateTodo{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.RemindAt.Set() {
		in.RemindAtSet = true
		in.RemindAt = req.RemindAt.Ptr()
	}

	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Delete handles DELETE /todos/:id.
func (h *TodoHandler) Delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrTodoNotFound.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// Complete handles POST /todos/:id/complete.
func (h *TodoHandler) Complete(c *gin.Context) {
	t, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Share handles POST /todos/:id/share.
func (h *TodoHandler) Share(c *gin.Context) {
	var req dto.ShareTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.svc.Share(c.Request.Context(), c.Param("id"), req.TargetUserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromTodo(t))
}

// parsePage reads optional limit/offset query parameters. Zero means
// "not set".
func parsePage(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return 0, 0, false
		}
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return 0, 0, false
		}
	}
	return limit, offset, true
}

// respondError maps service errors to HTTP status codes: validation to 400,
// unknown ids to 404, conflicts to 409, everything else to 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyTitle), errors.Is(err, service.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTodoNotFound), errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSelfShare), errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
