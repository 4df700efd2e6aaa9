package app

import (
	"github.com/gin-gonic/gin"

	"reminder/internal/config"
	"reminder/internal/handlers"
	"reminder/internal/service"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, todos *service.TodoService, users *service.UserService) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))

	api := r.Group("/api/v1")

	userHandler := handlers.NewUserHandler(users)
	todoHandler := handlers.NewTodoHandler(todos)
	registerUserRoutes(api, userHandler, todoHandler)
	registerTodoRoutes(api, todoHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Todo Reminder Service",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler, th *handlers.TodoHandler) {
	api.POST("/users", h.Create)
	api.GET("/users", h.List)
	api.GET("/users/:id", h.GetByID)
	api.GET("/users/:id/todos", th.ListByUser)
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
	api.POST("/todos/:id/complete", h.Complete)
	api.POST("/todos/:id/share", h.Share)
}
