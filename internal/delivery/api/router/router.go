// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"accounts/internal/delivery/api/middleware"
	"accounts/internal/delivery/api/response"
	"accounts/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", response.HealthCheck)

	users := e.Group("/users")
	{
		users.POST("", r.userHandler.RegisterUser)
		users.POST("/login", r.userHandler.Login)
		users.GET("/verify/:code", r.userHandler.VerifyEmail)
		users.POST("/reset_password", r.userHandler.RequestPasswordReset)
		users.POST("/reset_password/:code", r.userHandler.ConfirmPasswordReset)
	}

	// Static /me wins over /:id in echo's router regardless of registration order.
	protected := users.Group("", r.authMiddleware.Authenticate)
	{
		protected.GET("", r.userHandler.ListUsers)
		protected.GET("/me", r.userHandler.GetLoggedUser)
		protected.GET("/:id", r.userHandler.GetUser)
		protected.PUT("/:id", r.userHandler.UpdateUser)
		protected.DELETE("/:id", r.userHandler.DeleteUser)
	}
}
