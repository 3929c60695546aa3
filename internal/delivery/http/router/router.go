// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"splitpay/internal/delivery/http/middleware"
	"splitpay/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	authMiddleware      *middleware.AuthMiddleware
	rateLimitMiddleware *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		authMiddleware:      params.AuthMiddleware,
		rateLimitMiddleware: params.RateLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	e.POST("/register", r.authHandler.Register, r.rateLimitMiddleware.Limit)
	e.POST("/login", r.authHandler.Login, r.rateLimitMiddleware.Limit)

	// User routes that require authentication
	userGroup := e.Group("/user")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.authHandler.GetProfile)
	}
}
