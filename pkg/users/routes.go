package users

import (
	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/auth"
	"github.com/libraryhub/libraryhub/pkg/policy"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	users := e.Group("/users")

	// Signing up is open to anyone.
	users.POST("", h.register)

	users.GET("/me", h.me, authMiddleware.Authenticate)
	users.PATCH("/me", h.updateMe, authMiddleware.Authenticate)

	// Everything else is for staff.
	manage := []echo.MiddlewareFunc{
		authMiddleware.AuthenticateOptional,
		authMiddleware.RequirePermission(policy.ResourceUsers, policy.OperationManage),
	}
	users.GET("", h.list, manage...)
	users.GET("/:id", h.retrieve, manage...)
	users.PATCH("/:id", h.update, manage...)

	return userService
}
