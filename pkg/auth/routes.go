package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all auth routes and returns the middleware the
// other route groups authenticate with.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) *Middleware {
	authService := NewService(db, cfg.JWTSecret, cfg.TokenExpiry)
	authMiddleware := NewMiddleware(authService)

	h := &handler{
		authService: authService,
	}

	g := e.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, authMiddleware.Authenticate)

	return authMiddleware
}
