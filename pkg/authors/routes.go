package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/auth"
	"github.com/libraryhub/libraryhub/pkg/policy"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers author routes on a pre-configured group.
// The group is expected to run AuthenticateOptional.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, authMiddleware *auth.Middleware) {
	h := &handler{
		authorService: NewService(db),
	}

	g.GET("", h.list, authMiddleware.RequirePermission(policy.ResourceAuthors, policy.OperationRead))
	g.GET("/:id", h.retrieve, authMiddleware.RequirePermission(policy.ResourceAuthors, policy.OperationRead))
	g.POST("", h.create, authMiddleware.RequirePermission(policy.ResourceAuthors, policy.OperationCreate))
	g.PUT("/:id", h.replace, authMiddleware.RequirePermission(policy.ResourceAuthors, policy.OperationUpdate))
	g.PATCH("/:id", h.update, authMiddleware.RequirePermission(policy.ResourceAuthors, policy.OperationUpdate))
	g.DELETE("/:id", h.delete, authMiddleware.RequirePermission(policy.ResourceAuthors, policy.OperationDelete))
}
