package borrowings

import (
	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/auth"
	"github.com/libraryhub/libraryhub/pkg/circulation"
	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/libraryhub/libraryhub/pkg/policy"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers borrowing routes on a pre-configured
// group. The group is expected to run AuthenticateOptional.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	h := &handler{
		borrowingService: NewService(db),
		engine:           circulation.NewEngine(NewStore(db), cfg.Location()),
	}

	g.GET("", h.list, authMiddleware.RequirePermission(policy.ResourceBorrowings, policy.OperationRead))
	g.GET("/:id", h.retrieve, authMiddleware.RequirePermission(policy.ResourceBorrowings, policy.OperationRead))
	g.POST("", h.create, authMiddleware.RequirePermission(policy.ResourceBorrowings, policy.OperationCreate))
	g.PATCH("/:id/return", h.markReturned, authMiddleware.RequirePermission(policy.ResourceBorrowings, policy.OperationReturn))

	update := authMiddleware.RequirePermission(policy.ResourceBorrowings, policy.OperationUpdate)
	g.PUT("/:id", h.methodNotAllowed, update)
	g.PATCH("/:id", h.methodNotAllowed, update)
	g.DELETE("/:id", h.methodNotAllowed, authMiddleware.RequirePermission(policy.ResourceBorrowings, policy.OperationDelete))
}
