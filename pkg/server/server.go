package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/libraryhub/libraryhub/pkg/auth"
	"github.com/libraryhub/libraryhub/pkg/authors"
	"github.com/libraryhub/libraryhub/pkg/binder"
	"github.com/libraryhub/libraryhub/pkg/books"
	"github.com/libraryhub/libraryhub/pkg/borrowings"
	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/testutils"
	"github.com/libraryhub/libraryhub/pkg/users"
	"github.com/libraryhub/libraryhub/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)
	e.GET("/version", versionHandler)

	authMiddleware := auth.RegisterRoutes(e, db, cfg)
	users.RegisterRoutes(e, db, authMiddleware)

	registerCatalogRoutes(e, db, cfg, authMiddleware)

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

// registerCatalogRoutes registers the book, author and borrowing routes.
// Anonymous requests are let through here; each route decides what it needs.
func registerCatalogRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, authMiddleware *auth.Middleware) {
	booksGroup := e.Group("/books")
	booksGroup.Use(authMiddleware.AuthenticateOptional)
	books.RegisterRoutesWithGroup(booksGroup, db, authMiddleware)

	authorsGroup := e.Group("/authors")
	authorsGroup.Use(authMiddleware.AuthenticateOptional)
	authors.RegisterRoutesWithGroup(authorsGroup, db, authMiddleware)

	borrowGroup := e.Group("/borrow")
	borrowGroup.Use(authMiddleware.AuthenticateOptional)
	borrowings.RegisterRoutesWithGroup(borrowGroup, db, cfg, authMiddleware)
}

func versionHandler(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"version": version.Version}))
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
