package borrowings

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/auth"
	"github.com/libraryhub/libraryhub/pkg/binder"
	"github.com/libraryhub/libraryhub/pkg/circulation"
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/libraryhub/libraryhub/pkg/policy"
	"github.com/pkg/errors"
)

type handler struct {
	borrowingService *Service
	engine           *circulation.Engine
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.GetUserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	params := CreateBorrowingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	expected, err := models.ParseDate(params.ExpectedReturnDate)
	if err != nil {
		return errcodes.ValidationError(`"expected_return_date" should be a date in the format YYYY-MM-DD`)
	}

	// Borrowings are always made for the requester.
	created, err := h.engine.CreateBorrowing(ctx, circulation.CreateBorrowingOptions{
		UserID:             user.ID,
		BookID:             params.Book,
		ExpectedReturnDate: expected,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	borrowing, err := h.borrowingService.RetrieveBorrowing(ctx, created.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, borrowing))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Borrowing")
	}

	borrowing, err := h.borrowingService.RetrieveBorrowing(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	// Other people's borrowings look the same as missing ones.
	if !policy.CanViewBorrowing(auth.GetUserFromContext(c), borrowing) {
		return errcodes.NotFound("Borrowing")
	}

	return errors.WithStack(c.JSON(http.StatusOK, borrowing))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBorrowingsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	var requested []int
	if params.Users != nil {
		requested = binder.ParseIDList(*params.Users)
	}

	borrowings, total, err := h.borrowingService.ListBorrowingsWithTotal(ctx, ListBorrowingsOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		UserIDs:  policy.BorrowingScope(auth.GetUserFromContext(c), requested),
		IsActive: params.IsActive,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	response := map[string]interface{}{
		"borrowings": borrowings,
		"total":      total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

func (h *handler) markReturned(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Borrowing")
	}

	c.Set("disallow_empty_body", false)
	params := ReturnBorrowingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := circulation.ReturnBorrowingOptions{BorrowingID: id}
	if params.ActualReturnDate != nil && *params.ActualReturnDate != "" {
		actual, err := models.ParseDate(*params.ActualReturnDate)
		if err != nil {
			return errcodes.ValidationError(`"actual_return_date" should be a date in the format YYYY-MM-DD`)
		}
		opts.ActualReturnDate = &actual
	}

	if _, err := h.engine.ReturnBorrowing(ctx, opts); err != nil {
		return errors.WithStack(err)
	}

	borrowing, err := h.borrowingService.RetrieveBorrowing(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, borrowing))
}

// methodNotAllowed answers direct updates and deletes. Borrowings only change
// through the return action.
func (h *handler) methodNotAllowed(c echo.Context) error {
	return errcodes.MethodNotAllowed(c.Request().Method)
}
