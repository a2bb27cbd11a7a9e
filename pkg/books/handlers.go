package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Title:     params.Title,
		Cover:     params.Cover,
		Inventory: *params.Inventory,
		DailyFee:  *params.DailyFee,
	}
	if err := h.bookService.CreateBook(ctx, book, params.Authors); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, withAuthors(book)))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Title:  params.Title,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	for _, b := range books {
		withAuthors(b)
	}

	response := map[string]interface{}{
		"books": books,
		"total": total,
	}

	return errors.WithStack(c.JSON(http.StatusOK, response))
}

// replace handles PUT, which requires every field.
func (h *handler) replace(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	book.Title = params.Title
	book.Cover = params.Cover
	book.Inventory = *params.Inventory
	book.DailyFee = *params.DailyFee
	err = h.bookService.UpdateBook(ctx, book, UpdateBookOptions{
		Columns:   []string{"title", "cover", "inventory", "daily_fee"},
		AuthorIDs: &params.Authors,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.RetrieveBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	opts := UpdateBookOptions{Columns: []string{}, AuthorIDs: params.Authors}
	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.Cover != nil && *params.Cover != book.Cover {
		book.Cover = *params.Cover
		opts.Columns = append(opts.Columns, "cover")
	}
	if params.Inventory != nil && *params.Inventory != book.Inventory {
		book.Inventory = *params.Inventory
		opts.Columns = append(opts.Columns, "inventory")
	}
	if params.DailyFee != nil && !params.DailyFee.Equal(book.DailyFee.Decimal) {
		book.DailyFee = *params.DailyFee
		opts.Columns = append(opts.Columns, "daily_fee")
	}

	if err := h.bookService.UpdateBook(ctx, book, opts); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, withAuthors(book)))
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	if err := h.bookService.DeleteBook(ctx, id); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

// withAuthors makes sure a book without authors serializes them as [].
func withAuthors(book *models.Book) *models.Book {
	if book.Authors == nil {
		book.Authors = []*models.Author{}
	}
	return book
}
