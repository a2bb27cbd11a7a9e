package books

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

var maxDailyFee = decimal.NewFromInt(100)

type ListBooksOptions struct {
	Limit  *int
	Offset *int
	// Title filters to books whose title contains it, ignoring case.
	Title *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
	// AuthorIDs replaces the book's authors when set.
	AuthorIDs *[]int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// ValidateDailyFee checks that the fee is within [0, 100) with at most two
// fractional digits.
func ValidateDailyFee(fee models.Money) error {
	switch {
	case fee.IsNegative():
		return errcodes.ValidationError(`"daily_fee" must be greater than or equal to 0`)
	case fee.GreaterThanOrEqual(maxDailyFee):
		return errcodes.ValidationError(`"daily_fee" must be less than 100`)
	case !fee.HasCents():
		return errcodes.ValidationError(`"daily_fee" must have at most 2 decimal places`)
	}
	return nil
}

// CreateBook inserts the book and links it to the given authors.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book, authorIDs []int) error {
	if err := svc.validateBook(book); err != nil {
		return err
	}

	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return setAuthors(ctx, tx, book.ID, authorIDs)
	})
	if err != nil {
		return err
	}

	return svc.loadAuthors(ctx, book)
}

func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}

	err := svc.db.
		NewSelect().
		Model(book).
		Relation("Authors", orderAuthors).
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Authors", orderAuthors).
		Order("b.id ASC")

	if opts.Title != nil && *opts.Title != "" {
		q = q.Where("b.title LIKE ? ESCAPE '!'", "%"+escapeLike(*opts.Title)+"%")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 && opts.AuthorIDs == nil {
		return nil
	}
	if err := svc.validateBook(book); err != nil {
		return err
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.NotFound("Book")
		}
		if opts.AuthorIDs == nil {
			return nil
		}
		_, err = tx.NewDelete().
			Model((*models.BookAuthor)(nil)).
			Where("book_id = ?", book.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		return setAuthors(ctx, tx, book.ID, *opts.AuthorIDs)
	})
	if err != nil {
		return err
	}

	return svc.loadAuthors(ctx, book)
}

// DeleteBook deletes a book. Its borrowings and author links go with it.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	res, err := svc.db.NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

func (svc *Service) validateBook(book *models.Book) error {
	if book.Cover != models.CoverHard && book.Cover != models.CoverSoft {
		return errcodes.ValidationError(`"cover" must be one of the following: "Hard", "Soft"`)
	}
	if book.Inventory < 0 {
		return errcodes.ValidationError(`"inventory" must be greater than or equal to 0`)
	}
	return ValidateDailyFee(book.DailyFee)
}

func (svc *Service) loadAuthors(ctx context.Context, book *models.Book) error {
	book.Authors = []*models.Author{}
	err := svc.db.NewSelect().
		Model(&book.Authors).
		Join("JOIN book_authors AS ba ON ba.author_id = a.id").
		Where("ba.book_id = ?", book.ID).
		Order("a.id ASC").
		Scan(ctx)
	return errors.WithStack(err)
}

// setAuthors links the book to the authors, all of which must exist.
func setAuthors(ctx context.Context, tx bun.Tx, bookID int, authorIDs []int) error {
	ids := uniqueIDs(authorIDs)
	if len(ids) == 0 {
		return errcodes.ValidationError(`"authors" length must be greater than or equal to 1 element`)
	}

	count, err := tx.NewSelect().
		Model((*models.Author)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Count(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if count != len(ids) {
		return errcodes.ValidationError(`"authors" contains an author that doesn't exist`)
	}

	links := make([]*models.BookAuthor, 0, len(ids))
	for _, id := range ids {
		links = append(links, &models.BookAuthor{BookID: bookID, AuthorID: id})
	}
	_, err = tx.NewInsert().Model(&links).Exec(ctx)
	return errors.WithStack(err)
}

func orderAuthors(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("a.id ASC")
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
