package circulation

import (
	"context"
	"time"

	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// Engine couples ledger mutations to inventory changes. Each operation checks
// the persisted state and mutates it inside a single transaction, and the
// store's guarded updates make the check and the write one statement.
type Engine struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store Store, loc *time.Location, opts ...Option) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{store: store, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the current date in the engine's time zone.
func (e *Engine) Today() models.Date {
	return models.Today(e.now(), e.loc)
}

type CreateBorrowingOptions struct {
	UserID             int
	BookID             int
	ExpectedReturnDate models.Date
}

// CreateBorrowing takes a copy of the book out of inventory and records the
// borrowing for the user, borrowed today.
func (e *Engine) CreateBorrowing(ctx context.Context, opts CreateBorrowingOptions) (*models.Borrowing, error) {
	today := e.Today()
	if err := ValidateExpectedReturnDate(today, opts.ExpectedReturnDate); err != nil {
		return nil, err
	}

	now := e.now()
	borrowing := &models.Borrowing{
		CreatedAt:          now,
		UpdatedAt:          now,
		BorrowDate:         today,
		ExpectedReturnDate: opts.ExpectedReturnDate,
		BookID:             opts.BookID,
		UserID:             opts.UserID,
	}

	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		ok, err := tx.DecrementInventory(ctx, opts.BookID)
		if errors.Is(err, ErrNotFound) {
			return errcodes.ValidationError("Book not found")
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if !ok {
			return errcodes.ValidationError(MessageOutOfStock)
		}
		return errors.WithStack(tx.InsertBorrowing(ctx, borrowing))
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("book borrowed", logger.Data{
		"borrowing_id": borrowing.ID,
		"book_id":      borrowing.BookID,
		"user_id":      borrowing.UserID,
	})
	return borrowing, nil
}

type ReturnBorrowingOptions struct {
	BorrowingID int
	// ActualReturnDate defaults to today when nil.
	ActualReturnDate *models.Date
}

// ReturnBorrowing closes an outstanding borrowing and puts the book back into
// inventory. A borrowing can only be returned once.
func (e *Engine) ReturnBorrowing(ctx context.Context, opts ReturnBorrowingOptions) (*models.Borrowing, error) {
	returned := e.Today()
	if opts.ActualReturnDate != nil {
		returned = *opts.ActualReturnDate
	}

	var borrowing *models.Borrowing
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		borrowing, err = tx.GetBorrowing(ctx, opts.BorrowingID)
		if errors.Is(err, ErrNotFound) {
			return errcodes.NotFound("Borrowing")
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if !borrowing.IsActive() {
			return errcodes.ValidationError(MessageAlreadyReturned)
		}
		if err := ValidateActualReturnDate(borrowing.BorrowDate, returned); err != nil {
			return err
		}

		ok, err := tx.MarkReturned(ctx, borrowing.ID, returned)
		if err != nil {
			return errors.WithStack(err)
		}
		if !ok {
			// Someone else returned it between the read and the update.
			return errcodes.ValidationError(MessageAlreadyReturned)
		}
		return errors.WithStack(tx.IncrementInventory(ctx, borrowing.BookID))
	})
	if err != nil {
		return nil, err
	}

	borrowing.ActualReturnDate = &returned
	borrowing.UpdatedAt = e.now()
	logger.FromContext(ctx).Info("book returned", logger.Data{
		"borrowing_id": borrowing.ID,
		"book_id":      borrowing.BookID,
	})
	return borrowing, nil
}
