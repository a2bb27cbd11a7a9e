package circulation

import (
	"context"

	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by a Tx when the requested row doesn't exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence port the Engine runs against. Every engine
// operation happens inside exactly one RunInTx call; if fn returns an error,
// nothing it did through the Tx may be persisted.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is a unit of work against the catalog and the ledger.
type Tx interface {
	// DecrementInventory takes one copy of the book out of inventory. It
	// reports false, without changing anything, when the book has no copies
	// left. A missing book is ErrNotFound.
	DecrementInventory(ctx context.Context, bookID int) (bool, error)
	// IncrementInventory puts one copy of the book back.
	IncrementInventory(ctx context.Context, bookID int) error
	InsertBorrowing(ctx context.Context, borrowing *models.Borrowing) error
	GetBorrowing(ctx context.Context, id int) (*models.Borrowing, error)
	// MarkReturned sets the actual return date of a borrowing that hasn't
	// been returned yet. It reports false, without changing anything, when
	// the persisted borrowing is already returned.
	MarkReturned(ctx context.Context, id int, date models.Date) (bool, error)
}
