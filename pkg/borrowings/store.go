package borrowings

import (
	"context"
	"database/sql"
	"time"

	"github.com/libraryhub/libraryhub/pkg/circulation"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Store runs circulation transactions against the database.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx circulation.Tx) error) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &storeTx{tx})
	})
}

type storeTx struct {
	tx bun.Tx
}

func (t *storeTx) DecrementInventory(ctx context.Context, bookID int) (bool, error) {
	res, err := t.tx.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("inventory = inventory - 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", bookID).
		Where("inventory > 0").
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	if n > 0 {
		return true, nil
	}

	exists, err := t.tx.
		NewSelect().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exists(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if !exists {
		return false, circulation.ErrNotFound
	}
	return false, nil
}

func (t *storeTx) IncrementInventory(ctx context.Context, bookID int) error {
	res, err := t.tx.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("inventory = inventory + 1").
		Set("updated_at = ?", time.Now()).
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return circulation.ErrNotFound
	}
	return nil
}

func (t *storeTx) InsertBorrowing(ctx context.Context, borrowing *models.Borrowing) error {
	_, err := t.tx.
		NewInsert().
		Model(borrowing).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (t *storeTx) GetBorrowing(ctx context.Context, id int) (*models.Borrowing, error) {
	borrowing := &models.Borrowing{}
	err := t.tx.
		NewSelect().
		Model(borrowing).
		Where("br.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, circulation.ErrNotFound
		}
		return nil, errors.WithStack(err)
	}
	return borrowing, nil
}

func (t *storeTx) MarkReturned(ctx context.Context, id int, date models.Date) (bool, error) {
	res, err := t.tx.
		NewUpdate().
		Model((*models.Borrowing)(nil)).
		Set("actual_return_date = ?", date).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Where("actual_return_date IS NULL").
		Exec(ctx)
	if err != nil {
		return false, errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n > 0, nil
}
