package borrowings

import (
	"context"
	"database/sql"

	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type ListBorrowingsOptions struct {
	Limit  *int
	Offset *int
	// UserIDs restricts the listing to these borrowers. nil means every
	// borrower, an empty slice means none.
	UserIDs  []int
	IsActive *bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveBorrowing(ctx context.Context, id int) (*models.Borrowing, error) {
	borrowing := &models.Borrowing{}

	err := svc.db.
		NewSelect().
		Model(borrowing).
		Relation("Book").
		Where("br.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Borrowing")
		}
		return nil, errors.WithStack(err)
	}

	return borrowing, nil
}

func (svc *Service) ListBorrowings(ctx context.Context, opts ListBorrowingsOptions) ([]*models.Borrowing, error) {
	b, _, err := svc.listBorrowingsWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBorrowingsWithTotal(ctx context.Context, opts ListBorrowingsOptions) ([]*models.Borrowing, int, error) {
	opts.includeTotal = true
	return svc.listBorrowingsWithTotal(ctx, opts)
}

func (svc *Service) listBorrowingsWithTotal(ctx context.Context, opts ListBorrowingsOptions) ([]*models.Borrowing, int, error) {
	borrowings := []*models.Borrowing{}
	if opts.UserIDs != nil && len(opts.UserIDs) == 0 {
		return borrowings, 0, nil
	}

	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&borrowings).
		Relation("Book").
		Order("br.id ASC")

	if opts.UserIDs != nil {
		q = q.Where("br.user_id IN (?)", bun.In(opts.UserIDs))
	}
	if opts.IsActive != nil {
		if *opts.IsActive {
			q = q.Where("br.actual_return_date IS NULL")
		} else {
			q = q.Where("br.actual_return_date IS NOT NULL")
		}
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

	return borrowings, total, nil
}
