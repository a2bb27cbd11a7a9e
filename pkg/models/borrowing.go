package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Borrowing struct {
	bun.BaseModel `bun:"table:borrowings,alias:br"`

	ID                 int       `bun:",pk,nullzero" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	BorrowDate         Date      `bun:"type:text,notnull" json:"borrow_date"`
	ExpectedReturnDate Date      `bun:"type:text,notnull" json:"expected_return_date"`
	ActualReturnDate   *Date     `bun:"type:text" json:"actual_return_date"`
	BookID             int       `json:"book_id"`
	Book               *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	UserID             int       `json:"user_id"`
}

// IsActive reports whether the borrowing is still outstanding.
func (b *Borrowing) IsActive() bool {
	return b.ActualReturnDate == nil
}
