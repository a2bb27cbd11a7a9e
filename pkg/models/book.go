package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Cover types.
const (
	CoverHard = "Hard"
	CoverSoft = "Soft"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `bun:",nullzero" json:"title"`
	Authors   []*Author `bun:"m2m:book_authors,join:Book=Author" json:"authors"`
	Cover     string    `bun:",nullzero" json:"cover"`
	Inventory int       `bun:",notnull" json:"inventory"`
	DailyFee  Money     `bun:"type:text,notnull" json:"daily_fee"`
}

// InStock reports whether at least one copy can be borrowed.
func (b *Book) InStock() bool {
	return b.Inventory > 0
}

// BookAuthor is the join model of the books <-> authors relation.
type BookAuthor struct {
	bun.BaseModel `bun:"table:book_authors,alias:ba"`

	BookID   int     `bun:",pk"`
	Book     *Book   `bun:"rel:belongs-to,join:book_id=id"`
	AuthorID int     `bun:",pk"`
	Author   *Author `bun:"rel:belongs-to,join:author_id=id"`
}
