package models

import (
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	FirstName string    `bun:",nullzero" json:"first_name"`
	LastName  string    `bun:",nullzero" json:"last_name"`
}

// FullName is the display name of the author.
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}

func (a *Author) MarshalJSON() ([]byte, error) {
	type author Author
	return json.Marshal(struct {
		*author
		FullName string `json:"full_name"`
	}{(*author)(a), a.FullName()})
}
