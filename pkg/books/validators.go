package books

import "github.com/libraryhub/libraryhub/pkg/models"

type ListBooksQuery struct {
	Limit  int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Title  *string `query:"title" json:"title,omitempty" mod:"trim" validate:"omitempty,max=511"`
}

// CreateBookPayload is used for POST and, since it replaces every field, PUT.
type CreateBookPayload struct {
	Title     string        `json:"title" mod:"trim" validate:"required,max=511"`
	Authors   []int         `json:"authors" validate:"required,min=1,dive,min=1"`
	Cover     string        `json:"cover" validate:"required,oneof=Hard Soft"`
	Inventory *int          `json:"inventory" validate:"required,min=0"`
	DailyFee  *models.Money `json:"daily_fee" validate:"required"`
}

type UpdateBookPayload struct {
	Title     *string       `json:"title,omitempty" mod:"trim" validate:"omitempty,ne=,max=511"`
	Authors   *[]int        `json:"authors,omitempty" validate:"omitempty,min=1,dive,min=1"`
	Cover     *string       `json:"cover,omitempty" validate:"omitempty,oneof=Hard Soft"`
	Inventory *int          `json:"inventory,omitempty" validate:"omitempty,min=0"`
	DailyFee  *models.Money `json:"daily_fee,omitempty"`
}
