package borrowings

type CreateBorrowingPayload struct {
	Book               int    `json:"book" validate:"required,min=1"`
	ExpectedReturnDate string `json:"expected_return_date" mod:"trim" validate:"required,date"`
}

type ReturnBorrowingPayload struct {
	// ActualReturnDate defaults to today.
	ActualReturnDate *string `json:"actual_return_date,omitempty" mod:"trim" validate:"omitempty,date"`
}

type ListBorrowingsQuery struct {
	Limit    int     `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset   int     `query:"offset" json:"offset,omitempty" validate:"min=0"`
	IsActive *bool   `query:"is_active" json:"is_active,omitempty"`
	Users    *string `query:"users" json:"users,omitempty" mod:"trim" validate:"omitempty,idlist"`
}
