package authors

type ListAuthorsQuery struct {
	Limit  int `query:"limit" json:"limit,omitempty" default:"25" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

type CreateAuthorPayload struct {
	FirstName string `json:"first_name" mod:"trim" validate:"required,max=255"`
	LastName  string `json:"last_name" mod:"trim" validate:"required,max=255"`
}

type UpdateAuthorPayload struct {
	FirstName *string `json:"first_name,omitempty" mod:"trim" validate:"omitempty,ne=,max=255"`
	LastName  *string `json:"last_name,omitempty" mod:"trim" validate:"omitempty,ne=,max=255"`
}
