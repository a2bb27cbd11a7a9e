package users

// RegisterPayload represents the request body for signing up.
type RegisterPayload struct {
	Email     string `json:"email" mod:"trim" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" mod:"trim" validate:"max=255"`
	LastName  string `json:"last_name" mod:"trim" validate:"max=255"`
}

// UpdateMePayload represents the request body for updating your own account.
type UpdateMePayload struct {
	FirstName       *string `json:"first_name" mod:"trim" validate:"omitempty,max=255"`
	LastName        *string `json:"last_name" mod:"trim" validate:"omitempty,max=255"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=8,max=128"`
}

// UpdateUserPayload represents the request body for staff updating a user.
type UpdateUserPayload struct {
	FirstName *string `json:"first_name" mod:"trim" validate:"omitempty,max=255"`
	LastName  *string `json:"last_name" mod:"trim" validate:"omitempty,max=255"`
	IsStaff   *bool   `json:"is_staff"`
	IsActive  *bool   `json:"is_active"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	Limit  int `query:"limit" json:"limit" default:"50" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset" validate:"min=0"`
}
