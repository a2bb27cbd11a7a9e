package auth

import "github.com/libraryhub/libraryhub/pkg/models"

// LoginPayload represents the login request body.
type LoginPayload struct {
	Email    string `json:"email" mod:"trim" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the token for clients that can't use the cookie.
type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}
