package dto

import (
	"time"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=32"`
	Role      string `json:"role" validate:"required,oneof=landlord tenant"`
}

// ToInput converts the request to a service input.
func (r RegisterRequest) ToInput() service.RegisterInput {
	return service.RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Role:      r.Role,
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries an issued bearer token.
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// ToLoginResponse converts a login result.
func ToLoginResponse(res *service.LoginResult) *LoginResponse {
	return &LoginResponse{
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresAt: res.ExpiresAt,
		User:      res.User,
	}
}

// UpdateProfileRequest is the body of PATCH /auth/me.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" validate:"omitnil,min=1,max=100"`
	LastName  *string `json:"last_name" validate:"omitnil,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitnil,max=32"`
}

// ToInput converts the request to a service input.
func (r UpdateProfileRequest) ToInput() service.UpdateProfileInput {
	return service.UpdateProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

// ChangePasswordRequest is the body of POST /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}
