package models

// Role is the authorization role carried in the backend's tokens.
type Role string

const (
	RoleCustomer Role = "CLIENTE"
	RoleAdmin    Role = "ADMIN"
)

// LoginRequest is the credential payload forwarded to the backend.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the sign-up payload forwarded to the backend.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
	Address  string `json:"address" validate:"omitempty,max=255"`
}

// AuthResponse is what the backend answers on a successful login or registration.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// ForgotPasswordRequest asks the backend to mail a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password using a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
