package repositories

import (
	"context"

	"capristore/internal/models"
)

// AuthRepository defines the interface for account operations.
type AuthRepository interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	ValidateResetToken(ctx context.Context, token string) (bool, error)
}
