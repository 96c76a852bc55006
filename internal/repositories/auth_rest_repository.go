package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"capristore/internal/backend"
	"capristore/internal/models"
)

// RESTAuthRepository forwards account operations to the shop backend.
type RESTAuthRepository struct {
	client *backend.Client
}

// NewRESTAuthRepository creates a new instance of RESTAuthRepository.
func NewRESTAuthRepository(client *backend.Client) *RESTAuthRepository {
	return &RESTAuthRepository{client: client}
}

// Login exchanges credentials for a token.
func (r *RESTAuthRepository) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := r.client.Do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", mapError(err))
	}
	return &resp, nil
}

// Register creates a customer account.
func (r *RESTAuthRepository) Register(ctx context.Context, req *models.RegisterRequest) error {
	if err := r.client.Do(ctx, http.MethodPost, "/api/auth/register", nil, req, nil); err != nil {
		return fmt.Errorf("registration failed: %w", mapError(err))
	}
	return nil
}

// ForgotPassword asks the backend to mail a reset link.
func (r *RESTAuthRepository) ForgotPassword(ctx context.Context, email string) error {
	body := models.ForgotPasswordRequest{Email: email}
	if err := r.client.Do(ctx, http.MethodPost, "/api/auth/forgot-password", nil, body, nil); err != nil {
		return fmt.Errorf("password reset request failed: %w", mapError(err))
	}
	return nil
}

// ResetPassword sets a new password using a reset token.
func (r *RESTAuthRepository) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := r.client.Do(ctx, http.MethodPost, "/api/auth/reset-password", nil, req, nil); err != nil {
		return fmt.Errorf("password reset failed: %w", mapError(err))
	}
	return nil
}

// ValidateResetToken reports whether a reset token can still be used. The
// backend answers 400 for invalid tokens, which is not an error here.
func (r *RESTAuthRepository) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	var resp struct {
		Valid bool `json:"valid"`
	}
	err := r.client.Do(ctx, http.MethodGet, "/api/auth/validate-reset-token", url.Values{"token": {token}}, nil, &resp)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
			return false, nil
		}
		return false, fmt.Errorf("failed to validate reset token: %w", mapError(err))
	}
	return resp.Valid, nil
}
