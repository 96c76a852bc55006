package services

import (
	"context"
	"fmt"
	"strings"

	"capristore/internal/cart"
	"capristore/internal/models"
	"capristore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// Claims is the identity carried by a verified token.
type Claims struct {
	Subject  string // email
	UserID   int64
	FullName string
	Role     models.Role
}

// SessionKey identifies the cart that belongs to these claims.
func (c *Claims) SessionKey() string {
	return strings.ToLower(c.Subject)
}

// AuthService handles business logic for authentication and authorization.
// Accounts live in the backend; the gateway only verifies the tokens it issues.
type AuthService struct {
	repo      repositories.AuthRepository
	sessions  *cart.Sessions
	jwtSecret []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo repositories.AuthRepository, sessions *cart.Sessions, jwtSecret string) *AuthService {
	return &AuthService{
		repo:      repo,
		sessions:  sessions,
		jwtSecret: []byte(jwtSecret),
	}
}

// Login authenticates a user and returns the backend's token.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	return s.repo.Login(ctx, req)
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	return s.repo.Register(ctx, req)
}

// ForgotPassword requests a reset link. The outcome is not revealed to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.repo.ForgotPassword(ctx, strings.TrimSpace(email))
}

// ResetPassword sets a new password using a reset token.
func (s *AuthService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return s.repo.ResetPassword(ctx, req)
}

// ValidateResetToken reports whether a reset token can still be used.
func (s *AuthService) ValidateResetToken(ctx context.Context, token string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	return s.repo.ValidateResetToken(ctx, token)
}

// Logout drops the cart of the session.
func (s *AuthService) Logout(claims *Claims) {
	s.sessions.End(claims.SessionKey())
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	claims.Subject, _ = mapClaims["sub"].(string)
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if id, ok := mapClaims["userId"].(float64); ok {
		claims.UserID = int64(id)
	}
	claims.FullName, _ = mapClaims["fullName"].(string)
	role, _ := mapClaims["role"].(string)
	claims.Role = models.Role(strings.TrimPrefix(role, "ROLE_"))
	return claims, nil
}
