package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"capristore/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const resetTokenLifetime = time.Hour

type mockUser struct {
	id           int64
	fullName     string
	email        string
	passwordHash string
	role         models.Role
}

type resetToken struct {
	email   string
	expires time.Time
	used    bool
}

// MockAuthRepository keeps accounts in memory and issues tokens signed with
// the same secret and claim layout the gateway verifies.
type MockAuthRepository struct {
	users       map[string]*mockUser
	resetTokens map[string]*resetToken
	jwtSecret   []byte
	tokenTTL    time.Duration
	nextID      int64
	now         func() time.Time
	mu          sync.RWMutex
}

// NewMockAuthRepository creates a new instance of MockAuthRepository.
func NewMockAuthRepository(jwtSecret string) *MockAuthRepository {
	return &MockAuthRepository{
		users:       make(map[string]*mockUser),
		resetTokens: make(map[string]*resetToken),
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    24 * time.Hour,
		now:         time.Now,
	}
}

// SeedUser adds an account with the given role, used to bootstrap an admin.
func (r *MockAuthRepository) SeedUser(fullName, email, password string, role models.Role) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := r.users[key]; exists {
		return fmt.Errorf("email '%s' already registered: %w", email, ErrConflict)
	}
	r.nextID++
	r.users[key] = &mockUser{
		id:           r.nextID,
		fullName:     fullName,
		email:        email,
		passwordHash: string(hashedPassword),
		role:         role,
	}
	return nil
}

// Login checks the password and returns a signed token.
func (r *MockAuthRepository) Login(_ context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	r.mu.RLock()
	user, ok := r.users[strings.ToLower(req.Email)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	now := r.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.email,
		"userId":   user.id,
		"fullName": user.fullName,
		"role":     string(user.role),
		"iat":      now.Unix(),
		"exp":      now.Add(r.tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(r.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		Token:    tokenString,
		UserID:   user.id,
		FullName: user.fullName,
		Role:     user.role,
	}, nil
}

// Register creates a customer account.
func (r *MockAuthRepository) Register(_ context.Context, req *models.RegisterRequest) error {
	return r.SeedUser(req.FullName, req.Email, req.Password, models.RoleCustomer)
}

// ForgotPassword issues a reset token for a known email. Unknown emails are
// not reported so the answer does not reveal which accounts exist.
func (r *MockAuthRepository) ForgotPassword(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := r.users[key]; !ok {
		return nil
	}
	for token, rt := range r.resetTokens {
		if rt.email == key {
			delete(r.resetTokens, token)
		}
	}
	r.resetTokens[uuid.New().String()] = &resetToken{email: key, expires: r.now().Add(resetTokenLifetime)}
	return nil
}

// PendingResetToken returns the unused reset token issued for email. There
// is no mailer behind the in-memory repository, so this stands in for it.
func (r *MockAuthRepository) PendingResetToken(email string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(email)
	for token, rt := range r.resetTokens {
		if rt.email == key && !rt.used {
			return token, true
		}
	}
	return "", false
}

// ResetPassword sets a new password and burns the token.
func (r *MockAuthRepository) ResetPassword(_ context.Context, req *models.ResetPasswordRequest) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rt, ok := r.resetTokens[req.Token]
	switch {
	case !ok:
		return fmt.Errorf("invalid token: %w", ErrInvalidInput)
	case r.now().After(rt.expires):
		return fmt.Errorf("the token has expired: %w", ErrInvalidInput)
	case rt.used:
		return fmt.Errorf("the token was already used: %w", ErrInvalidInput)
	}
	user, ok := r.users[rt.email]
	if !ok {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	user.passwordHash = string(hashedPassword)
	rt.used = true
	return nil
}

// ValidateResetToken reports whether a reset token exists, is unused and has not expired.
func (r *MockAuthRepository) ValidateResetToken(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.resetTokens[token]
	return ok && !rt.used && !r.now().After(rt.expires), nil
}
