package handlers

import (
	"capristore/internal/middleware"
	"capristore/internal/models"
	"capristore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes on the /auth group.
// requireAuth guards the routes that act on the caller's session.
func (h *AuthHandler) RegisterRoutes(authRoutes fiber.Router, requireAuth fiber.Handler) {
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/forgot-password", h.HandleForgotPassword)
	authRoutes.Post("/reset-password", h.HandleResetPassword)
	authRoutes.Get("/validate-reset-token", h.HandleValidateResetToken)
	authRoutes.Post("/logout", requireAuth, h.HandleLogout)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.authService.Register(c.UserContext(), &req); err != nil {
		return respondError(c, h.logger, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

// HandleLogin forwards the credentials and returns the issued token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, h.logger, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message":  "Login successful",
		"token":    resp.Token,
		"userId":   resp.UserID,
		"fullName": resp.FullName,
		"role":     resp.Role,
	})
}

// HandleForgotPassword always answers the same way so account existence is not revealed.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		h.logger.Warn("forgot password request failed", zap.Error(err))
	}

	return c.JSON(fiber.Map{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// HandleResetPassword sets a new password from a reset token.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if ok, err := bindAndValidate(c, h.validate, &req); !ok {
		return err
	}

	if err := h.authService.ResetPassword(c.UserContext(), &req); err != nil {
		return respondError(c, h.logger, "Password reset failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}

// HandleValidateResetToken reports whether the token query parameter is still usable.
func (h *AuthHandler) HandleValidateResetToken(c *fiber.Ctx) error {
	valid, err := h.authService.ValidateResetToken(c.UserContext(), c.Query("token"))
	if err != nil {
		return respondError(c, h.logger, "Could not validate token", err)
	}
	return c.JSON(fiber.Map{
		"valid": valid,
	})
}

// HandleLogout ends the caller's cart session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return unauthenticated(c)
	}
	h.authService.Logout(claims)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}
