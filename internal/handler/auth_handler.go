package handler

import (
	"net/http"

	"github.com/dafibh/budget-ledger/internal/domain"
	"github.com/dafibh/budget-ledger/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles account provisioning
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUpRequest represents the signup request body
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignUpResponse represents the signup response
type SignUpResponse struct {
	Message string          `json:"message"`
	User    domain.Identity `json:"user"`
}

// SignUp godoc
// @Summary Create an account
// @Description Provision an email-confirmed account after checking the password policy
// @Tags auth
// @Accept json
// @Produce json
// @Security AnonKey
// @Param request body SignUpRequest true "Account details"
// @Success 201 {object} SignUpResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	identity, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}

	log.Info().Str("user_id", identity.ID).Msg("Account created")

	return c.JSON(http.StatusCreated, SignUpResponse{
		Message: "User created successfully",
		User:    domain.Identity{ID: identity.ID, Email: identity.Email},
	})
}
