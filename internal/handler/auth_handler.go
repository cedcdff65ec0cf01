package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"postboard/internal/logging"
	"postboard/internal/model"
	"postboard/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name                 string `json:"name" form:"name"`
	Email                string `json:"email" form:"email"`
	Password             string `json:"password" form:"password"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Message   string    `json:"message"`
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest()
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Name:                 req.Name,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return fail(c, err)
	}

	logging.FromContext(c).WithField("user_id", user.ID).Info("user registered")
	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "user registered successfully",
		User:    user,
	})
}

// Login godoc
// @Summary Login and receive a bearer token valid for 600 seconds
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		// an unreadable body is still an attempt; let validation reject it
		req = LoginRequest{}
	}

	result, err := h.authService.Login(c.Request().Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.RealIP(),
	})
	if err != nil {
		return fail(c, err)
	}

	logging.FromContext(c).WithField("user_id", result.User.ID).Info("user logged in")
	return c.JSON(http.StatusOK, LoginResponse{
		Message:   "login successful",
		Token:     result.Token,
		Name:      result.User.Name,
		ExpiresAt: result.ExpiresAt,
	})
}

// Logout godoc
// @Summary Revoke the current bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(TokenContextKey).(string)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}
