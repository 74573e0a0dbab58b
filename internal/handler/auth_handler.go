package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/srms/internal/middleware"
	"github.com/stemsi/srms/internal/model"
	"github.com/stemsi/srms/internal/response"
	"github.com/stemsi/srms/internal/service"
	"github.com/stemsi/srms/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates an admin or student and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", result)
}

// Register godoc
// POST /api/v1/auth/register
// Creates a student account that stays inactive until an admin approves it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if _, err := h.authService.Register(c.Request.Context(), &req); err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Registration submitted", model.RegisterResponse{
		Message: "Registration successful. Please wait for admin approval.",
		Status:  model.RegistrationPending,
	})
}

// Verify godoc
// GET /api/v1/auth/verify
// Returns the identity carried by the current token.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	response.Success(c, http.StatusOK, "Token is valid", gin.H{"user": claims.User()})
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the session of the current token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		fail(c, err)
		return
	}

	response.SuccessMessage(c, http.StatusOK, "Logout successful")
}
