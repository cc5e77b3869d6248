package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/elimu-hub/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a new user account with the regular user role.
	//
	// If some error will occur during registration, the error will be returned together with "nil" value.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error)
	// Login authenticates a user by email or username and password.
	//
	// If the credentials are invalid, an error will be returned together with "nil" value.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
}

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// Register handles POST /auth/register
// @Summary Register a new user
// @Description Create a new user account and return a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.TokenResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 409 {object} map[string]string "User already exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			h.RespondError(w, http.StatusConflict, err.Error())
			return
		}
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, tokens)
}

// Login handles POST /auth/login
// @Summary Login
// @Description Authenticate by email or username and password, returning a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if strings.Contains(err.Error(), "required") {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Info("login failed", zap.String("login", req.Login))
		h.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.RespondJSON(w, http.StatusOK, tokens)
}
