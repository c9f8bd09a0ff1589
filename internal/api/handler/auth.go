package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gkhcrm/gkhcrm/internal/api/response"
	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/gkhcrm/gkhcrm/internal/service"
)

// AuthHandler handles admin authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/auth/login for the admin panel.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "email and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrAdminOnly) {
			response.Forbidden(w, err.Error())
			return
		}
		response.Unauthorized(w, err.Error())
		return
	}

	response.OK(w, result)
}
