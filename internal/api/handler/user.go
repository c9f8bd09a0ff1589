package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gkhcrm/gkhcrm/internal/api/response"
	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/gkhcrm/gkhcrm/internal/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// UserHandler handles user endpoints
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Upsert handles POST /api/users: create-or-fetch a user keyed by Telegram
// identity. Idempotent by contract.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var input domain.UserUpsert
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "telegramId is required")
		return
	}

	user, err := h.userService.GetOrCreate(r.Context(), input.TelegramID, input.Name)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, user)
}
