package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gkhcrm/gkhcrm/internal/api/response"
	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/gkhcrm/gkhcrm/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TicketHandler handles ticket endpoints
type TicketHandler struct {
	ticketService *service.TicketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketService *service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// Create handles POST /api/tickets. Status always defaults to NEW.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.TicketCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, "title, description and userId are required")
		return
	}

	ticket, err := h.ticketService.Create(r.Context(), input)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Created(w, ticket)
}

// List handles GET /api/tickets with optional userId and status filters,
// newest first.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.TicketFilter

	if raw := r.URL.Query().Get("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid userId")
			return
		}
		filter.UserID = &userID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		switch status {
		case domain.StatusNew, domain.StatusInProgress, domain.StatusWaiting, domain.StatusDone:
			filter.Status = &status
		default:
			response.BadRequest(w, "invalid status")
			return
		}
	}

	tickets, err := h.ticketService.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	response.OK(w, tickets)
}

// Update handles PATCH /api/tickets/{id}: admin edits to status, priority
// and comment.
func (h *TicketHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ticketID"))
	if err != nil {
		response.BadRequest(w, "invalid ticket ID")
		return
	}

	var input domain.TicketUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	ticket, err := h.ticketService.Update(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "ticket not found")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, ticket)
}
