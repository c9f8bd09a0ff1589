package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status tracks a ticket through its lifecycle. Status is only ever changed
// from the admin panel; tickets are always created as StatusNew.
type Status string

const (
	StatusNew        Status = "NEW"
	StatusInProgress Status = "IN_PROGRESS"
	StatusWaiting    Status = "WAITING"
	StatusDone       Status = "DONE"
)

// Priority of a maintenance request.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Channel records which surface a ticket came in from.
type Channel string

const (
	ChannelWeb      Channel = "WEB"
	ChannelTelegram Channel = "TELEGRAM"
)

// Ticket represents a housing-maintenance request.
type Ticket struct {
	ID          uuid.UUID   `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	Priority    Priority    `json:"priority"`
	Channel     Channel     `json:"channel"`
	Comment     *string     `json:"comment,omitempty"`
	UserID      uuid.UUID   `json:"userId"`
	User        *TicketUser `json:"user,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TicketUser is the owner summary embedded in ticket responses.
type TicketUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TicketCreate is the payload of POST /api/tickets.
type TicketCreate struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	UserID      string   `json:"userId" validate:"required,uuid"`
	Channel     Channel  `json:"channel" validate:"omitempty,oneof=WEB TELEGRAM"`
	Priority    Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// TicketUpdate is the payload of PATCH /api/tickets/{id}. Nil fields are
// left unchanged.
type TicketUpdate struct {
	Status   *Status   `json:"status" validate:"omitempty,oneof=NEW IN_PROGRESS WAITING DONE"`
	Priority *Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	Comment  *string   `json:"comment" validate:"omitempty,max=2000"`
}

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	UserID *uuid.UUID
	Status *Status
}

// TicketRepository defines the interface for ticket storage
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]Ticket, error)
	Update(ctx context.Context, ticket *Ticket) error
}
