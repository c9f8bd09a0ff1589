package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/google/uuid"
)

// TicketService handles ticket operations
type TicketService struct {
	ticketRepo domain.TicketRepository
	userRepo   domain.UserRepository
}

// NewTicketService creates a new ticket service
func NewTicketService(ticketRepo domain.TicketRepository, userRepo domain.UserRepository) *TicketService {
	return &TicketService{ticketRepo: ticketRepo, userRepo: userRepo}
}

// Create registers a new ticket. Status always starts at NEW; channel and
// priority fall back to WEB/MEDIUM when the caller leaves them empty.
func (s *TicketService) Create(ctx context.Context, input domain.TicketCreate) (*domain.Ticket, error) {
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return nil, errors.New("invalid userId")
	}

	owner, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	channel := input.Channel
	if channel == "" {
		channel = domain.ChannelWeb
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now()
	ticket := &domain.Ticket{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusNew,
		Priority:    priority,
		Channel:     channel,
		UserID:      owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	ticket.User = &domain.TicketUser{Name: owner.Name, Email: owner.Email}
	return ticket, nil
}

// List returns tickets newest first, optionally filtered by owner and status.
func (s *TicketService) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.ticketRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Update applies an admin edit to status, priority or comment. Nil fields
// are left as they are.
func (s *TicketService) Update(ctx context.Context, id uuid.UUID, input domain.TicketUpdate) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.Priority != nil {
		ticket.Priority = *input.Priority
	}
	if input.Comment != nil {
		ticket.Comment = input.Comment
	}
	ticket.UpdatedAt = time.Now()

	if err := s.ticketRepo.Update(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	return ticket, nil
}
