package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketRepository implements domain.TicketRepository
type TicketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *DB) *TicketRepository {
	return &TicketRepository{pool: db.Pool}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (id, title, description, status, priority, channel, comment, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Channel,
		ticket.Comment,
		ticket.UserID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

const ticketSelect = `
	SELECT t.id, t.title, t.description, t.status, t.priority, t.channel, t.comment,
	       t.user_id, t.created_at, t.updated_at, u.name, u.email
	FROM tickets t
	JOIN users u ON u.id = t.user_id
`

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var t domain.Ticket
	var owner domain.TicketUser
	err := r.pool.QueryRow(ctx, ticketSelect+` WHERE t.id = $1`, id).Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Channel,
		&t.Comment,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
		&owner.Name,
		&owner.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	t.User = &owner
	return &t, nil
}

// List returns tickets newest first, optionally filtered by owner and status.
func (r *TicketRepository) List(ctx context.Context, filter domain.TicketFilter) ([]domain.Ticket, error) {
	query := ticketSelect + ` WHERE 1=1`
	args := []any{}
	n := 0

	if filter.UserID != nil {
		n++
		query += fmt.Sprintf(" AND t.user_id = $%d", n)
		args = append(args, *filter.UserID)
	}
	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND t.status = $%d", n)
		args = append(args, *filter.Status)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		var owner domain.TicketUser
		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.Priority,
			&t.Channel,
			&t.Comment,
			&t.UserID,
			&t.CreatedAt,
			&t.UpdatedAt,
			&owner.Name,
			&owner.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		t.User = &owner
		tickets = append(tickets, t)
	}
	return tickets, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		UPDATE tickets
		SET status = $1, priority = $2, comment = $3, updated_at = $4
		WHERE id = $5
	`
	tag, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.Priority,
		ticket.Comment,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
