// Package apiclient is the bot's view of the persistence service: a small
// JSON-over-HTTP contract where every response is wrapped in a
// {success, data, error} envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/domain"
)

// APIError is a failed call to the persistence service. Declared failures
// (success=false) carry the service's message verbatim; transport failures
// carry a description of what went wrong on the wire. Callers treat both
// the same way.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the persistence service. Construct one at process start
// and pass it by reference; it is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a persistence service client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(buf)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &APIError{Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return &APIError{Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &APIError{Message: "malformed response payload"}
		}
	}
	return nil
}

// GetOrCreateUser registers the Telegram identity on first contact and
// returns the existing user afterwards. Idempotency is the service's
// responsibility (upsert by telegramId).
func (c *Client) GetOrCreateUser(ctx context.Context, telegramID, name string) (*domain.User, error) {
	body := map[string]string{
		"telegramId": telegramID,
		"name":       name,
	}
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/users", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// TicketInput is the payload for ticket submission from the bot.
type TicketInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	UserID      string         `json:"userId"`
	Channel     domain.Channel `json:"channel"`
}

// CreateTicket submits a new ticket; the service defaults its status to NEW.
func (c *Client) CreateTicket(ctx context.Context, input TicketInput) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := c.do(ctx, http.MethodPost, "/tickets", input, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListTickets returns all tickets owned by the user, newest first.
func (c *Client) ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	path := "/tickets?userId=" + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ListAllTickets returns every ticket in the system; used by the liveness
// summary.
func (c *Client) ListAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.do(ctx, http.MethodGet, "/tickets", nil, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}
