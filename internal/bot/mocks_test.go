package bot

import (
	"context"

	"github.com/gkhcrm/gkhcrm/internal/apiclient"
	"github.com/gkhcrm/gkhcrm/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockAPIClient mocks the persistence service client
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) GetOrCreateUser(ctx context.Context, telegramID, name string) (*domain.User, error) {
	args := m.Called(ctx, telegramID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAPIClient) CreateTicket(ctx context.Context, input apiclient.TicketInput) (*domain.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockAPIClient) ListTickets(ctx context.Context, userID string) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockAPIClient) ListAllTickets(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}
