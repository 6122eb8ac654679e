package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/olatide/bookingscheduler/backend/internal/domain/entities"
	"github.com/olatide/bookingscheduler/backend/internal/domain/providers"
)

// Mocks

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) SetExternalEventID(ctx context.Context, id string, externalEventID *string) error {
	args := m.Called(ctx, id, externalEventID)
	return args.Error(0)
}

func (m *MockAppointmentRepository) ListForProfessionalOn(ctx context.Context, professionalID string, day time.Time) ([]*entities.Appointment, error) {
	args := m.Called(ctx, professionalID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

type MockProfessionalRepository struct {
	mock.Mock
}

func (m *MockProfessionalRepository) GetByID(ctx context.Context, id string) (*entities.Professional, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Professional), args.Error(1)
}

func (m *MockProfessionalRepository) SetAvailability(ctx context.Context, id string, availability entities.WeeklyAvailability) error {
	args := m.Called(ctx, id, availability)
	return args.Error(0)
}

func (m *MockProfessionalRepository) Deactivate(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id string) (*entities.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Service), args.Error(1)
}

func (m *MockServiceRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Service, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Service), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetTenant(ctx context.Context, id string) (*entities.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetClient(ctx context.Context, id string) (*entities.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Client), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ChangeNotification) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ChangeNotification, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.ChangeNotification), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCalendarProvider struct {
	mock.Mock
}

func (m *MockCalendarProvider) CreateEvent(ctx context.Context, accessToken, calendarID string, event providers.EventPayload) (string, error) {
	args := m.Called(ctx, accessToken, calendarID, event)
	return args.String(0), args.Error(1)
}

func (m *MockCalendarProvider) PatchEvent(ctx context.Context, accessToken, calendarID, eventID string, event providers.EventPayload) error {
	args := m.Called(ctx, accessToken, calendarID, eventID, event)
	return args.Error(0)
}

func (m *MockCalendarProvider) DeleteEvent(ctx context.Context, accessToken, calendarID, eventID string) error {
	args := m.Called(ctx, accessToken, calendarID, eventID)
	return args.Error(0)
}

type MockTokenSource struct {
	mock.Mock
}

func (m *MockTokenSource) AccessToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

type MockBillingRunner struct {
	mock.Mock
}

func (m *MockBillingRunner) Run(ctx context.Context, req providers.BillingRunRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
