package booking

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rn1737/cargobooking/internal/domain"
	"github.com/rn1737/cargobooking/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	args := m.Called(ctx, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var refIDPattern = regexp.MustCompile(`^[A-Z]{3}\d{6}$`)

func fixedNow() time.Time {
	return time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		Origin:      "DEL",
		Destination: "BLR",
		Pieces:      5,
		WeightKg:    250,
		Flight: domain.Flight{
			ID:            "FL-001",
			FlightNumber:  "AI5432",
			Airline:       "Air India Cargo",
			DepartureTime: time.Date(2026, 1, 11, 8, 0, 0, 0, time.UTC),
			ArrivalTime:   time.Date(2026, 1, 11, 10, 30, 0, 0, time.UTC),
			Origin:        "DEL",
			Destination:   "BLR",
		},
	}
}

func TestGenerateRefID(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		assert.Regexp(t, refIDPattern, GenerateRefID(rng))
	}
}

func TestCreateBooking_Success(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(mockRepo, mockProducer, zap.NewNop(), "booking_events",
		WithClock(fixedNow), WithRand(rand.New(rand.NewSource(1))))

	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(nil).Once()

	created, err := service.CreateBooking(ctx, validInput())

	require.NoError(t, err)
	assert.Regexp(t, refIDPattern, created.RefID)
	assert.Equal(t, domain.BookingStatusBooked, created.Status)
	assert.Equal(t, fixedNow(), created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	require.Len(t, created.Flights, 1)
	assert.Equal(t, "AI5432", created.Flights[0].FlightNumber)
	require.Len(t, created.Timeline, 1)
	assert.Equal(t, domain.EventTypeCreated, created.Timeline[0].Type)
	assert.Equal(t, fixedNow(), created.Timeline[0].Timestamp)
	assert.Equal(t, "DEL", created.Timeline[0].Location)
	assert.Equal(t, "Booking created", created.Timeline[0].Description)

	mockRepo.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestCreateBooking_PublishFailureDoesNotFailCreate(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	mockProducer := &MockProducer{}
	service := NewBookingService(mockRepo, mockProducer, zap.NewNop(), "booking_events")

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	mockProducer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(errors.New("kafka down")).Once()

	created, err := service.CreateBooking(ctx, validInput())

	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestCreateBooking_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"same origin and destination", func(in *CreateBookingInput) { in.Destination = "DEL"; in.Flight.Destination = "DEL" }},
		{"zero pieces", func(in *CreateBookingInput) { in.Pieces = 0 }},
		{"negative weight", func(in *CreateBookingInput) { in.WeightKg = -1 }},
		{"unknown origin", func(in *CreateBookingInput) { in.Origin = "XXX"; in.Flight.Origin = "XXX" }},
		{"unknown destination", func(in *CreateBookingInput) { in.Destination = "YYY"; in.Flight.Destination = "YYY" }},
		{"flight lane mismatch", func(in *CreateBookingInput) { in.Flight.Destination = "HYD" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo := &MockBookingRepository{}
			service := NewBookingService(mockRepo, nil, zap.NewNop(), "")

			input := validInput()
			tc.mutate(&input)

			_, err := service.CreateBooking(context.Background(), input)

			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			mockRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestCreateBooking_RetriesOnRefIDCollision(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, nil, zap.NewNop(), "",
		WithRand(rand.New(rand.NewSource(1))))

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(repository.ErrRefIDExists).Twice()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()

	created, err := service.CreateBooking(ctx, validInput())

	require.NoError(t, err)
	assert.Regexp(t, refIDPattern, created.RefID)
	mockRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestCreateBooking_RefIDAttemptsExhausted(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, nil, zap.NewNop(), "",
		WithRefIDMaxAttempts(3))

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(repository.ErrRefIDExists).Times(3)

	_, err := service.CreateBooking(ctx, validInput())

	assert.Error(t, err)
	mockRepo.AssertNumberOfCalls(t, "Create", 3)
}

func TestFindBooking_NotFound(t *testing.T) {
	mockRepo := &MockBookingRepository{}
	service := NewBookingService(mockRepo, nil, zap.NewNop(), "")

	ctx := context.Background()
	mockRepo.On("GetByRefID", ctx, "ACB000000").Return(nil, domain.ErrNotFound).Once()

	_, err := service.FindBooking(ctx, "ACB000000")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// The full lifecycle against the real in-memory repository, following the
// DEL -> BLR shipment through departure, arrival and delivery.
func TestBookingLifecycle(t *testing.T) {
	repo := repository.NewInMemoryBookingRepository()
	service := NewBookingService(repo, nil, zap.NewNop(), "", WithClock(fixedNow))

	ctx := context.Background()

	created, err := service.CreateBooking(ctx, validInput())
	require.NoError(t, err)

	// Round trip, case-insensitive.
	found, err := service.FindBooking(ctx, created.RefID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	lower, err := service.FindBooking(ctx, strings.ToLower(created.RefID))
	require.NoError(t, err)
	assert.Equal(t, created.RefID, lower.RefID)

	departed, err := service.Transition(ctx, created.RefID, domain.BookingStatusDeparted)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusDeparted, departed.Status)
	require.Len(t, departed.Timeline, 2)
	event := departed.Timeline[1]
	assert.Equal(t, domain.EventTypeDeparted, event.Type)
	assert.Equal(t, "DEL", event.Location)
	require.NotNil(t, event.FlightInfo)
	assert.Equal(t, "AI5432", event.FlightInfo.FlightNumber)
	assert.Equal(t, "Air India Cargo", event.FlightInfo.Airline)

	arrived, err := service.Transition(ctx, created.RefID, domain.BookingStatusArrived)
	require.NoError(t, err)
	assert.Equal(t, "BLR", arrived.Timeline[2].Location)
	assert.Nil(t, arrived.Timeline[2].FlightInfo)

	delivered, err := service.Transition(ctx, created.RefID, domain.BookingStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusDelivered, delivered.Status)
	assert.Equal(t, "BLR", delivered.Timeline[3].Location)

	for _, target := range []domain.BookingStatus{domain.BookingStatusBooked, domain.BookingStatusDeparted, domain.BookingStatusArrived, domain.BookingStatusDelivered, domain.BookingStatusCancelled} {
		_, err := service.Transition(ctx, created.RefID, target)
		var transitionErr *domain.InvalidTransitionError
		assert.ErrorAs(t, err, &transitionErr)
	}
}

func TestTransition_InvalidLeavesStoredBookingUnchanged(t *testing.T) {
	repo := repository.NewInMemoryBookingRepository()
	service := NewBookingService(repo, nil, zap.NewNop(), "", WithClock(fixedNow))

	ctx := context.Background()
	created, err := service.CreateBooking(ctx, validInput())
	require.NoError(t, err)

	// ARRIVED is not reachable from BOOKED.
	_, err = service.Transition(ctx, created.RefID, domain.BookingStatusArrived)
	var transitionErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)

	stored, err := service.FindBooking(ctx, created.RefID)
	require.NoError(t, err)
	assert.Equal(t, created, stored)
}

func TestTransition_CancelledFromDeparted(t *testing.T) {
	repo := repository.NewInMemoryBookingRepository()
	service := NewBookingService(repo, nil, zap.NewNop(), "")

	ctx := context.Background()
	created, err := service.CreateBooking(ctx, validInput())
	require.NoError(t, err)

	_, err = service.Transition(ctx, created.RefID, domain.BookingStatusDeparted)
	require.NoError(t, err)

	cancelled, err := service.Transition(ctx, created.RefID, domain.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	assert.Equal(t, "DEL", cancelled.Timeline[2].Location)
	assert.Equal(t, "Booking cancelled", cancelled.Timeline[2].Description)
}

func TestTransition_NotFound(t *testing.T) {
	repo := repository.NewInMemoryBookingRepository()
	service := NewBookingService(repo, nil, zap.NewNop(), "")

	_, err := service.Transition(context.Background(), "ZZZ999999", domain.BookingStatusDeparted)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestTransition_PublishesPerStatusEvent(t *testing.T) {
	repo := repository.NewInMemoryBookingRepository()
	mockProducer := &MockProducer{}
	service := NewBookingService(repo, mockProducer, zap.NewNop(), "booking_events",
		WithNotificationsTopic("booking_notifications"))

	ctx := context.Background()
	mockProducer.On("Publish", ctx, "booking_events", mock.Anything, mock.Anything).Return(nil)
	mockProducer.On("Publish", ctx, "booking_notifications", mock.Anything, mock.Anything).Return(nil)

	created, err := service.CreateBooking(ctx, validInput())
	require.NoError(t, err)
	_, err = service.Transition(ctx, created.RefID, domain.BookingStatusDeparted)
	require.NoError(t, err)

	// booking_created and booking_departed, each on both topics.
	mockProducer.AssertNumberOfCalls(t, "Publish", 4)
}

func TestStats(t *testing.T) {
	repo := repository.NewInMemoryBookingRepository()
	service := NewBookingService(repo, nil, zap.NewNop(), "")

	ctx := context.Background()

	lanes := []struct {
		origin, destination string
		target              domain.BookingStatus
	}{
		{"DEL", "BLR", ""},
		{"BOM", "HYD", domain.BookingStatusDeparted},
		{"MAA", "DEL", domain.BookingStatusCancelled},
	}
	for _, lane := range lanes {
		input := validInput()
		input.Origin = lane.origin
		input.Destination = lane.destination
		input.Flight.Origin = lane.origin
		input.Flight.Destination = lane.destination
		created, err := service.CreateBooking(ctx, input)
		require.NoError(t, err)
		if lane.target != "" {
			_, err = service.Transition(ctx, created.RefID, lane.target)
			require.NoError(t, err)
		}
	}

	stats, err := service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Total: 3, Booked: 1, InTransit: 1, Cancelled: 1}, stats)
}
