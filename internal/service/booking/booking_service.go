package booking

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rn1737/cargobooking/internal/domain"
	"github.com/rn1737/cargobooking/internal/kafka"
	"github.com/rn1737/cargobooking/internal/metrics"
	"github.com/rn1737/cargobooking/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	FindBooking(ctx context.Context, refID string) (*domain.Booking, error)
	Transition(ctx context.Context, refID string, target domain.BookingStatus) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	Stats(ctx context.Context) (*Stats, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Pieces      int           `json:"pieces"`
	WeightKg    int           `json:"weight_kg"`
	Flight      domain.Flight `json:"flight"`
}

// Stats aggregates the collection by lifecycle stage.
type Stats struct {
	Total     int `json:"total"`
	Booked    int `json:"booked"`
	InTransit int `json:"in_transit"`
	Delivered int `json:"delivered"`
	Cancelled int `json:"cancelled"`
}

type BookingService struct {
	bookings           repository.BookingRepository
	producer           Producer
	logger             *zap.Logger
	bookingTopic       string
	notificationsTopic string
	refIDMaxAttempts   int

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithRand(rng *rand.Rand) BookingServiceOption {
	return func(s *BookingService) {
		s.rng = rng
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithRefIDMaxAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.refIDMaxAttempts = n
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	producer Producer,
	logger *zap.Logger,
	bookingTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:         bookings,
		producer:         producer,
		logger:           logger,
		bookingTopic:     bookingTopic,
		refIDMaxAttempts: 10,
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

const (
	refIDLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	refIDDigits  = "0123456789"
)

// GenerateRefID produces a booking reference: 3 uppercase letters followed
// by 6 digits. Uniqueness against the collection is the caller's concern.
func GenerateRefID(rng *rand.Rand) string {
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		sb.WriteByte(refIDLetters[rng.Intn(len(refIDLetters))])
	}
	for i := 0; i < 6; i++ {
		sb.WriteByte(refIDDigits[rng.Intn(len(refIDDigits))])
	}
	return sb.String()
}

// CreateBooking validates the input and stores a new BOOKED booking whose
// timeline holds exactly one CREATED event. The reference ID is re-generated
// until it is unique in the repository, up to refIDMaxAttempts.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := validateInput(input); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("create_booking").Inc()
		return nil, err
	}

	now := s.now()
	booking := &domain.Booking{
		Origin:      input.Origin,
		Destination: input.Destination,
		Pieces:      input.Pieces,
		WeightKg:    input.WeightKg,
		Status:      domain.BookingStatusBooked,
		CreatedAt:   now,
		UpdatedAt:   now,
		Flights:     []domain.Flight{input.Flight},
		Timeline: []domain.TimelineEvent{
			{
				ID:          uuid.NewString(),
				Timestamp:   now,
				Type:        domain.EventTypeCreated,
				Location:    input.Origin,
				Description: "Booking created",
			},
		},
	}

	created := false
	for attempt := 0; attempt < s.refIDMaxAttempts; attempt++ {
		booking.RefID = s.generateRefID()
		err := s.bookings.Create(ctx, booking)
		if err == nil {
			created = true
			break
		}
		if err != repository.ErrRefIDExists {
			metrics.OperationErrorsTotal.WithLabelValues("create_booking").Inc()
			return nil, err
		}
		s.logger.Warn("reference id collision, retrying", zap.String("ref_id", booking.RefID))
	}
	if !created {
		metrics.OperationErrorsTotal.WithLabelValues("create_booking").Inc()
		return nil, fmt.Errorf("could not generate a unique reference id after %d attempts", s.refIDMaxAttempts)
	}

	metrics.BookingsCreatedTotal.Inc()
	s.logger.Info("booking created",
		zap.String("ref_id", booking.RefID),
		zap.String("origin", booking.Origin),
		zap.String("destination", booking.Destination))

	if err := s.publish(ctx, "booking_created", booking); err != nil {
		s.logger.Warn("failed to publish booking_created event", zap.String("ref_id", booking.RefID), zap.Error(err))
	}
	return booking, nil
}

// FindBooking matches the reference ID case-insensitively. A missing
// booking is reported as domain.ErrNotFound, not a fault.
func (s *BookingService) FindBooking(ctx context.Context, refID string) (*domain.Booking, error) {
	return s.bookings.GetByRefID(ctx, refID)
}

// Transition advances the booking to target per the lifecycle table,
// appending the derived timeline event. An invalid transition leaves the
// stored booking untouched.
func (s *BookingService) Transition(ctx context.Context, refID string, target domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.bookings.GetByRefID(ctx, refID)
	if err != nil {
		return nil, err
	}

	if _, err := booking.ApplyTransition(uuid.NewString(), target, s.now()); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("transition").Inc()
		return nil, err
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("transition").Inc()
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(target)).Inc()
	s.logger.Info("booking transitioned",
		zap.String("ref_id", booking.RefID),
		zap.String("status", string(target)))

	eventType := "booking_" + strings.ToLower(string(target))
	if err := s.publish(ctx, eventType, booking); err != nil {
		s.logger.Warn("failed to publish transition event",
			zap.String("ref_id", booking.RefID),
			zap.String("event", eventType),
			zap.Error(err))
	}
	return booking, nil
}

func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.bookings.List(ctx)
}

func (s *BookingService) Stats(ctx context.Context) (*Stats, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case domain.BookingStatusBooked:
			stats.Booked++
		case domain.BookingStatusDeparted, domain.BookingStatusArrived:
			stats.InTransit++
		case domain.BookingStatusDelivered:
			stats.Delivered++
		case domain.BookingStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (s *BookingService) generateRefID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GenerateRefID(s.rng)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:        eventType,
		RefID:       booking.RefID,
		Origin:      booking.Origin,
		Destination: booking.Destination,
		Pieces:      booking.Pieces,
		WeightKg:    booking.WeightKg,
		Status:      string(booking.Status),
		OccurredAt:  booking.UpdatedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.RefID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.RefID, event)
	}
	return nil
}

func validateInput(input CreateBookingInput) error {
	if input.Origin == "" || input.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", domain.ErrInvalidInput)
	}
	if input.Origin == input.Destination {
		return fmt.Errorf("%w: origin and destination must differ", domain.ErrInvalidInput)
	}
	if _, ok := domain.AirportByCode(input.Origin); !ok {
		return fmt.Errorf("%w: unknown origin %s", domain.ErrInvalidInput, input.Origin)
	}
	if _, ok := domain.AirportByCode(input.Destination); !ok {
		return fmt.Errorf("%w: unknown destination %s", domain.ErrInvalidInput, input.Destination)
	}
	if input.Pieces < 1 {
		return fmt.Errorf("%w: pieces must be positive", domain.ErrInvalidInput)
	}
	if input.WeightKg < 1 {
		return fmt.Errorf("%w: weight must be positive", domain.ErrInvalidInput)
	}
	if input.Flight.Origin != input.Origin || input.Flight.Destination != input.Destination {
		return fmt.Errorf("%w: selected flight does not match the requested lane", domain.ErrInvalidInput)
	}
	return nil
}

var _ BookingUseCase = (*BookingService)(nil)
