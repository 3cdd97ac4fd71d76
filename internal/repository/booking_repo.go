package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/rn1737/cargobooking/internal/domain"
)

// ErrRefIDExists is returned by Create when the reference ID is already
// taken; the caller re-generates and retries.
var ErrRefIDExists = errors.New("reference id already exists")

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByRefID(ctx context.Context, refID string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	List(ctx context.Context) ([]domain.Booking, error)
}

// InMemoryBookingRepository keeps bookings in a map keyed by upper-cased
// reference ID. Lookups are case-insensitive; stored entities are copied on
// the way in and out so callers never share state with the store.
type InMemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

func NewInMemoryBookingRepository() *InMemoryBookingRepository {
	return &InMemoryBookingRepository{bookings: make(map[string]*domain.Booking)}
}

func (r *InMemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	key := strings.ToUpper(booking.RefID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[key]; ok {
		return ErrRefIDExists
	}
	r.bookings[key] = cloneBooking(booking)
	return nil
}

func (r *InMemoryBookingRepository) GetByRefID(ctx context.Context, refID string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[strings.ToUpper(refID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *InMemoryBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	key := strings.ToUpper(booking.RefID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[key]; !ok {
		return domain.ErrNotFound
	}
	r.bookings[key] = cloneBooking(booking)
	return nil
}

func (r *InMemoryBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, *cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	out := *b
	out.Flights = append([]domain.Flight(nil), b.Flights...)
	out.Timeline = make([]domain.TimelineEvent, len(b.Timeline))
	for i, e := range b.Timeline {
		out.Timeline[i] = e
		if e.FlightInfo != nil {
			info := *e.FlightInfo
			out.Timeline[i].FlightInfo = &info
		}
	}
	return &out
}

var _ BookingRepository = (*InMemoryBookingRepository)(nil)
