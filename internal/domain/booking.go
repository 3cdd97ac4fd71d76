package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusDeparted  BookingStatus = "DEPARTED"
	BookingStatusArrived   BookingStatus = "ARRIVED"
	BookingStatusDelivered BookingStatus = "DELIVERED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type EventType string

const (
	EventTypeCreated   EventType = "CREATED"
	EventTypeDeparted  EventType = "DEPARTED"
	EventTypeArrived   EventType = "ARRIVED"
	EventTypeDelivered EventType = "DELIVERED"
	EventTypeCancelled EventType = "CANCELLED"
)

// FlightInfo is the flight snapshot attached to DEPARTED events.
type FlightInfo struct {
	FlightNumber string `json:"flight_number"`
	Airline      string `json:"airline"`
}

// TimelineEvent records one lifecycle transition. Once appended it is never
// modified.
type TimelineEvent struct {
	ID          string      `json:"id"`
	Timestamp   time.Time   `json:"timestamp"`
	Type        EventType   `json:"type"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	FlightInfo  *FlightInfo `json:"flight_info,omitempty"`
}

type Booking struct {
	RefID       string          `json:"ref_id"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Pieces      int             `json:"pieces"`
	WeightKg    int             `json:"weight_kg"`
	Status      BookingStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Flights     []Flight        `json:"flights"`
	Timeline    []TimelineEvent `json:"timeline"`
}

// allowedTransitions encodes the cargo handling flow: cancellation is only
// possible before arrival, delivery requires prior arrival, DELIVERED and
// CANCELLED are terminal.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusBooked:    {BookingStatusDeparted, BookingStatusCancelled},
	BookingStatusDeparted:  {BookingStatusArrived, BookingStatusCancelled},
	BookingStatusArrived:   {BookingStatusDelivered},
	BookingStatusDelivered: {},
	BookingStatusCancelled: {},
}

func (b *Booking) CanTransitionTo(target BookingStatus) bool {
	for _, next := range allowedTransitions[b.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// ApplyTransition advances the booking to target, appending the derived
// timeline event and keeping Status and UpdatedAt in sync with the last
// event. The booking is left untouched on an invalid transition.
func (b *Booking) ApplyTransition(eventID string, target BookingStatus, now time.Time) (*TimelineEvent, error) {
	if !b.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: b.Status, To: target}
	}

	event := TimelineEvent{
		ID:        eventID,
		Timestamp: now,
		Type:      EventType(target),
	}

	switch target {
	case BookingStatusDeparted:
		event.Location = b.Origin
		event.Description = fmt.Sprintf("Cargo departed from %s", b.Origin)
		if len(b.Flights) > 0 {
			event.FlightInfo = &FlightInfo{
				FlightNumber: b.Flights[0].FlightNumber,
				Airline:      b.Flights[0].Airline,
			}
		}
	case BookingStatusArrived:
		event.Location = b.Destination
		event.Description = fmt.Sprintf("Cargo arrived at %s", b.Destination)
	case BookingStatusDelivered:
		event.Location = b.Destination
		event.Description = "Cargo delivered to consignee"
	case BookingStatusCancelled:
		event.Location = b.Origin
		event.Description = "Booking cancelled"
	}

	b.Timeline = append(b.Timeline, event)
	b.Status = target
	b.UpdatedAt = now
	return &event, nil
}
