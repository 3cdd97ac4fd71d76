package domain

import "time"

type Flight struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Airline       string    `json:"airline"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
}

func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

type RouteType string

const (
	RouteTypeDirect  RouteType = "direct"
	RouteTypeTransit RouteType = "transit"
)

// Route is a derived view over one or two flight legs. It is built per
// search and never stored.
type Route struct {
	Type          RouteType     `json:"type"`
	Flights       []Flight      `json:"flights"`
	TotalDuration time.Duration `json:"total_duration"`
}

// TransitRoute pairs a first leg with a connecting second leg through an
// intermediate airport.
type TransitRoute struct {
	FirstLeg  Flight `json:"first_leg"`
	SecondLeg Flight `json:"second_leg"`
}
