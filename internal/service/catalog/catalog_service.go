package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rn1737/cargobooking/internal/domain"
	"github.com/rn1737/cargobooking/internal/metrics"
)

const (
	minFlightsPerSearch = 3
	maxFlightsPerSearch = 7
	earliestDeparture   = 6
	latestDeparture     = 21
	minConnectionTime   = 2 * time.Hour
	maxTransitPoints    = 3
)

var airlines = []string{
	"Air India Cargo",
	"IndiGo Cargo",
	"SpiceJet Cargo",
	"BlueDart Aviation",
	"Vistara Cargo",
}

type CatalogUseCase interface {
	SearchFlights(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	TransitRoutes(ctx context.Context, origin, destination string, date time.Time) ([]domain.TransitRoute, error)
	Routes(ctx context.Context, origin, destination string, date time.Time) ([]domain.Route, error)
}

type Cache interface {
	GetFlights(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error)
	SetFlights(ctx context.Context, origin, destination string, date time.Time, flights []domain.Flight) error
}

// CatalogService synthesizes flight offerings. The random source is injected
// so tests can supply a seeded generator.
type CatalogService struct {
	mu    sync.Mutex
	rng   *rand.Rand
	cache Cache
}

func NewCatalogService(rng *rand.Rand, cache Cache) *CatalogService {
	return &CatalogService{rng: rng, cache: cache}
}

// SearchFlights returns 3-7 synthetic flights for the lane on the given
// date, sorted ascending by departure time. Results are cached per
// (origin, destination, date) when a cache is configured, so repeated
// searches within the TTL see the same offerings.
func (s *CatalogService) SearchFlights(ctx context.Context, origin, destination string, date time.Time) ([]domain.Flight, error) {
	if err := validateLane(origin, destination); err != nil {
		return nil, err
	}

	metrics.FlightSearchesTotal.Inc()

	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, origin, destination, date); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights := s.generate(origin, destination, date)
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, origin, destination, date, flights)
	}
	return flights, nil
}

// TransitRoutes synthesizes two-leg routes through up to 3 intermediate
// airports, taken in registry order. The second leg is searched on the same
// day or the next day and must depart at least 2 hours after the first leg
// arrives; candidates without a valid connection are dropped.
func (s *CatalogService) TransitRoutes(ctx context.Context, origin, destination string, date time.Time) ([]domain.TransitRoute, error) {
	if err := validateLane(origin, destination); err != nil {
		return nil, err
	}

	var transits []domain.Airport
	for _, a := range domain.Airports() {
		if a.Code == origin || a.Code == destination {
			continue
		}
		transits = append(transits, a)
		if len(transits) == maxTransitPoints {
			break
		}
	}

	var routes []domain.TransitRoute
	for _, transit := range transits {
		firstLegs := s.generate(origin, transit.Code, date)
		if len(firstLegs) == 0 {
			continue
		}
		firstLeg := firstLegs[0]

		secondDate := date
		if s.coinFlip() {
			secondDate = date.AddDate(0, 0, 1)
		}

		earliestSecond := firstLeg.ArrivalTime.Add(minConnectionTime)
		for _, f := range s.generate(transit.Code, destination, secondDate) {
			if f.DepartureTime.Before(earliestSecond) {
				continue
			}
			routes = append(routes, domain.TransitRoute{FirstLeg: firstLeg, SecondLeg: f})
			break
		}
	}
	return routes, nil
}

// Routes combines direct flights and transit pairs into a single route view
// with computed total durations.
func (s *CatalogService) Routes(ctx context.Context, origin, destination string, date time.Time) ([]domain.Route, error) {
	direct, err := s.SearchFlights(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}
	transit, err := s.TransitRoutes(ctx, origin, destination, date)
	if err != nil {
		return nil, err
	}

	routes := make([]domain.Route, 0, len(direct)+len(transit))
	for _, f := range direct {
		routes = append(routes, domain.Route{
			Type:          domain.RouteTypeDirect,
			Flights:       []domain.Flight{f},
			TotalDuration: f.Duration(),
		})
	}
	for _, t := range transit {
		routes = append(routes, domain.Route{
			Type:          domain.RouteTypeTransit,
			Flights:       []domain.Flight{t.FirstLeg, t.SecondLeg},
			TotalDuration: t.SecondLeg.ArrivalTime.Sub(t.FirstLeg.DepartureTime),
		})
	}
	return routes, nil
}

func (s *CatalogService) generate(origin, destination string, date time.Time) []domain.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := minFlightsPerSearch + s.rng.Intn(maxFlightsPerSearch-minFlightsPerSearch+1)
	flights := make([]domain.Flight, 0, count)

	for i := 0; i < count; i++ {
		airline := airlines[s.rng.Intn(len(airlines))]
		hour := earliestDeparture + s.rng.Intn(latestDeparture-earliestDeparture+1)
		minute := s.rng.Intn(60)
		duration := time.Duration((1.5 + s.rng.Float64()*2) * float64(time.Hour))

		departure := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())

		flights = append(flights, domain.Flight{
			ID:            uuid.NewString(),
			FlightNumber:  flightNumber(airline, s.rng),
			Airline:       airline,
			DepartureTime: departure,
			ArrivalTime:   departure.Add(duration),
			Origin:        origin,
			Destination:   destination,
		})
	}

	sort.SliceStable(flights, func(i, j int) bool {
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights
}

func (s *CatalogService) coinFlip() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(2) == 0
}

func flightNumber(airline string, rng *rand.Rand) string {
	prefix := strings.ToUpper(airline[:2])
	return fmt.Sprintf("%s%d", prefix, 1000+rng.Intn(9000))
}

func validateLane(origin, destination string) error {
	if origin == "" || destination == "" {
		return fmt.Errorf("%w: origin and destination are required", domain.ErrInvalidInput)
	}
	if origin == destination {
		return fmt.Errorf("%w: origin and destination must differ", domain.ErrInvalidInput)
	}
	return nil
}

var _ CatalogUseCase = (*CatalogService)(nil)
