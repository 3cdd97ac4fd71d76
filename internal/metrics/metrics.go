package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargobooking_bookings_created_total",
		Help: "Total number of bookings successfully created.",
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargobooking_transitions_total",
		Help: "Total number of applied status transitions, by target status.",
	},
		[]string{"status"},
	)

	FlightSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cargobooking_flight_searches_total",
		Help: "Total number of flight catalog searches.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cargobooking_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)
)
