package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rn1737/cargobooking/internal/domain"
	"github.com/rn1737/cargobooking/internal/service/catalog"
)

type FlightHandler struct {
	service catalog.CatalogUseCase
}

func NewFlightHandler(service catalog.CatalogUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.search)
	router.GET("/transit", h.transit)
	router.GET("/routes", h.routes)
}

func (h *FlightHandler) RegisterAirports(router *gin.RouterGroup) {
	router.GET("/airports", h.airports)
}

func (h *FlightHandler) search(c *gin.Context) {
	origin, destination, date, ok := laneParams(c)
	if !ok {
		return
	}

	flights, err := h.service.SearchFlights(c.Request.Context(), origin, destination, date)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) transit(c *gin.Context) {
	origin, destination, date, ok := laneParams(c)
	if !ok {
		return
	}

	routes, err := h.service.TransitRoutes(c.Request.Context(), origin, destination, date)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (h *FlightHandler) routes(c *gin.Context) {
	origin, destination, date, ok := laneParams(c)
	if !ok {
		return
	}

	routes, err := h.service.Routes(c.Request.Context(), origin, destination, date)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, routes)
}

func (h *FlightHandler) airports(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Airports())
}

func laneParams(c *gin.Context) (origin, destination string, date time.Time, ok bool) {
	origin = c.Query("origin")
	destination = c.Query("destination")
	rawDate := c.Query("date")
	if origin == "" || destination == "" || rawDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin, destination and date are required"})
		return "", "", time.Time{}, false
	}

	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return "", "", time.Time{}, false
	}
	return origin, destination, date, true
}
