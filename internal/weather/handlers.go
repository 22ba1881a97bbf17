package weather

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// WeatherEventEmitter broadcasts weather report events
type WeatherEventEmitter interface {
	EmitWeatherReport(report map[string]interface{})
}

// Handler provides HTTP endpoints for weather lookups
type Handler struct {
	client  *Client
	history *History
	events  WeatherEventEmitter
}

// NewHandler creates a new weather handler
func NewHandler(client *Client, history *History) *Handler {
	return &Handler{client: client, history: history}
}

// WithEvents adds event emitter
func (h *Handler) WithEvents(events WeatherEventEmitter) *Handler {
	h.events = events
	return h
}

// RegisterRoutes sets up weather routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/weather/:location", h.GetWeather)
	r.GET("/weather/:location/history", h.GetHistory)
}

// GetWeather handles GET /weather/:location
func (h *Handler) GetWeather(c *gin.Context) {
	location := c.Param("location")

	conditions, err := h.client.Fetch(c.Request.Context(), location)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "weather_unavailable",
			"message": "Failed to fetch weather data",
		})
		return
	}

	h.history.Record(Observation{
		Location:    location,
		Temperature: conditions.Temperature,
		RainfallMM:  conditions.RainfallMM,
		Conditions:  conditions.Conditions,
	})

	if h.events != nil {
		h.events.EmitWeatherReport(map[string]interface{}{
			"location":   location,
			"rainfallMm": conditions.RainfallMM,
			"conditions": conditions.Conditions,
		})
	}

	c.JSON(http.StatusOK, gin.H{"weather": conditions})
}

// GetHistory handles GET /weather/:location/history
func (h *Handler) GetHistory(c *gin.Context) {
	location := c.Param("location")

	observations := h.history.List(location)
	c.JSON(http.StatusOK, gin.H{
		"observations": observations,
		"count":        len(observations),
	})
}
