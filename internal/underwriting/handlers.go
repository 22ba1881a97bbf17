package underwriting

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// QuoteEventEmitter broadcasts quote events
type QuoteEventEmitter interface {
	EmitQuote(quote map[string]interface{})
}

// Handler provides HTTP endpoints for premium quoting
type Handler struct {
	strategy Strategy
	rules    *Calculator
	events   QuoteEventEmitter
}

// NewHandler creates a new underwriting handler. strategy is the default
// pricing path (typically AI with rule-based fallback); rules serves the
// catalog endpoints and the explicit strategy=rules override.
func NewHandler(strategy Strategy, rules *Calculator) *Handler {
	return &Handler{strategy: strategy, rules: rules}
}

// WithEvents adds event emitter
func (h *Handler) WithEvents(events QuoteEventEmitter) *Handler {
	h.events = events
	return h
}

// RegisterRoutes sets up quoting routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/quotes", h.CreateQuote)
	r.GET("/locations", h.ListLocations)
	r.GET("/locations/:location/risk", h.GetRiskProfile)
}

// CreateQuote handles POST /quotes
func (h *Handler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "location and weatherType are required",
		})
		return
	}

	// Apply the configured default here so every strategy, including the
	// external underwriter, prices against the same baseline.
	if req.BaselineAmount == "" {
		req.BaselineAmount = h.rules.DefaultBaseline()
	}

	strategy := h.strategy
	if c.Query("strategy") == "rules" {
		strategy = h.rules
	}

	quote, err := strategy.Quote(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrAmountOutOfBounds) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error":   "quote_failed",
			"message": err.Error(),
		})
		return
	}

	// Emit real-time event
	if h.events != nil {
		h.events.EmitQuote(map[string]interface{}{
			"location":       quote.Location,
			"weatherType":    quote.WeatherType,
			"riskMultiplier": quote.RiskMultiplier,
			"finalPremium":   quote.FinalPremium,
			"confidence":     quote.Confidence,
			"strategy":       quote.Strategy,
		})
	}

	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

// ListLocations handles GET /locations
func (h *Handler) ListLocations(c *gin.Context) {
	locations := h.rules.Locations()
	c.JSON(http.StatusOK, gin.H{
		"locations": locations,
		"count":     len(locations),
	})
}

// GetRiskProfile handles GET /locations/:location/risk
func (h *Handler) GetRiskProfile(c *gin.Context) {
	location := c.Param("location")

	profile := h.rules.Profile(location)
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "No risk profile for location",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"riskProfile": profile})
}
