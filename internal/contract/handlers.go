package contract

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terrashield/terrashield/internal/validation"
)

// RecordedTx is one dashboard transaction produced by a contract call.
type RecordedTx struct {
	Type        string
	Description string
	Amount      string
	TxHash      string
	Location    string
}

// Recorder appends entries to the dashboard transaction log.
type Recorder interface {
	Record(ctx context.Context, tx RecordedTx)
}

// Handler provides HTTP endpoints for contract interaction
type Handler struct {
	client   *Client
	feed     *PriceFeed
	recorder Recorder
}

// NewHandler creates a new contract handler. feed may be nil.
func NewHandler(client *Client, feed *PriceFeed) *Handler {
	return &Handler{client: client, feed: feed}
}

// WithRecorder adds transaction log recording
func (h *Handler) WithRecorder(recorder Recorder) *Handler {
	h.recorder = recorder
	return h
}

// RegisterRoutes sets up contract routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/policies", h.RequestPolicy)
	r.GET("/policy", h.GetPolicy)
	r.POST("/contract/fund", h.Fund)
	r.GET("/contract/balance", h.GetBalance)
	r.POST("/oracle/fulfill", h.FulfillWeather)
	r.GET("/price", h.GetPrice)
}

// RequestPolicyRequest for buying a policy
type RequestPolicyRequest struct {
	Location string `json:"location" binding:"required"`
}

// RequestPolicy handles POST /policies
func (h *Handler) RequestPolicy(c *gin.Context) {
	var req RequestPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "location is required",
		})
		return
	}
	location := validation.SanitizeString(req.Location, validation.MaxLocationLength)

	result, err := h.client.RequestPolicy(c.Request.Context(), location)
	if err != nil {
		h.txError(c, "policy_failed", err)
		return
	}

	if h.recorder != nil {
		h.recorder.Record(c.Request.Context(), RecordedTx{
			Type:        "policy_bought",
			Description: "Policy purchased for " + location,
			TxHash:      result.TxHash,
			Location:    location,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": result})
}

// GetPolicy handles GET /policy
func (h *Handler) GetPolicy(c *gin.Context) {
	policy, err := h.client.PolicyStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "chain_unavailable",
			"message": "Failed to read policy state",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"policy": policy})
}

// FundRequest for depositing liquidity
type FundRequest struct {
	Amount string `json:"amount" binding:"required"` // ETH
}

// Fund handles POST /contract/fund
func (h *Handler) Fund(c *gin.Context) {
	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "amount is required",
		})
		return
	}

	result, err := h.client.Fund(c.Request.Context(), req.Amount)
	if err != nil {
		h.txError(c, "fund_failed", err)
		return
	}

	if h.recorder != nil {
		h.recorder.Record(c.Request.Context(), RecordedTx{
			Type:        "funds_deposited",
			Description: "Deposited " + req.Amount + " ETH into the pool",
			Amount:      req.Amount,
			TxHash:      result.TxHash,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": result})
}

// GetBalance handles GET /contract/balance
func (h *Handler) GetBalance(c *gin.Context) {
	balance, err := h.client.Balance(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "chain_unavailable",
			"message": "Failed to read contract balance",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// FulfillRequest for oracle weather reports
type FulfillRequest struct {
	RainfallMM uint64 `json:"rainfallMm"`
	Location   string `json:"location"`
}

// FulfillWeather handles POST /oracle/fulfill
func (h *Handler) FulfillWeather(c *gin.Context) {
	var req FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	result, err := h.client.FulfillWeather(c.Request.Context(), req.RainfallMM)
	if err != nil {
		h.txError(c, "fulfill_failed", err)
		return
	}

	if h.recorder != nil {
		h.recorder.Record(c.Request.Context(), RecordedTx{
			Type:        "weather_reported",
			Description: "Oracle reported rainfall",
			TxHash:      result.TxHash,
			Location:    req.Location,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": result})
}

// GetPrice handles GET /price
func (h *Handler) GetPrice(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "price_feed_unavailable",
			"message": "Price feed not configured",
		})
		return
	}

	quote, err := h.feed.ETHPrice(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "chain_unavailable",
			"message": "Failed to read price feed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"price": quote})
}

// txError maps contract client errors onto HTTP statuses.
func (h *Handler) txError(c *gin.Context, code string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, ErrReadOnly):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{
		"error":   code,
		"message": err.Error(),
	})
}
