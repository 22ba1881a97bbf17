package txlog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for the transaction log
type Handler struct {
	service *Service
}

// NewHandler creates a new transaction log handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up transaction log routes. The admin guard protects
// the destructive clear operation; pass nothing to leave it open.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, adminGuard ...gin.HandlerFunc) {
	r.GET("/transactions", h.ListTransactions)
	r.DELETE("/transactions", append(adminGuard, h.ClearTransactions)...)
	r.GET("/transactions/stats", h.GetStats)
	r.PATCH("/transactions/:id", h.UpdateStatus)
}

// ListTransactions handles GET /transactions. An optional ?type= query
// filters by transaction kind.
func (h *Handler) ListTransactions(c *gin.Context) {
	var (
		entries []*Entry
		err     error
	)

	if t := c.Query("type"); t != "" {
		entries, err = h.service.ListByType(c.Request.Context(), Type(t))
	} else {
		entries, err = h.service.List(c.Request.Context())
	}

	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_type",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "list_failed",
			"message": "Failed to list transactions",
		})
		return
	}

	if entries == nil {
		entries = []*Entry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"count":        len(entries),
	})
}

// ClearTransactions handles DELETE /transactions
func (h *Handler) ClearTransactions(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "clear_failed",
			"message": "Failed to clear transactions",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// GetStats handles GET /transactions/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "stats_failed",
			"message": "Failed to compute stats",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// UpdateStatusRequest for transitioning an entry
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /transactions/:id
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "status is required",
		})
		return
	}

	err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Transaction not found",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_status",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}
