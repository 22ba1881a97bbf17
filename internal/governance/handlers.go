package governance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/terrashield/terrashield/internal/contract"
	"github.com/terrashield/terrashield/internal/validation"
)

// Handler provides HTTP endpoints for governance
type Handler struct {
	service *Service
}

// NewHandler creates a new governance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up governance routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/governance/proposals", h.ListProposals)
	r.POST("/governance/proposals", h.CreateProposal)
	r.GET("/governance/proposals/:id/status", h.GetVoteStatus)
	r.POST("/governance/proposals/:id/votes", h.SubmitVote)
	r.POST("/governance/proposals/:id/execute", h.ExecuteProposal)
	r.GET("/governance/voters/:address/eligibility", h.GetVoterEligibility)
}

// ListProposals handles GET /governance/proposals
func (h *Handler) ListProposals(c *gin.Context) {
	proposals, err := h.service.Proposals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "chain_unavailable",
			"message": "Failed to list proposals",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposals": proposals,
		"count":     len(proposals),
	})
}

// CreateProposalRequest for registering a proposal
type CreateProposalRequest struct {
	Title              string `json:"title" binding:"required"`
	Description        string `json:"description"`
	ExecutionThreshold uint64 `json:"executionThreshold"`
}

// CreateProposal handles POST /governance/proposals
func (h *Handler) CreateProposal(c *gin.Context) {
	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "title is required",
		})
		return
	}

	title := validation.SanitizeString(req.Title, 200)
	description := validation.SanitizeString(req.Description, 2000)

	result, err := h.service.CreateProposal(c.Request.Context(), title, description, req.ExecutionThreshold)
	if err != nil {
		h.txError(c, "proposal_failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": result})
}

// GetVoteStatus handles GET /governance/proposals/:id/status
func (h *Handler) GetVoteStatus(c *gin.Context) {
	id, ok := h.proposalID(c)
	if !ok {
		return
	}

	status, err := h.service.VoteStatus(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "chain_unavailable",
			"message": "Failed to read vote status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// SubmitVoteRequest for casting a vote
type SubmitVoteRequest struct {
	Support *bool  `json:"support" binding:"required"`
	Voter   string `json:"voter"`
}

// SubmitVote handles POST /governance/proposals/:id/votes
func (h *Handler) SubmitVote(c *gin.Context) {
	id, ok := h.proposalID(c)
	if !ok {
		return
	}

	var req SubmitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "support is required",
		})
		return
	}

	// Reject double votes up front when the caller identifies itself.
	if req.Voter != "" {
		voted, err := h.service.HasVoted(c.Request.Context(), id, req.Voter)
		if err != nil {
			h.txError(c, "vote_failed", err)
			return
		}
		if voted {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already_voted",
				"message": "Address has already voted on this proposal",
			})
			return
		}
	}

	result, err := h.service.SubmitVote(c.Request.Context(), id, *req.Support)
	if err != nil {
		h.txError(c, "vote_failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": result})
}

// ExecuteProposal handles POST /governance/proposals/:id/execute
func (h *Handler) ExecuteProposal(c *gin.Context) {
	id, ok := h.proposalID(c)
	if !ok {
		return
	}

	result, err := h.service.ExecuteProposal(c.Request.Context(), id)
	if err != nil {
		h.txError(c, "execute_failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"transaction": result})
}

// GetVoterEligibility handles GET /governance/voters/:address/eligibility
func (h *Handler) GetVoterEligibility(c *gin.Context) {
	address := c.Param("address")

	eligible, err := h.service.VoterEligibility(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, ErrInvalidVoter) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_address",
				"message": "Invalid Ethereum address",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "chain_unavailable",
			"message": "Failed to check eligibility",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":  address,
		"eligible": eligible,
	})
}

func (h *Handler) proposalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_proposal_id",
			"message": "Proposal ID must be a non-negative integer",
		})
		return 0, false
	}
	return id, true
}

// txError maps governance errors onto HTTP statuses.
func (h *Handler) txError(c *gin.Context, code string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, contract.ErrReadOnly):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ErrThresholdNotReached):
		status = http.StatusConflict
	case errors.Is(err, ErrInvalidVoter):
		status = http.StatusBadRequest
	case errors.Is(err, contract.ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{
		"error":   code,
		"message": err.Error(),
	})
}
