package governance

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// GovernanceEventEmitter broadcasts tally changes to connected clients.
type GovernanceEventEmitter interface {
	EmitGovernance(event map[string]interface{})
}

// Monitor periodically polls proposal tallies and auto-executes proposals
// in the auto-execute window.
type Monitor struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
	events   GovernanceEventEmitter
	stop     chan struct{}
	running  atomic.Bool

	// last seen approval per proposal, to emit only on change
	seen map[int64]uint64
}

// NewMonitor creates a threshold monitor.
func NewMonitor(service *Service, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		service:  service,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		seen:     make(map[int64]uint64),
	}
}

// WithEvents sets the event emitter for tally broadcasts.
func (m *Monitor) WithEvents(events GovernanceEventEmitter) *Monitor {
	m.events = events
	return m
}

// Running reports whether the monitor loop is actively running.
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// Start begins the polling loop. Call in a goroutine.
func (m *Monitor) Start(ctx context.Context) {
	m.running.Store(true)
	defer m.running.Store(false)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stop:
			return
		case <-ticker.C:
			m.safePoll(ctx)
		}
	}
}

// Stop signals the monitor to stop.
func (m *Monitor) Stop() {
	select {
	case m.stop <- struct{}{}:
	default:
	}
}

func (m *Monitor) safePoll(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic in governance monitor", "panic", fmt.Sprint(r))
		}
	}()
	m.poll(ctx)
}

func (m *Monitor) poll(ctx context.Context) {
	total, err := m.service.TotalProposals(ctx)
	if err != nil {
		m.logger.Warn("failed to count proposals", "error", err)
		return
	}

	for id := int64(0); id < total; id++ {
		status, err := m.service.VoteStatus(ctx, id)
		if err != nil {
			m.logger.Warn("failed to read vote status", "proposal_id", id, "error", err)
			continue
		}

		if prev, ok := m.seen[id]; !ok || prev != status.ApprovalPercentage {
			m.seen[id] = status.ApprovalPercentage
			m.emit(status)
		}

		if status.CanAutoExecute && m.service.CanSign() {
			m.logger.Info("approval threshold reached, executing proposal",
				"proposal_id", id,
				"approval_pct", status.ApprovalPercentage)

			result, err := m.service.ExecuteProposal(ctx, id)
			if err != nil {
				m.logger.Error("auto-execution failed", "proposal_id", id, "error", err)
				continue
			}
			m.logger.Info("proposal executed", "proposal_id", id, "tx_hash", result.TxHash)
		}
	}
}

func (m *Monitor) emit(status *VoteStatus) {
	if m.events == nil {
		return
	}
	m.events.EmitGovernance(map[string]interface{}{
		"proposalId":         status.ProposalID,
		"votesFor":           status.VotesFor,
		"votesAgainst":       status.VotesAgainst,
		"approvalPercentage": status.ApprovalPercentage,
		"thresholdReached":   status.ThresholdReached,
	})
}
