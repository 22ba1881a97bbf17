// Package txlog is the dashboard's transaction activity log. Every contract
// interaction the server performs lands here so the UI can render a recent
// activity feed without replaying chain history. The log is capped; it is a
// feed, not an archive.
package txlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/terrashield/terrashield/internal/contract"
	"github.com/terrashield/terrashield/internal/idgen"
	"github.com/terrashield/terrashield/internal/metrics"
	"github.com/terrashield/terrashield/internal/traces"
)

var (
	ErrEntryNotFound = errors.New("txlog: entry not found")
	ErrUnknownType   = errors.New("txlog: unknown transaction type")
)

// MaxEntries is the feed cap. Older entries are evicted on append.
const MaxEntries = 50

// Type classifies a logged transaction.
type Type string

const (
	TypePolicyBought     Type = "policy_bought"
	TypePayoutTriggered  Type = "payout_triggered"
	TypeWeatherReported  Type = "weather_reported"
	TypeFundsDeposited   Type = "funds_deposited"
	TypeLocationVerified Type = "location_verified"
)

// Valid reports whether the type is one of the known kinds.
func (t Type) Valid() bool {
	switch t {
	case TypePolicyBought, TypePayoutTriggered, TypeWeatherReported,
		TypeFundsDeposited, TypeLocationVerified:
		return true
	}
	return false
}

// Status of a logged transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Entry is one activity feed item.
type Entry struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Status      Status    `json:"status"`
	Amount      string    `json:"amount,omitempty"` // ETH
	TxHash      string    `json:"txHash,omitempty"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Stats summarizes the feed.
type Stats struct {
	Total           int    `json:"total"`
	Pending         int    `json:"pending"`
	Confirmed       int    `json:"confirmed"`
	Failed          int    `json:"failed"`
	ConfirmedAmount string `json:"confirmedAmount"` // ETH, sum over confirmed entries
}

// Store persists the activity feed.
type Store interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context) ([]*Entry, error) // newest first, capped at MaxEntries
	ListByType(ctx context.Context, t Type) ([]*Entry, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Clear(ctx context.Context) error
}

// TransactionEventEmitter broadcasts feed changes to connected clients.
type TransactionEventEmitter interface {
	EmitTransaction(event map[string]interface{})
}

// Service owns the feed: it stamps IDs and timestamps, validates types, and
// broadcasts changes.
type Service struct {
	store  Store
	events TransactionEventEmitter
}

// NewService creates a transaction log service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// WithEvents sets the event emitter for feed broadcasts.
func (s *Service) WithEvents(events TransactionEventEmitter) *Service {
	s.events = events
	return s
}

// Append validates and stores one entry, stamping ID, status, and timestamp
// when absent.
func (s *Service) Append(ctx context.Context, entry *Entry) (*Entry, error) {
	if !entry.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, entry.Type)
	}

	ctx, span := traces.StartSpan(ctx, "txlog.Append", traces.Amount(entry.Amount))
	defer span.End()

	if entry.ID == "" {
		entry.ID = idgen.WithPrefix("tx_")
	}
	if entry.Status == "" {
		entry.Status = StatusPending
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	if err := s.store.Append(ctx, entry); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.TransactionsTotal.WithLabelValues(string(entry.Status)).Inc()
	s.emit("transaction_logged", entry)
	return entry, nil
}

// List returns the feed, newest first.
func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	return s.store.List(ctx)
}

// ListByType returns feed entries of one kind, newest first.
func (s *Service) ListByType(ctx context.Context, t Type) ([]*Entry, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return s.store.ListByType(ctx, t)
}

// UpdateStatus moves an entry between pending, confirmed, and failed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) error {
	switch status {
	case StatusPending, StatusConfirmed, StatusFailed:
	default:
		return fmt.Errorf("txlog: unknown status %q", status)
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	s.emit("transaction_updated", &Entry{ID: id, Status: status})
	return nil
}

// Clear empties the feed.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Stats computes feed totals and the confirmed ETH volume.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(entries)}
	confirmed := decimal.Zero
	for _, e := range entries {
		switch e.Status {
		case StatusPending:
			stats.Pending++
		case StatusConfirmed:
			stats.Confirmed++
			if e.Amount != "" {
				if amount, err := decimal.NewFromString(e.Amount); err == nil {
					confirmed = confirmed.Add(amount)
				}
			}
		case StatusFailed:
			stats.Failed++
		}
	}
	stats.ConfirmedAmount = confirmed.String()
	return stats, nil
}

func (s *Service) emit(kind string, entry *Entry) {
	if s.events == nil {
		return
	}
	s.events.EmitTransaction(map[string]interface{}{
		"event":  kind,
		"id":     entry.ID,
		"type":   string(entry.Type),
		"status": string(entry.Status),
	})
}

// ContractRecorder adapts the service to the contract package's Recorder.
// Contract calls record from inside a request, so failures are logged and
// swallowed rather than failing the caller's transaction.
type ContractRecorder struct {
	service *Service
	logger  *slog.Logger
}

// NewContractRecorder creates a recorder feeding contract activity into the log.
func NewContractRecorder(service *Service, logger *slog.Logger) *ContractRecorder {
	return &ContractRecorder{service: service, logger: logger}
}

func (r *ContractRecorder) Record(ctx context.Context, tx contract.RecordedTx) {
	_, err := r.service.Append(ctx, &Entry{
		Type:        Type(tx.Type),
		Status:      StatusConfirmed,
		Amount:      tx.Amount,
		TxHash:      tx.TxHash,
		Description: tx.Description,
		Location:    tx.Location,
	})
	if err != nil {
		r.logger.Warn("failed to record transaction", "type", tx.Type, "error", err)
	}
}
