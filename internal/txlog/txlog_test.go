package txlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/terrashield/terrashield/internal/contract"
)

func newTestService() *Service {
	return NewService(NewMemoryStore())
}

func TestAppend_StampsDefaults(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	entry, err := svc.Append(ctx, &Entry{
		Type:        TypePolicyBought,
		Description: "Policy purchased for Punjab",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if entry.ID == "" {
		t.Error("Expected generated ID")
	}
	if entry.Status != StatusPending {
		t.Errorf("Expected default status pending, got %s", entry.Status)
	}
	if entry.Timestamp.IsZero() {
		t.Error("Expected timestamp to be stamped")
	}
}

func TestAppend_UnknownType(t *testing.T) {
	svc := newTestService()

	_, err := svc.Append(context.Background(), &Entry{Type: "nft_minted"})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Append(ctx, &Entry{
			Type:        TypeFundsDeposited,
			Description: fmt.Sprintf("deposit %d", i),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].Description != "deposit 2" {
		t.Errorf("Expected newest entry first, got %q", entries[0].Description)
	}
}

func TestList_CappedAtMaxEntries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for i := 0; i < MaxEntries+10; i++ {
		_, err := svc.Append(ctx, &Entry{
			Type:        TypeWeatherReported,
			Description: fmt.Sprintf("report %d", i),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != MaxEntries {
		t.Errorf("Expected %d entries after eviction, got %d", MaxEntries, len(entries))
	}
	if entries[0].Description != fmt.Sprintf("report %d", MaxEntries+9) {
		t.Errorf("Expected newest entry to survive, got %q", entries[0].Description)
	}
}

func TestListByType(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.Append(ctx, &Entry{Type: TypePolicyBought, Description: "policy"})
	svc.Append(ctx, &Entry{Type: TypeFundsDeposited, Description: "deposit"})
	svc.Append(ctx, &Entry{Type: TypePolicyBought, Description: "policy 2"})

	entries, err := svc.ListByType(ctx, TypePolicyBought)
	if err != nil {
		t.Fatalf("ListByType failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 policy entries, got %d", len(entries))
	}

	if _, err := svc.ListByType(ctx, "bogus"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("Expected ErrUnknownType for bogus type, got %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	entry, _ := svc.Append(ctx, &Entry{Type: TypePolicyBought, Description: "policy"})

	if err := svc.UpdateStatus(ctx, entry.ID, StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	entries, _ := svc.List(ctx)
	if entries[0].Status != StatusConfirmed {
		t.Errorf("Expected confirmed, got %s", entries[0].Status)
	}

	if err := svc.UpdateStatus(ctx, "tx_missing", StatusFailed); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Expected ErrEntryNotFound, got %v", err)
	}

	if err := svc.UpdateStatus(ctx, entry.ID, "teleported"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestClear(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.Append(ctx, &Entry{Type: TypePolicyBought, Description: "policy"})
	if err := svc.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	entries, _ := svc.List(ctx)
	if len(entries) != 0 {
		t.Errorf("Expected empty log after clear, got %d entries", len(entries))
	}
}

func TestStats(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	svc.Append(ctx, &Entry{Type: TypePolicyBought, Status: StatusConfirmed, Amount: "0.0268"})
	svc.Append(ctx, &Entry{Type: TypeFundsDeposited, Status: StatusConfirmed, Amount: "0.5"})
	svc.Append(ctx, &Entry{Type: TypeWeatherReported, Status: StatusConfirmed})
	svc.Append(ctx, &Entry{Type: TypePayoutTriggered, Status: StatusPending, Amount: "1.0"})
	svc.Append(ctx, &Entry{Type: TypeLocationVerified, Status: StatusFailed})

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.Total != 5 {
		t.Errorf("Expected total 5, got %d", stats.Total)
	}
	if stats.Confirmed != 3 || stats.Pending != 1 || stats.Failed != 1 {
		t.Errorf("Unexpected status counts: %+v", stats)
	}
	// Pending amounts stay out of the confirmed volume
	if stats.ConfirmedAmount != "0.5268" {
		t.Errorf("Expected confirmed amount 0.5268, got %s", stats.ConfirmedAmount)
	}
}

type captureEmitter struct {
	events []map[string]interface{}
}

func (c *captureEmitter) EmitTransaction(event map[string]interface{}) {
	c.events = append(c.events, event)
}

func TestEvents_Broadcast(t *testing.T) {
	emitter := &captureEmitter{}
	svc := NewService(NewMemoryStore()).WithEvents(emitter)
	ctx := context.Background()

	entry, _ := svc.Append(ctx, &Entry{Type: TypePolicyBought, Description: "policy"})
	svc.UpdateStatus(ctx, entry.ID, StatusConfirmed)

	if len(emitter.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(emitter.events))
	}
	if emitter.events[0]["event"] != "transaction_logged" {
		t.Errorf("Expected transaction_logged, got %v", emitter.events[0]["event"])
	}
	if emitter.events[1]["event"] != "transaction_updated" {
		t.Errorf("Expected transaction_updated, got %v", emitter.events[1]["event"])
	}
}

func TestContractRecorder(t *testing.T) {
	svc := newTestService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewContractRecorder(svc, logger)
	ctx := context.Background()

	recorder.Record(ctx, contract.RecordedTx{
		Type:        "policy_bought",
		Description: "Policy purchased for Jaisalmer",
		TxHash:      "0xabc",
		Location:    "Jaisalmer",
	})

	entries, _ := svc.List(ctx)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].Status != StatusConfirmed {
		t.Errorf("Expected recorded tx to be confirmed, got %s", entries[0].Status)
	}
	if entries[0].TxHash != "0xabc" {
		t.Errorf("Expected tx hash carried, got %q", entries[0].TxHash)
	}

	// Unknown types are dropped, not fatal
	recorder.Record(ctx, contract.RecordedTx{Type: "mystery"})
	entries, _ = svc.List(ctx)
	if len(entries) != 1 {
		t.Errorf("Expected unknown type to be dropped, got %d entries", len(entries))
	}
}
