package watcher

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/indexer"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/journal"
)

type fakeReceipts struct {
	mu       sync.Mutex
	receipts map[string]*types.Receipt
	calls    int
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{receipts: make(map[string]*types.Receipt)}
}

func (f *fakeReceipts) Receipt(_ context.Context, txHash string) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	r, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (f *fakeReceipts) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestWatcher(receipts ReceiptSource, store journal.Store, stream *indexer.Stream) *Watcher {
	return New(Config{PollInterval: 10 * time.Millisecond}, receipts, store, stream, slog.Default())
}

func recordPending(t *testing.T, store journal.Store, txHash string) *journal.Entry {
	t.Helper()
	e := journal.NewEntry(journal.KindTransfer, txHash, "ETH", "1000000000000000000", "0xa", "0xb")
	if err := store.Record(context.Background(), e); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	return e
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PollInterval == 0 {
		t.Error("Expected non-zero poll interval")
	}
}

func TestSweep_ResolvesConfirmed(t *testing.T) {
	store := journal.NewMemoryStore()
	receipts := newFakeReceipts()
	receipts.receipts["0xok"] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(19000123),
	}
	e := recordPending(t, store, "0xok")

	w := newTestWatcher(receipts, store, nil)
	if err := w.sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	got, _ := store.Get(context.Background(), e.ID)
	if got.Status != journal.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
	if got.BlockNumber != 19000123 {
		t.Errorf("expected block 19000123, got %d", got.BlockNumber)
	}
}

func TestSweep_ResolvesFailed(t *testing.T) {
	store := journal.NewMemoryStore()
	receipts := newFakeReceipts()
	receipts.receipts["0xbad"] = &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		BlockNumber: big.NewInt(19000124),
	}
	e := recordPending(t, store, "0xbad")

	w := newTestWatcher(receipts, store, nil)
	if err := w.sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	got, _ := store.Get(context.Background(), e.ID)
	if got.Status != journal.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
}

func TestSweep_LeavesUnminedPending(t *testing.T) {
	store := journal.NewMemoryStore()
	receipts := newFakeReceipts() // knows no receipts
	e := recordPending(t, store, "0xpending")

	w := newTestWatcher(receipts, store, nil)
	if err := w.sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	got, _ := store.Get(context.Background(), e.ID)
	if got.Status != journal.StatusPending {
		t.Errorf("unmined entry should stay pending, got %s", got.Status)
	}
}

func TestHandleEvent_ResolvesWithoutReceiptLookup(t *testing.T) {
	store := journal.NewMemoryStore()
	receipts := newFakeReceipts()
	e := recordPending(t, store, "0xstreamed")

	w := newTestWatcher(receipts, store, nil)
	ev := indexer.Event{Type: "tx_confirmed", Hash: "0xstreamed", BlockNumber: 19000200}
	if err := w.handleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handleEvent failed: %v", err)
	}

	got, _ := store.Get(context.Background(), e.ID)
	if got.Status != journal.StatusConfirmed {
		t.Errorf("expected confirmed, got %s", got.Status)
	}
	if got.BlockNumber != 19000200 {
		t.Errorf("expected block 19000200, got %d", got.BlockNumber)
	}
	if receipts.callCount() != 0 {
		t.Errorf("stream resolution should not hit the RPC, got %d lookups", receipts.callCount())
	}
}

func TestHandleEvent_FailedEvent(t *testing.T) {
	store := journal.NewMemoryStore()
	e := recordPending(t, store, "0xrevert")

	w := newTestWatcher(newFakeReceipts(), store, nil)
	ev := indexer.Event{Type: "tx_failed", Hash: "0xrevert", BlockNumber: 19000201}
	if err := w.handleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handleEvent failed: %v", err)
	}

	got, _ := store.Get(context.Background(), e.ID)
	if got.Status != journal.StatusFailed {
		t.Errorf("expected failed, got %s", got.Status)
	}
}

func TestHandleEvent_IgnoresUnknownHash(t *testing.T) {
	store := journal.NewMemoryStore()
	w := newTestWatcher(newFakeReceipts(), store, nil)

	ev := indexer.Event{Type: "tx_confirmed", Hash: "0xnotmine", BlockNumber: 1}
	if err := w.handleEvent(context.Background(), ev); err != nil {
		t.Errorf("unknown hashes should be ignored, got %v", err)
	}
}

func TestHandleEvent_IgnoresOtherEventTypes(t *testing.T) {
	store := journal.NewMemoryStore()
	e := recordPending(t, store, "0xother")

	w := newTestWatcher(newFakeReceipts(), store, nil)
	ev := indexer.Event{Type: "block", Hash: "0xother"}
	if err := w.handleEvent(context.Background(), ev); err != nil {
		t.Fatalf("handleEvent failed: %v", err)
	}

	got, _ := store.Get(context.Background(), e.ID)
	if got.Status != journal.StatusPending {
		t.Errorf("unrelated event types must not resolve entries, got %s", got.Status)
	}
}

func TestStartStop_ResolvesInBackground(t *testing.T) {
	store := journal.NewMemoryStore()
	receipts := newFakeReceipts()
	receipts.receipts["0xbg"] = &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		BlockNumber: big.NewInt(42),
	}
	e := recordPending(t, store, "0xbg")

	w := newTestWatcher(receipts, store, nil)
	w.Start(context.Background())

	deadline := time.After(2 * time.Second)
	for {
		got, _ := store.Get(context.Background(), e.ID)
		if got.Status == journal.StatusConfirmed {
			break
		}
		select {
		case <-deadline:
			w.Stop()
			t.Fatal("timed out waiting for background resolution")
		case <-time.After(10 * time.Millisecond):
		}
	}
	w.Stop()
}
