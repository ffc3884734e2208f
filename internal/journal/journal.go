// Package journal keeps a local audit trail of every transfer and swap
// initiated through the tools. Entries start pending and are resolved
// by the confirmation watcher; the history tool merges them with what
// the indexer reports.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/idgen"
)

var (
	ErrNotFound = errors.New("journal: entry not found")
)

// defaultListLimit caps list queries when the caller passes no limit.
const defaultListLimit = 50

// Kind classifies what an entry records.
type Kind string

const (
	KindTransfer Kind = "transfer"
	KindSwap     Kind = "swap"
)

// Status is the confirmation state of an entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Entry is one recorded transfer or swap. Amount is a base-unit
// decimal string; the amount codec formats it for display.
type Entry struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	TxHash      string     `json:"txHash"`
	Token       string     `json:"token"` // Symbol; empty means the native asset
	Amount      string     `json:"amount"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Status      Status     `json:"status"`
	BlockNumber uint64     `json:"blockNumber,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// NewEntry builds a pending entry with a fresh ID.
func NewEntry(kind Kind, txHash, token, amount, from, to string) *Entry {
	return &Entry{
		ID:        idgen.WithPrefix("je_"),
		Kind:      kind,
		TxHash:    txHash,
		Token:     token,
		Amount:    amount,
		From:      from,
		To:        to,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// Store persists journal entries.
type Store interface {
	// Record inserts a new entry.
	Record(ctx context.Context, e *Entry) error

	// Get returns the entry with the given ID.
	Get(ctx context.Context, id string) (*Entry, error)

	// GetByTxHash returns the entry for a transaction hash.
	GetByTxHash(ctx context.Context, txHash string) (*Entry, error)

	// ListRecent returns the newest entries, most recent first.
	ListRecent(ctx context.Context, limit int) ([]*Entry, error)

	// ListPending returns pending entries, oldest first, so the
	// watcher resolves them in submission order.
	ListPending(ctx context.Context, limit int) ([]*Entry, error)

	// Resolve marks an entry confirmed or failed.
	Resolve(ctx context.Context, id string, status Status, blockNumber uint64) error
}
