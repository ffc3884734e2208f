// Package watcher resolves pending journal entries by watching the
// chain for transaction receipts. It polls on a fixed interval and,
// when the indexer stream is configured, also reacts to pushed
// confirmation events so entries resolve without waiting for the next
// sweep.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/indexer"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/journal"
	"github.com/tetherto/wdk-mcp-toolkit-sub001/internal/metrics"
)

// sweepBatchSize bounds how many pending entries one sweep examines.
const sweepBatchSize = 100

// ReceiptSource looks up transaction receipts. Satisfied by the wallet.
type ReceiptSource interface {
	Receipt(ctx context.Context, txHash string) (*types.Receipt, error)
}

// Config for the confirmation watcher.
type Config struct {
	PollInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
	}
}

// Watcher resolves pending journal entries to confirmed or failed.
type Watcher struct {
	config   Config
	receipts ReceiptSource
	store    journal.Store
	stream   *indexer.Stream
	logger   *slog.Logger

	events <-chan indexer.Event

	stop chan struct{}
	done chan struct{}
}

// New creates a confirmation watcher. stream may be nil, in which case
// only polling is used.
func New(cfg Config, receipts ReceiptSource, store journal.Store, stream *indexer.Stream, logger *slog.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	return &Watcher{
		config:   cfg,
		receipts: receipts,
		store:    store,
		stream:   stream,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins watching in the background.
func (w *Watcher) Start(ctx context.Context) {
	if w.stream != nil {
		w.events = w.stream.Events()
		w.stream.Start()
	}

	w.logger.Info("confirmation watcher started",
		"pollInterval", w.config.PollInterval,
		"streaming", w.stream != nil,
	)

	go w.run(ctx)
}

// Stop stops the watcher and waits for the run loop to exit.
func (w *Watcher) Stop() {
	close(w.stop)
	if w.stream != nil {
		w.stream.Stop()
	}
	<-w.done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case ev, ok := <-w.events:
			if !ok {
				// Stream shut down; keep polling.
				w.events = nil
				continue
			}
			if err := w.handleEvent(ctx, ev); err != nil {
				w.logger.Error("stream event handling failed", "tx", ev.Hash, "error", err)
			}
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error("confirmation sweep failed", "error", err)
			}
		}
	}
}

// sweep checks every pending journal entry against the chain.
func (w *Watcher) sweep(ctx context.Context) error {
	pending, err := w.store.ListPending(ctx, sweepBatchSize)
	if err != nil {
		return err
	}
	metrics.JournalPendingEntries.Set(float64(len(pending)))

	for _, e := range pending {
		receipt, err := w.receipts.Receipt(ctx, e.TxHash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				continue // not mined yet
			}
			w.logger.Warn("receipt lookup failed", "tx", e.TxHash, "error", err)
			continue
		}
		w.resolve(ctx, e, receipt.Status == types.ReceiptStatusSuccessful, receipt.BlockNumber.Uint64())
	}
	return nil
}

// handleEvent resolves the entry named by a pushed confirmation event.
func (w *Watcher) handleEvent(ctx context.Context, ev indexer.Event) error {
	if ev.Type != "tx_confirmed" && ev.Type != "tx_failed" {
		return nil
	}

	e, err := w.store.GetByTxHash(ctx, ev.Hash)
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			return nil // not one of ours
		}
		return err
	}
	if e.Status != journal.StatusPending {
		return nil
	}

	w.resolve(ctx, e, ev.Type == "tx_confirmed", ev.BlockNumber)
	return nil
}

func (w *Watcher) resolve(ctx context.Context, e *journal.Entry, confirmed bool, blockNumber uint64) {
	status := journal.StatusConfirmed
	if !confirmed {
		status = journal.StatusFailed
	}

	if err := w.store.Resolve(ctx, e.ID, status, blockNumber); err != nil {
		w.logger.Error("journal resolve failed", "entry", e.ID, "error", err)
		return
	}
	metrics.ConfirmationsTotal.WithLabelValues(string(status)).Inc()

	w.logger.Info("journal entry resolved",
		"entry", e.ID,
		"tx", e.TxHash,
		"status", status,
		"block", blockNumber,
	)
}
