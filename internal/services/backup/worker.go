// Package backup periodically refreshes the shadow copy of each collection
// while the data keeps changing.
package backup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/mcoot/scorepad/internal/services/store"
)

// DefaultInterval is how often the worker checks for changes
const DefaultInterval = 30 * time.Second

// Worker refreshes backups when the stored collections change. Failures
// are logged and retried on the next tick. Ticks never overlap.
type Worker struct {
	store    *store.Store
	interval time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	lastDigest uint64
	hasDigest  bool
}

// New creates a Worker. A non-positive interval means DefaultInterval.
func New(st *store.Store, interval time.Duration, logger *slog.Logger) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		store:    st,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the worker in a new goroutine. The returned channel is closed
// once Run has returned after ctx is cancelled.
func (w *Worker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return done
}

// Run ticks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("backup worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("backup worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Tick(ctx); err != nil {
				w.logger.Warn("periodic backup failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Tick refreshes every backup if the collections changed since the last
// successful tick, and reports whether it did
func (w *Worker) Tick(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	digest, err := w.fingerprint(ctx)
	if err != nil {
		return false, err
	}
	if w.hasDigest && digest == w.lastDigest {
		return false, nil
	}

	var errs []error
	for _, c := range store.Collections {
		if err := w.store.RefreshBackup(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return false, err
	}

	w.lastDigest = digest
	w.hasDigest = true
	w.logger.Debug("backups refreshed")
	return true, nil
}

// fingerprint hashes the primary value of every collection
func (w *Worker) fingerprint(ctx context.Context) (uint64, error) {
	h := xxhash.New()
	for _, c := range store.Collections {
		data, _, err := w.store.ReadRaw(ctx, c)
		if err != nil {
			return 0, err
		}
		_, _ = h.WriteString(string(c))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(data)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64(), nil
}
