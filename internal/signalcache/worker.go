package signalcache

import (
	"context"
)

// RefreshWorker is the periodic staleness check driven by the worker group.
// Each iteration refreshes the cache only when it is cold or past its TTL;
// an already-running cycle makes the iteration a no-op.
type RefreshWorker struct {
	service *Service
}

// NewRefreshWorker creates the staleness check worker
func NewRefreshWorker(service *Service) *RefreshWorker {
	return &RefreshWorker{service: service}
}

// Name returns worker name for logging
func (w *RefreshWorker) Name() string {
	return "signal_refresh"
}

// Run executes one staleness check
func (w *RefreshWorker) Run(ctx context.Context) error {
	return w.service.RefreshIfStale(ctx)
}
