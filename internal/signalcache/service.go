package signalcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/internal/universe"
	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/models"
)

// ErrRefreshInProgress is the conflict returned when a refresh is requested
// while one is already running. The second request is rejected, never queued.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Derived cache status values
const (
	StatusFresh     = "fresh"
	StatusStale     = "stale"
	StatusAnalyzing = "analyzing"
)

// Analyzer runs the full pipeline over a list of symbols
type Analyzer interface {
	Analyze(ctx context.Context, symbols []string) []models.SignalResult
}

// HistoryRecorder persists per-run result rows. Best-effort: failures are
// logged, never fail the refresh.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, results []models.SignalResult, startedAt, finishedAt time.Time) error
}

// Notifier announces a completed refresh. Best-effort.
type Notifier interface {
	NotifyRefresh(ctx context.Context, snapshot map[models.Market]models.CacheEntry) error
}

// Metadata is the bookkeeping block attached to every read
type Metadata struct {
	LastUpdated   *time.Time `json:"last_updated"`
	IsAnalyzing   bool       `json:"is_analyzing"`
	Progress      int        `json:"progress"`
	CacheAgeHours *float64   `json:"cache_age_hours"`
	AnalysisCount int        `json:"analysis_count"`
	LastError     string     `json:"last_error,omitempty"`
	Status        string     `json:"status"`
}

// LiveSignals is the read-path response: the latest completed snapshot plus
// metadata. Processing marks the cold-cache case where no data exists yet and
// a background refresh has been started.
type LiveSignals struct {
	Markets    map[models.Market]models.CacheEntry `json:"markets"`
	Metadata   Metadata                            `json:"metadata"`
	Processing bool                                `json:"processing,omitempty"`
}

// Status is the compact health view
type Status struct {
	IsAnalyzing   bool       `json:"is_analyzing"`
	Progress      int        `json:"progress"`
	LastUpdated   *time.Time `json:"last_updated"`
	HasData       bool       `json:"has_data"`
	CacheAgeHours *float64   `json:"cache_age_hours"`
	AnalysisCount int        `json:"analysis_count"`
	Status        string     `json:"status"`
}

// Service owns the last complete result set per market. Reads never block on
// recomputation; at most one refresh cycle runs at any time, guarded by an
// atomic flag checked-and-set before work is spawned.
type Service struct {
	analyzer Analyzer
	store    Store
	history  HistoryRecorder
	notifier Notifier
	cfg      config.CacheConfig

	refreshing int32

	mu       sync.RWMutex
	snapshot map[models.Market]models.CacheEntry
	meta     models.CacheMetadata

	now func() time.Time
}

// NewService creates the cache service. history and notifier may be nil.
func NewService(analyzer Analyzer, store Store, history HistoryRecorder, notifier Notifier, cfg config.CacheConfig) *Service {
	return &Service{
		analyzer: analyzer,
		store:    store,
		history:  history,
		notifier: notifier,
		cfg:      cfg,
		snapshot: make(map[models.Market]models.CacheEntry),
		now:      time.Now,
	}
}

// Hydrate loads the last persisted snapshot and metadata. Called once at
// startup so a restart does not open with an empty cache. A missing snapshot
// is not an error.
func (s *Service) Hydrate(ctx context.Context) error {
	raw, err := s.store.Get(ctx, KeySnapshot)
	if errors.Is(err, ErrNotFound) {
		logger.Info("no persisted signal snapshot found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read persisted snapshot: %w", err)
	}

	var snapshot map[models.Market]models.CacheEntry
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("failed to decode persisted snapshot: %w", err)
	}

	var meta models.CacheMetadata
	if rawMeta, err := s.store.Get(ctx, KeyMetadata); err == nil {
		if err := json.Unmarshal(rawMeta, &meta); err != nil {
			return fmt.Errorf("failed to decode persisted metadata: %w", err)
		}
	}

	// A refresh cannot survive a restart
	meta.IsAnalyzing = false

	s.mu.Lock()
	s.snapshot = snapshot
	s.meta = meta
	s.mu.Unlock()

	logger.Info("signal cache hydrated",
		zap.Int("markets", len(snapshot)),
		zap.Timep("last_updated", meta.LastUpdated),
	)
	return nil
}

// GetLiveSignals returns the latest snapshot without ever blocking on
// recomputation. An empty market returns every market. Cold or stale data
// triggers a background refresh; stale data is still returned immediately,
// annotated through the metadata status.
func (s *Service) GetLiveSignals(market models.Market) LiveSignals {
	s.mu.RLock()
	markets := s.copySnapshot(market)
	meta := s.metadataLocked()
	s.mu.RUnlock()

	hasData := len(markets) > 0

	if !hasData {
		if err := s.StartRefresh(); err == nil {
			meta.IsAnalyzing = true
			meta.Status = StatusAnalyzing
		}
		return LiveSignals{Markets: markets, Metadata: meta, Processing: true}
	}

	if meta.Status == StatusStale {
		if err := s.StartRefresh(); err == nil {
			meta.IsAnalyzing = true
		}
	}

	return LiveSignals{Markets: markets, Metadata: meta}
}

// GetStatus returns refresh bookkeeping without touching the snapshot payload
func (s *Service) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta := s.metadataLocked()
	return Status{
		IsAnalyzing:   meta.IsAnalyzing,
		Progress:      meta.Progress,
		LastUpdated:   meta.LastUpdated,
		HasData:       len(s.snapshot) > 0,
		CacheAgeHours: meta.CacheAgeHours,
		AnalysisCount: meta.AnalysisCount,
		Status:        meta.Status,
	}
}

// ForceRefresh starts a background refresh cycle, returning
// ErrRefreshInProgress when one is already running
func (s *Service) ForceRefresh() error {
	return s.StartRefresh()
}

// StartRefresh acquires the single-flight guard and spawns the refresh in the
// background. The guard is an atomic compare-and-set so concurrent read
// requests can race to trigger it without ever starting two cycles.
func (s *Service) StartRefresh() error {
	if err := s.begin(); err != nil {
		return err
	}
	go s.runRefresh(context.Background())
	return nil
}

// NeedsRefresh reports whether the cache is cold or older than the TTL
func (s *Service) NeedsRefresh() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshot) == 0 || s.meta.LastUpdated == nil {
		return true
	}
	return s.now().Sub(*s.meta.LastUpdated) > s.cfg.TTL
}

// RefreshIfStale is the periodic staleness check. Unlike StartRefresh it runs
// the cycle synchronously on the caller's goroutine.
func (s *Service) RefreshIfStale(ctx context.Context) error {
	if !s.NeedsRefresh() {
		return nil
	}
	if err := s.begin(); err != nil {
		// Another trigger won the race; nothing to do
		return nil
	}
	s.runRefresh(ctx)
	return nil
}

func (s *Service) begin() error {
	if !atomic.CompareAndSwapInt32(&s.refreshing, 0, 1) {
		return ErrRefreshInProgress
	}

	s.mu.Lock()
	s.meta.IsAnalyzing = true
	s.meta.Progress = 0
	s.mu.Unlock()

	return nil
}

// runRefresh executes one full-universe cycle. On success the snapshot is
// swapped atomically and persisted; on failure the previous snapshot is left
// untouched and only last_error changes.
func (s *Service) runRefresh(ctx context.Context) {
	defer atomic.StoreInt32(&s.refreshing, 0)

	startedAt := s.now()
	logger.Info("starting signal refresh cycle")

	fresh, results, err := s.analyzeUniverse(ctx)
	finishedAt := s.now()

	if err != nil {
		logger.Error("signal refresh failed", zap.Error(err))
		s.mu.Lock()
		s.meta.IsAnalyzing = false
		s.meta.LastError = err.Error()
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.snapshot = fresh
	s.meta.LastUpdated = &finishedAt
	s.meta.AnalysisCount++
	s.meta.Progress = 100
	s.meta.IsAnalyzing = false
	s.meta.LastError = ""
	meta := s.meta
	s.mu.Unlock()

	logger.Info("signal refresh complete",
		zap.Duration("took", finishedAt.Sub(startedAt)),
		zap.Int("results", len(results)),
	)

	// Durable persistence happens only after the in-memory swap succeeded
	s.persist(ctx, fresh, meta)

	if s.history != nil {
		if err := s.history.RecordRun(ctx, results, startedAt, finishedAt); err != nil {
			logger.Warn("failed to record run history", zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRefresh(ctx, fresh); err != nil {
			logger.Warn("refresh notification failed", zap.Error(err))
		}
	}
}

// analyzeUniverse walks every market, building the fresh per-market entries.
// Progress advances after each market completes.
func (s *Service) analyzeUniverse(ctx context.Context) (snapshot map[models.Market]models.CacheEntry, all []models.SignalResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			snapshot, all = nil, nil
			err = fmt.Errorf("refresh panicked: %v", r)
		}
	}()

	markets := universe.Markets()
	snapshot = make(map[models.Market]models.CacheEntry, len(markets))

	for i, market := range markets {
		results := s.analyzer.Analyze(ctx, universe.Symbols(market))
		all = append(all, results...)
		snapshot[market] = s.buildEntry(results)

		s.mu.Lock()
		s.meta.Progress = (i + 1) * 100 / len(markets)
		s.mu.Unlock()
	}

	if len(all) == 0 {
		return nil, nil, errors.New("analysis produced no results")
	}
	return snapshot, all, nil
}

// buildEntry projects a sorted result batch into the top buy and sell
// candidates. Results arrive already ordered by confidence descending.
func (s *Service) buildEntry(results []models.SignalResult) models.CacheEntry {
	at := s.now()
	entry := models.CacheEntry{
		Buy:  []models.SignalSummary{},
		Sell: []models.SignalSummary{},
	}

	for i := range results {
		r := &results[i]
		switch {
		case r.Signal.IsBuy() && len(entry.Buy) < s.cfg.TopN:
			entry.Buy = append(entry.Buy, r.Summarize(at))
		case r.Signal.IsSell() && len(entry.Sell) < s.cfg.TopN:
			entry.Sell = append(entry.Sell, r.Summarize(at))
		}
	}
	return entry
}

func (s *Service) persist(ctx context.Context, snapshot map[models.Market]models.CacheEntry, meta models.CacheMetadata) {
	rawSnapshot, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("failed to encode snapshot", zap.Error(err))
		return
	}
	if err := s.store.Put(ctx, KeySnapshot, rawSnapshot); err != nil {
		logger.Warn("failed to persist snapshot", zap.Error(err))
		return
	}

	rawMeta, err := json.Marshal(meta)
	if err != nil {
		logger.Error("failed to encode metadata", zap.Error(err))
		return
	}
	if err := s.store.Put(ctx, KeyMetadata, rawMeta); err != nil {
		logger.Warn("failed to persist metadata", zap.Error(err))
	}
}

// copySnapshot returns the requested market's entry, or every market for an
// empty filter. Callers own the returned map.
func (s *Service) copySnapshot(market models.Market) map[models.Market]models.CacheEntry {
	out := make(map[models.Market]models.CacheEntry, len(s.snapshot))
	for m, entry := range s.snapshot {
		if market != "" && m != market {
			continue
		}
		out[m] = entry
	}
	return out
}

// metadataLocked derives the outward metadata view; callers hold s.mu
func (s *Service) metadataLocked() Metadata {
	meta := Metadata{
		LastUpdated:   s.meta.LastUpdated,
		IsAnalyzing:   s.meta.IsAnalyzing,
		Progress:      s.meta.Progress,
		AnalysisCount: s.meta.AnalysisCount,
		LastError:     s.meta.LastError,
	}

	if s.meta.LastUpdated != nil {
		age := s.now().Sub(*s.meta.LastUpdated).Hours()
		meta.CacheAgeHours = &age
	}

	switch {
	case s.meta.IsAnalyzing:
		meta.Status = StatusAnalyzing
	case s.meta.LastUpdated != nil && s.now().Sub(*s.meta.LastUpdated) <= s.cfg.TTL:
		meta.Status = StatusFresh
	default:
		meta.Status = StatusStale
	}
	return meta
}
