package signalcache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/pkg/models"
)

type stubAnalyzer struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	panicMsg string
	result  func(symbols []string) []models.SignalResult
}

func (s *stubAnalyzer) Analyze(_ context.Context, symbols []string) []models.SignalResult {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.block != nil {
		<-s.block
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	if s.result != nil {
		return s.result(symbols)
	}

	out := make([]models.SignalResult, 0, len(symbols))
	for i, symbol := range symbols {
		signal := models.SignalBuy
		if i%2 == 1 {
			signal = models.SignalSell
		}
		out = append(out, models.SignalResult{
			Symbol:     symbol,
			Price:      100,
			Signal:     signal,
			Confidence: 80 - float64(i),
			TechnicalSignals: models.DefaultTechnicalSignals(),
		})
	}
	return out
}

func (s *stubAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		TTL:           24 * time.Hour,
		CheckInterval: time.Hour,
		TopN:          5,
	}
}

func newTestService(analyzer Analyzer) *Service {
	return NewService(analyzer, NewMemoryStore(), nil, nil, testCacheConfig())
}

func TestRefreshSingleFlight(t *testing.T) {
	analyzer := &stubAnalyzer{block: make(chan struct{})}
	service := newTestService(analyzer)

	if err := service.ForceRefresh(); err != nil {
		t.Fatalf("first refresh rejected: %v", err)
	}

	// Wait until the cycle is visibly running
	deadline := time.After(2 * time.Second)
	for !service.GetStatus().IsAnalyzing {
		select {
		case <-deadline:
			t.Fatal("refresh never marked analyzing")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if err := service.ForceRefresh(); !errors.Is(err, ErrRefreshInProgress) {
		t.Fatalf("expected ErrRefreshInProgress, got %v", err)
	}

	close(analyzer.block)

	deadline = time.After(2 * time.Second)
	for service.GetStatus().IsAnalyzing {
		select {
		case <-deadline:
			t.Fatal("refresh never finished")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if got := service.GetStatus(); !got.HasData {
		t.Error("expected data after refresh")
	}
	if err := service.ForceRefresh(); err != nil {
		t.Errorf("refresh after completion rejected: %v", err)
	}
}

func TestRefreshSuccessSwapsSnapshot(t *testing.T) {
	analyzer := &stubAnalyzer{}
	service := newTestService(analyzer)

	if err := service.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	status := service.GetStatus()
	if !status.HasData {
		t.Fatal("expected data after refresh")
	}
	if status.IsAnalyzing {
		t.Error("is_analyzing should be cleared")
	}
	if status.AnalysisCount != 1 {
		t.Errorf("expected analysis_count 1, got %d", status.AnalysisCount)
	}
	if status.Status != StatusFresh {
		t.Errorf("expected fresh, got %s", status.Status)
	}
	if status.Progress != 100 {
		t.Errorf("expected progress 100, got %d", status.Progress)
	}

	live := service.GetLiveSignals("")
	if live.Processing {
		t.Error("unexpected processing marker with data present")
	}
	if len(live.Markets) != 2 {
		t.Fatalf("expected both markets, got %d", len(live.Markets))
	}
	for market, entry := range live.Markets {
		if len(entry.Buy) == 0 || len(entry.Sell) == 0 {
			t.Errorf("market %s missing candidates: %d buy %d sell", market, len(entry.Buy), len(entry.Sell))
		}
		if len(entry.Buy) > 5 || len(entry.Sell) > 5 {
			t.Errorf("market %s exceeds top-5: %d buy %d sell", market, len(entry.Buy), len(entry.Sell))
		}
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	analyzer := &stubAnalyzer{}
	service := newTestService(analyzer)

	if err := service.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	before, err := json.Marshal(service.GetLiveSignals("").Markets)
	if err != nil {
		t.Fatal(err)
	}

	analyzer.panicMsg = "upstream exploded"
	if err := service.begin(); err != nil {
		t.Fatalf("guard not released: %v", err)
	}
	service.runRefresh(context.Background())

	after, err := json.Marshal(service.GetLiveSignals("").Markets)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("failed refresh mutated the snapshot")
	}

	status := service.GetStatus()
	if status.IsAnalyzing {
		t.Error("is_analyzing should be cleared after failure")
	}
	if status.AnalysisCount != 1 {
		t.Errorf("failed refresh must not bump analysis_count, got %d", status.AnalysisCount)
	}

	live := service.GetLiveSignals("")
	if live.Metadata.LastError == "" {
		t.Error("expected last_error to be recorded")
	}
}

func TestColdReadTriggersRefresh(t *testing.T) {
	analyzer := &stubAnalyzer{block: make(chan struct{})}
	service := newTestService(analyzer)

	live := service.GetLiveSignals(models.MarketIndia)
	if !live.Processing {
		t.Error("cold read should respond processing")
	}
	if len(live.Markets) != 0 {
		t.Errorf("cold read should carry no data, got %d markets", len(live.Markets))
	}
	if live.Metadata.Status != StatusAnalyzing {
		t.Errorf("expected analyzing status, got %s", live.Metadata.Status)
	}

	close(analyzer.block)

	deadline := time.After(2 * time.Second)
	for service.GetStatus().IsAnalyzing || !service.GetStatus().HasData {
		select {
		case <-deadline:
			t.Fatal("background refresh never completed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if analyzer.callCount() == 0 {
		t.Error("analyzer was never invoked")
	}
}

func TestStaleReadServesDataAndRefreshes(t *testing.T) {
	analyzer := &stubAnalyzer{}
	service := newTestService(analyzer)

	if err := service.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("seed refresh failed: %v", err)
	}

	// Move the clock past the TTL
	service.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	if !service.NeedsRefresh() {
		t.Fatal("expected staleness past TTL")
	}

	live := service.GetLiveSignals("")
	if live.Processing {
		t.Error("stale read must still serve data")
	}
	if len(live.Markets) == 0 {
		t.Error("stale read returned no data")
	}
	if live.Metadata.CacheAgeHours == nil || *live.Metadata.CacheAgeHours < 24 {
		t.Error("expected cache age above 24h")
	}
}

func TestMarketFilter(t *testing.T) {
	analyzer := &stubAnalyzer{}
	service := newTestService(analyzer)

	if err := service.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	live := service.GetLiveSignals(models.MarketUS)
	if len(live.Markets) != 1 {
		t.Fatalf("expected one market, got %d", len(live.Markets))
	}
	if _, ok := live.Markets[models.MarketUS]; !ok {
		t.Error("expected the us entry")
	}
}

func TestHydrate(t *testing.T) {
	store := NewMemoryStore()
	analyzer := &stubAnalyzer{}

	first := NewService(analyzer, store, nil, nil, testCacheConfig())
	if err := first.RefreshIfStale(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}

	second := NewService(analyzer, store, nil, nil, testCacheConfig())
	if err := second.Hydrate(context.Background()); err != nil {
		t.Fatalf("hydrate failed: %v", err)
	}

	status := second.GetStatus()
	if !status.HasData {
		t.Error("expected hydrated data")
	}
	if status.IsAnalyzing {
		t.Error("hydrated cache must not be marked analyzing")
	}
	if status.LastUpdated == nil {
		t.Error("expected last_updated from persisted metadata")
	}
	if status.AnalysisCount != 1 {
		t.Errorf("expected analysis_count 1, got %d", status.AnalysisCount)
	}
}

func TestHydrateEmptyStore(t *testing.T) {
	service := newTestService(&stubAnalyzer{})
	if err := service.Hydrate(context.Background()); err != nil {
		t.Fatalf("empty store hydrate should not fail: %v", err)
	}
	if service.GetStatus().HasData {
		t.Error("expected no data")
	}
}
