package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/stockpulse/internal/adapters/classifier"
	"github.com/selivandex/stockpulse/internal/adapters/config"
	"github.com/selivandex/stockpulse/internal/adapters/database"
	"github.com/selivandex/stockpulse/internal/adapters/news"
	"github.com/selivandex/stockpulse/internal/adapters/price"
	redisstore "github.com/selivandex/stockpulse/internal/adapters/redis"
	"github.com/selivandex/stockpulse/internal/adapters/telegram"
	"github.com/selivandex/stockpulse/internal/backtest"
	"github.com/selivandex/stockpulse/internal/portfolio"
	"github.com/selivandex/stockpulse/internal/regime"
	"github.com/selivandex/stockpulse/internal/sentiment"
	"github.com/selivandex/stockpulse/internal/signalcache"
	"github.com/selivandex/stockpulse/internal/strategy"
	"github.com/selivandex/stockpulse/pkg/logger"
	"github.com/selivandex/stockpulse/pkg/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("StockPulse signal engine starting...")

	// Durable snapshot store: Redis when reachable, in-memory otherwise
	store := initStore(cfg)

	// Optional run-history database
	history, db, err := initHistory(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	// Optional refresh notifier
	notifier := initNotifier(cfg)

	service := signalcache.NewService(buildAnalyzer(cfg), store, history, notifier, cfg.Cache)

	if err := service.Hydrate(ctx); err != nil {
		logger.Warn("cache hydration failed, starting cold", zap.Error(err))
	}

	// The periodic staleness check drives the 24h refresh cadence
	workers := worker.NewWorkerGroup(ctx)
	workers.Add(signalcache.NewRefreshWorker(service), cfg.Cache.CheckInterval)
	workers.Start()

	logger.Info("signal engine ready",
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Duration("check_interval", cfg.Cache.CheckInterval),
	)

	<-ctx.Done()
	logger.Info("shutting down gracefully...")
	workers.Stop(shutdownTimeout)

	return nil
}

// buildAnalyzer wires the full per-symbol pipeline
func buildAnalyzer(cfg *config.Config) *portfolio.Analyzer {
	prices := price.NewYahooProvider(cfg.Providers.RequestTimeout, cfg.Providers.MinRequestInterval, cfg.Providers.MaxRetries)

	googleNews := news.NewGoogleNewsProvider(cfg.Providers.RequestTimeout)
	yahooNews := news.NewYahooNewsProvider(cfg.Providers.RequestTimeout)

	marketFeeds := news.NewMarketFeedsProvider(cfg.Providers.RequestTimeout)

	indiaChain := news.Chain{yahooNews, googleNews, marketFeeds}

	usChain := news.Chain{}
	if cfg.Providers.NewsAPIKey != "" {
		usChain = append(usChain, news.NewNewsAPIProvider(cfg.Providers.NewsAPIKey, cfg.Providers.RequestTimeout))
	}
	if cfg.Providers.AlphaVantageKey != "" {
		usChain = append(usChain, news.NewAlphaVantageProvider(cfg.Providers.AlphaVantageKey, cfg.Providers.RequestTimeout))
	}
	usChain = append(usChain, yahooNews)

	cls := classifier.NewHuggingFaceClient(cfg.Providers.HFToken, cfg.Providers.HFModel, cfg.Providers.ClassifierTimeout)
	collector := sentiment.NewCollector(indiaChain, usChain, googleNews, cls)

	return portfolio.NewAnalyzer(
		prices,
		collector,
		regime.NewClassifier(prices),
		backtest.NewEngine(),
		strategy.NewEngine(cfg.Analysis),
		cfg.Analysis.Workers,
	)
}

func initStore(cfg *config.Config) signalcache.Store {
	store, err := redisstore.New(&cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-memory store", zap.Error(err))
		return signalcache.NewMemoryStore()
	}
	return store
}

func initHistory(cfg *config.Config) (signalcache.HistoryRecorder, *database.DB, error) {
	if !cfg.Database.Enabled {
		return nil, nil, nil
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.RunMigrations(db.Conn()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return database.NewHistoryRepository(db), db, nil
}

func initNotifier(cfg *config.Config) signalcache.Notifier {
	if cfg.Telegram.BotToken == "" {
		return nil
	}

	notifier, err := telegram.NewNotifier(&cfg.Telegram)
	if err != nil {
		logger.Warn("telegram notifier disabled", zap.Error(err))
		return nil
	}
	return notifier
}
