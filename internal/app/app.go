// Package app wires the service's components from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/cache"
	"github.com/steamgram/steamgram/internal/caption"
	"github.com/steamgram/steamgram/internal/config"
	"github.com/steamgram/steamgram/internal/crawler"
	"github.com/steamgram/steamgram/internal/extractor"
	"github.com/steamgram/steamgram/internal/fetcher"
	"github.com/steamgram/steamgram/internal/imaging"
	"github.com/steamgram/steamgram/internal/ledger"
	"github.com/steamgram/steamgram/internal/logging"
	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/pipeline"
	"github.com/steamgram/steamgram/internal/publisher"
	"github.com/steamgram/steamgram/internal/selector"
)

// App holds every wired component for the command layer.
type App struct {
	Cfg      config.Config
	Logger   *zap.Logger
	Cache    *cache.Store
	Ledger   ledger.Ledger
	History  *caption.History
	Pipeline *pipeline.Pipeline
	Status   *pipeline.Status
}

// New loads configuration and builds the full component graph.
func New(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics.Init()

	fetch := fetcher.New(fetcher.Config{
		UserAgent:      cfg.Crawler.UserAgent,
		Timeout:        cfg.RequestTimeout(),
		MaxRetries:     cfg.HTTP.MaxRetries,
		BackoffInitial: time.Duration(cfg.HTTP.BackoffInitialMs) * time.Millisecond,
		BackoffMax:     time.Duration(cfg.HTTP.BackoffMaxMs) * time.Millisecond,
	}, logger)

	crawl := crawler.New(fetch, crawler.Config{
		BaseURL:          cfg.Sources.BaseURL,
		PageSize:         cfg.Crawler.PageSize,
		MinPages:         cfg.Crawler.MinPages,
		EmptyPageRun:     cfg.Crawler.EmptyPageRun,
		PageSafetyMargin: cfg.Crawler.PageSafetyMargin,
		DefaultItemCount: cfg.Crawler.DefaultItemCount,
		PageDelay:        time.Duration(cfg.Crawler.PageDelayMs) * time.Millisecond,
	}, logger)

	extract := extractor.New(fetch, logger)
	store := cache.New(cfg.CacheTTL(), cache.SystemClock())

	var led ledger.Ledger
	if cfg.Ledger.DSN != "" {
		led, err = ledger.NewPostgresLedger(ctx, cfg.Ledger.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres ledger: %w", err)
		}
	} else {
		led = ledger.NewFileLedger(cfg.Ledger.Path)
	}
	if err := led.Load(ctx); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	metrics.SetLedgerSize(led.Size())
	logger.Info("ledger loaded", zap.Int("posted", led.Size()))

	history := caption.NewHistory(cfg.Caption.HistoryPath)
	if err := history.Load(); err != nil {
		logger.Warn("caption history unreadable, starting fresh", zap.Error(err))
	}

	proc := imaging.NewProcessor(fetch, logger)
	gen, err := caption.New(caption.Config{
		AIEnabled:        cfg.Caption.AIEnabled,
		VisionEnabled:    cfg.Caption.VisionEnabled,
		Provider:         cfg.Caption.Provider,
		Model:            cfg.Caption.Model,
		OpenAIKey:        cfg.Caption.OpenAIKey,
		AnthropicKey:     cfg.Caption.AnthropicKey,
		GeminiKey:        cfg.Caption.GeminiKey,
		FallbackToStatic: cfg.Caption.FallbackToStatic,
		Variety:          cfg.Caption.Variety,
		MaxHashtags:      cfg.Caption.MaxHashtags,
	}, history, proc.Download, logger)
	if err != nil {
		return nil, fmt.Errorf("build caption generator: %w", err)
	}

	graph := publisher.NewGraphClient(
		cfg.Instagram.PageID,
		cfg.Instagram.AccessToken,
		&http.Client{Timeout: cfg.RequestTimeout()},
	)
	uploader := publisher.NewUploader(
		cfg.Publish.ImgBBKey,
		&http.Client{Timeout: 60 * time.Second},
		logger,
	)
	pub := publisher.New(graph, uploader, proc, logger)

	sel := selector.New(crawl, extract, store, led, selector.Config{
		Sources:     cfg.Sources.Pool,
		BatchSize:   cfg.Crawler.BatchSize,
		BatchDelay:  time.Duration(cfg.Crawler.BatchDelayMs) * time.Millisecond,
		SourceDelay: time.Duration(cfg.Crawler.SourceDelayMs) * time.Millisecond,
	}, logger)

	status := &pipeline.Status{}
	pipe := pipeline.New(sel, gen, pub, led, history, status, logger)

	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Cache:    store,
		Ledger:   led,
		History:  history,
		Pipeline: pipe,
		Status:   status,
	}, nil
}

// Close releases held resources.
func (a *App) Close() {
	if pg, ok := a.Ledger.(*ledger.PostgresLedger); ok {
		pg.Close()
	}
	_ = a.Logger.Sync()
}
