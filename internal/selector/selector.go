// Package selector picks the next screenshot to post across all
// configured sources.
package selector

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/scoring"
	"github.com/steamgram/steamgram/internal/screenshot"
)

// Crawler enumerates candidate detail-page URLs for a source.
type Crawler interface {
	Enumerate(ctx context.Context, sourceID string, skip func(string) bool) ([]string, error)
}

// Extractor resolves one detail page; (nil, nil) means the candidate is
// unusable and should be dropped.
type Extractor interface {
	Extract(ctx context.Context, sourceID, pageURL string) (*screenshot.Screenshot, error)
}

// Cache holds per-source candidate lists between runs.
type Cache interface {
	Get(sourceID string) ([]screenshot.Screenshot, bool)
	Put(sourceID string, items []screenshot.Screenshot)
}

// Ledger answers membership for already-posted identifiers.
type Ledger interface {
	Contains(id string) bool
}

type Config struct {
	Sources     []string
	BatchSize   int
	BatchDelay  time.Duration
	SourceDelay time.Duration
}

type Selector struct {
	crawl   Crawler
	extract Extractor
	cache   Cache
	ledger  Ledger
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func New(crawl Crawler, extract Extractor, cache Cache, ledger Ledger, cfg Config, logger *zap.Logger) *Selector {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 45
	}
	return &Selector{
		crawl:   crawl,
		extract: extract,
		cache:   cache,
		ledger:  ledger,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Select gathers candidates from every source, drops those already in
// the ledger, and returns the most recently discovered of the rest.
// Score orders candidates within a source but never drives selection.
// Returns nil when nothing unposted remains anywhere.
func (s *Selector) Select(ctx context.Context) (*screenshot.Screenshot, error) {
	var all []screenshot.Screenshot

	for i, sourceID := range s.cfg.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			s.sleep(ctx, s.cfg.SourceDelay)
		}
		items, err := s.collect(ctx, sourceID)
		if err != nil {
			// One unreachable source never sinks the run.
			s.logger.Warn("source crawl failed",
				zap.String("source", sourceID),
				zap.Error(err),
			)
			continue
		}
		all = append(all, items...)
	}

	var best *screenshot.Screenshot
	for i := range all {
		shot := &all[i]
		if s.ledger.Contains(shot.PageURL) {
			continue
		}
		if best == nil || shot.DiscoveredAt.After(best.DiscoveredAt) {
			best = shot
		}
	}
	if best == nil {
		s.logger.Info("no unposted candidates", zap.Int("considered", len(all)))
		return nil, nil
	}
	s.logger.Info("candidate selected",
		zap.String("page_url", best.PageURL),
		zap.String("game", best.Game),
		zap.String("tier", string(best.Tier)),
		zap.Int("score", best.Score),
	)
	out := *best
	return &out, nil
}

// collect returns the candidate list for one source, from cache when
// fresh, otherwise by a full crawl-and-extract pass.
func (s *Selector) collect(ctx context.Context, sourceID string) ([]screenshot.Screenshot, error) {
	if items, ok := s.cache.Get(sourceID); ok {
		s.logger.Debug("cache hit",
			zap.String("source", sourceID),
			zap.Int("items", len(items)),
		)
		return items, nil
	}

	pageURLs, err := s.crawl.Enumerate(ctx, sourceID, s.ledger.Contains)
	if err != nil {
		return nil, err
	}

	items := s.extractAll(ctx, sourceID, pageURLs)

	now := s.now()
	for i := range items {
		items[i].Score = scoring.Score(&items[i], now)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})

	s.cache.Put(sourceID, items)
	return items, nil
}

// extractAll resolves detail pages in fixed-size windows: each window's
// fetches run concurrently and are awaited before the next one starts,
// with a pause in between to go easy on the upstream host.
func (s *Selector) extractAll(ctx context.Context, sourceID string, pageURLs []string) []screenshot.Screenshot {
	var (
		mu    sync.Mutex
		items []screenshot.Screenshot
	)

	for start := 0; start < len(pageURLs); start += s.cfg.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := start + s.cfg.BatchSize
		if end > len(pageURLs) {
			end = len(pageURLs)
		}

		var wg sync.WaitGroup
		for _, pageURL := range pageURLs[start:end] {
			wg.Add(1)
			go func(pageURL string) {
				defer wg.Done()
				shot, err := s.extract.Extract(ctx, sourceID, pageURL)
				if err != nil || shot == nil {
					return
				}
				mu.Lock()
				items = append(items, *shot)
				mu.Unlock()
			}(pageURL)
		}
		wg.Wait()

		if end < len(pageURLs) {
			s.sleep(ctx, s.cfg.BatchDelay)
		}
	}
	return items
}

func (s *Selector) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
