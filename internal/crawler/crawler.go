// Package crawler enumerates candidate detail pages from paginated profile
// listings, walking multiple view permutations and terminating each view's
// pagination on sustained emptiness.
package crawler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/metrics"
)

// Fetcher retrieves a page body. Satisfied by fetcher.Client.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Config tunes enumeration behavior.
type Config struct {
	// BaseURL is the profile root, e.g. https://steamcommunity.com/profiles.
	BaseURL string

	// PageSize is the assumed number of items per listing page.
	PageSize int

	// MinPages is the floor applied to the derived page count; noisy first
	// pages make smaller estimates unreliable.
	MinPages int

	// EmptyPageRun is how many consecutive pages without new items end a
	// view's pagination early.
	EmptyPageRun int

	// PageSafetyMargin is added to the derived page count.
	PageSafetyMargin int

	// DefaultItemCount is assumed when no count can be derived from markup.
	DefaultItemCount int

	// PageDelay is the pause between consecutive page fetches within a
	// view. Skipping it risks the source throttling subsequent runs.
	PageDelay time.Duration
}

// Crawler walks a source's listing views and collects unique detail URLs.
type Crawler struct {
	fetch  Fetcher
	cfg    Config
	logger *zap.Logger
}

// New builds a Crawler.
func New(fetch Fetcher, cfg Config, logger *zap.Logger) *Crawler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 30
	}
	if cfg.MinPages <= 0 {
		cfg.MinPages = 10
	}
	if cfg.EmptyPageRun <= 0 {
		cfg.EmptyPageRun = 3
	}
	if cfg.DefaultItemCount <= 0 {
		cfg.DefaultItemCount = 1000
	}
	return &Crawler{fetch: fetch, cfg: cfg, logger: logger}
}

// Enumerate returns the deduplicated set of candidate detail-page URLs
// reachable for sourceID. Identifiers for which skip returns true are
// excluded; passing the ledger's Contains keeps already-posted items out of
// the result without the crawler ever mutating the ledger.
func (c *Crawler) Enumerate(ctx context.Context, sourceID string, skip func(string) bool) ([]string, error) {
	if skip == nil {
		skip = func(string) bool { return false }
	}
	start := time.Now()
	profileURL := fmt.Sprintf("%s/%s/screenshots", strings.TrimRight(c.cfg.BaseURL, "/"), sourceID)

	profileBody, err := c.fetch.Get(ctx, profileURL)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", sourceID, err)
	}
	if marker := deniedMarker(profileBody); marker != "" {
		c.logger.Warn("source inaccessible, skipping",
			zap.String("source", sourceID),
			zap.String("marker", marker),
		)
		return nil, nil
	}

	maxPage := c.maxPage(profileBody, sourceID)
	c.logger.Info("starting listing crawl",
		zap.String("source", sourceID),
		zap.Int("max_page", maxPage),
	)

	seen := make(map[string]struct{})
	var found []string

	for _, view := range viewDescriptors {
		select {
		case <-ctx.Done():
			return found, ctx.Err()
		default:
		}
		added := c.walkView(ctx, sourceID, profileURL, view, maxPage, seen, skip, &found)
		c.logger.Debug("view finished",
			zap.String("source", sourceID),
			zap.String("view", view),
			zap.Int("new_items", added),
		)
	}

	metrics.ObserveCandidates(sourceID, len(found))
	metrics.ObserveCrawlDuration(sourceID, time.Since(start).Seconds())
	c.logger.Info("listing crawl complete",
		zap.String("source", sourceID),
		zap.Int("unique_items", len(found)),
	)
	return found, nil
}

// walkView pages through a single view descriptor until maxPage or a run of
// empty pages, appending new identifiers to found. Returns how many were new.
func (c *Crawler) walkView(
	ctx context.Context,
	sourceID string,
	profileURL string,
	view string,
	maxPage int,
	seen map[string]struct{},
	skip func(string) bool,
	found *[]string,
) int {
	emptyRun := 0
	total := 0

	for page := 1; page <= maxPage; page++ {
		if ctx.Err() != nil {
			return total
		}

		pageURL := buildPageURL(profileURL, view, page)
		body, err := c.fetch.Get(ctx, pageURL)
		if err != nil {
			// A single bad page never aborts the crawl.
			metrics.ObserveListingPage(sourceID, "error")
			c.logger.Warn("listing page fetch failed",
				zap.String("url", pageURL),
				zap.Error(err),
			)
			c.pause(ctx)
			continue
		}
		metrics.ObserveListingPage(sourceID, "ok")

		newItems := collectIdentifiers(body, seen, skip, found)
		total += newItems

		if newItems == 0 {
			emptyRun++
			if emptyRun >= c.cfg.EmptyPageRun {
				c.logger.Debug("empty page run, ending view",
					zap.String("view", view),
					zap.Int("page", page),
				)
				return total
			}
		} else {
			emptyRun = 0
		}

		c.pause(ctx)
	}
	return total
}

func (c *Crawler) pause(ctx context.Context) {
	if c.cfg.PageDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.cfg.PageDelay):
	}
}

// maxPage derives the number of pages to walk from the profile markup,
// falling back to a thumbnail-based estimate and finally a fixed count.
func (c *Crawler) maxPage(profileBody []byte, sourceID string) int {
	total := 0
	for _, p := range countPatterns {
		if m := p.FindSubmatch(profileBody); m != nil {
			if n, err := strconv.Atoi(string(m[1])); err == nil && n > 0 {
				total = n
				break
			}
		}
	}
	if total == 0 {
		if rows := len(thumbnailRowPattern.FindAll(profileBody, -1)); rows > 0 {
			total = rows * 10
			c.logger.Debug("estimated item count from thumbnails",
				zap.String("source", sourceID),
				zap.Int("estimate", total),
			)
		} else {
			total = c.cfg.DefaultItemCount
		}
	}

	pages := (total+c.cfg.PageSize-1)/c.cfg.PageSize + c.cfg.PageSafetyMargin
	if pages < c.cfg.MinPages {
		pages = c.cfg.MinPages
	}
	return pages
}

// collectIdentifiers extracts detail URLs from a listing page with both
// pattern families, appending unseen ones to found. Returns the new count.
func collectIdentifiers(body []byte, seen map[string]struct{}, skip func(string) bool, found *[]string) int {
	content := string(body)
	added := 0

	record := func(url string) {
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		if skip(url) {
			return
		}
		*found = append(*found, url)
		added++
	}

	for _, p := range hrefPatterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			record(normalizeDetailURL(m[1]))
		}
	}
	for _, p := range idPatterns {
		for _, m := range p.FindAllStringSubmatch(content, -1) {
			record(synthesizeDetailURL(m[1]))
		}
	}
	return added
}

func buildPageURL(profileURL, view string, page int) string {
	sep := "?"
	if strings.Contains(view, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%sp=%d", profileURL, view, sep, page)
}

func deniedMarker(body []byte) string {
	content := string(body)
	for _, marker := range accessDeniedMarkers {
		if strings.Contains(content, marker) {
			return marker
		}
	}
	return ""
}
