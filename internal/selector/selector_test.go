package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/screenshot"
)

type stubCrawler struct {
	pages map[string][]string
	err   error
	calls int
}

func (c *stubCrawler) Enumerate(_ context.Context, sourceID string, skip func(string) bool) ([]string, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	var out []string
	for _, u := range c.pages[sourceID] {
		if skip == nil || !skip(u) {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubExtractor struct {
	shots map[string]*screenshot.Screenshot
}

func (e *stubExtractor) Extract(_ context.Context, sourceID, pageURL string) (*screenshot.Screenshot, error) {
	shot, ok := e.shots[pageURL]
	if !ok {
		return nil, nil
	}
	out := *shot
	out.SourceID = sourceID
	return &out, nil
}

type mapCache struct {
	entries map[string][]screenshot.Screenshot
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]screenshot.Screenshot)}
}

func (c *mapCache) Get(sourceID string) ([]screenshot.Screenshot, bool) {
	items, ok := c.entries[sourceID]
	return items, ok
}

func (c *mapCache) Put(sourceID string, items []screenshot.Screenshot) {
	c.entries[sourceID] = items
}

type setLedger map[string]struct{}

func (l setLedger) Contains(id string) bool {
	_, ok := l[id]
	return ok
}

func newTestSelector(c Crawler, e Extractor, cache Cache, l Ledger, sources ...string) *Selector {
	metrics.Init()
	return New(c, e, cache, l, Config{Sources: sources, BatchSize: 2}, zap.NewNop())
}

func shotAt(pageURL string, at time.Time) *screenshot.Screenshot {
	return &screenshot.Screenshot{
		PageURL:      pageURL,
		ImageURL:     pageURL + "/img.jpg",
		Tier:         screenshot.TierStandard,
		DiscoveredAt: at,
	}
}

// One source yields A, B, C: B fails extraction and A was already
// posted, so C is the only possible pick.
func TestSelectEndToEnd(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	crawl := &stubCrawler{pages: map[string][]string{"src": {"A", "B", "C"}}}
	extract := &stubExtractor{shots: map[string]*screenshot.Screenshot{
		"A": shotAt("A", base.Add(2*time.Hour)),
		"C": shotAt("C", base),
	}}
	ledger := setLedger{"A": {}}

	s := newTestSelector(crawl, extract, newMapCache(), ledger, "src")
	got, err := s.Select(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "C", got.PageURL)
}

func TestSelectMostRecentWinsOverScore(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := shotAt("old", base.Add(-time.Hour))
	older.Tier = screenshot.TierUltra
	older.Game = "Elden Ring"
	newer := shotAt("new", base)

	crawl := &stubCrawler{pages: map[string][]string{"src": {"old", "new"}}}
	extract := &stubExtractor{shots: map[string]*screenshot.Screenshot{
		"old": older,
		"new": newer,
	}}

	s := newTestSelector(crawl, extract, newMapCache(), setLedger{}, "src")
	got, err := s.Select(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	// The ultra-tier candidate scores far higher, but recency decides.
	require.Equal(t, "new", got.PageURL)
}

func TestSelectUsesCacheWithoutCrawling(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := newMapCache()
	cache.Put("src", []screenshot.Screenshot{*shotAt("cached", base)})

	crawl := &stubCrawler{}
	s := newTestSelector(crawl, &stubExtractor{}, cache, setLedger{}, "src")
	got, err := s.Select(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "cached", got.PageURL)
	require.Zero(t, crawl.calls)
}

func TestSelectCachePopulatedAndScored(t *testing.T) {
	t.Parallel()

	base := time.Now().UTC()
	crawl := &stubCrawler{pages: map[string][]string{"src": {"A", "B"}}}
	low := shotAt("A", base)
	high := shotAt("B", base)
	high.Tier = screenshot.TierUltra
	extract := &stubExtractor{shots: map[string]*screenshot.Screenshot{"A": low, "B": high}}

	cache := newMapCache()
	s := newTestSelector(crawl, extract, cache, setLedger{}, "src")
	_, err := s.Select(context.Background())
	require.NoError(t, err)

	items, ok := cache.Get("src")
	require.True(t, ok)
	require.Len(t, items, 2)
	// Cached lists are score-ordered, best first.
	require.Equal(t, "B", items[0].PageURL)
	require.Greater(t, items[0].Score, items[1].Score)
}

func TestSelectStaleCacheLedgerFiltering(t *testing.T) {
	t.Parallel()

	// A cached entry can predate a post; the ledger still wins.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := newMapCache()
	cache.Put("src", []screenshot.Screenshot{
		*shotAt("posted", base.Add(time.Hour)),
		*shotAt("fresh", base),
	})

	s := newTestSelector(&stubCrawler{}, &stubExtractor{}, cache, setLedger{"posted": {}}, "src")
	got, err := s.Select(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "fresh", got.PageURL)
}

func TestSelectToleratesFailingSource(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cacheA := newMapCache()
	cacheA.Put("good", []screenshot.Screenshot{*shotAt("ok", base)})

	s := New(
		&stubCrawler{err: errors.New("listing down")},
		&stubExtractor{},
		cacheA,
		setLedger{},
		Config{Sources: []string{"bad", "good"}},
		zap.NewNop(),
	)
	metrics.Init()
	got, err := s.Select(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "ok", got.PageURL)
}

func TestSelectNothingLeft(t *testing.T) {
	t.Parallel()

	crawl := &stubCrawler{pages: map[string][]string{"src": {}}}
	s := newTestSelector(crawl, &stubExtractor{}, newMapCache(), setLedger{}, "src")
	got, err := s.Select(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}
