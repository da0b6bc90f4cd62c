package extractor

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

type stubFetcher struct {
	body []byte
	err  error
}

func (s *stubFetcher) Get(context.Context, string) ([]byte, error) {
	return s.body, s.err
}

func newTestExtractor(f Fetcher) *Extractor {
	metrics.Init()
	e := New(f, zap.NewNop())
	e.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestExtractFullPage(t *testing.T) {
	t.Parallel()

	page := `<html><head>
		<meta property="og:image" content="https://steamuserimages-a.akamaihd.net/ugc/123/2560x1440/shot.jpg?size=medium">
	</head><body>
		<div class="screenshotAppName">Elden Ring</div>
		<div class="screenshotName"> Sunset over Limgrave </div>
	</body></html>`

	e := newTestExtractor(&stubFetcher{body: []byte(page)})
	shot, err := e.Extract(context.Background(), "user1", "https://steamcommunity.com/sharedfiles/filedetails/?id=9")
	require.NoError(t, err)
	require.NotNil(t, shot)

	require.Equal(t, "https://steamuserimages-a.akamaihd.net/ugc/123/2560x1440/shot.jpg?"+sizeParams, shot.ImageURL)
	// The size parameters carry "5000", which outranks the 2560x1440 token.
	require.Equal(t, screenshot.TierUltra, shot.Tier)
	require.Equal(t, "Sunset over Limgrave", shot.Title)
	require.Equal(t, "Elden Ring", shot.Game)
	require.Equal(t, "user1", shot.SourceID)
	require.False(t, shot.DiscoveredAt.IsZero())
}

func TestCascadeOrderEarlierStrategyWins(t *testing.T) {
	t.Parallel()

	// Both the meta strategy and the broad image scan would match, with
	// different URLs. The meta URL must win.
	page := `<html><head>
		<meta property="og:image" content="https://cdn.example.net/meta.jpg">
	</head><body>
		<img src="https://cdn.example.net/broad-scan-much-longer-url.jpg">
	</body></html>`

	e := newTestExtractor(&stubFetcher{body: []byte(page)})
	shot := e.FromContent("s", "page", []byte(page))
	require.NotNil(t, shot)
	require.Equal(t, "https://cdn.example.net/meta.jpg", shot.ImageURL)
}

func TestStrategies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		page string
		want string
	}{
		{
			name: "image_src link",
			page: `<html><head><link rel="image_src" href="https://cdn.example.net/link.jpg"></head></html>`,
			want: "https://cdn.example.net/link.jpg",
		},
		{
			name: "primary media element gains size params",
			page: `<html><body><img id="ActualMedia" src="https://steamuserimages-a.akamaihd.net/ugc/1/shot.jpg"></body></html>`,
			want: "https://steamuserimages-a.akamaihd.net/ugc/1/shot.jpg?" + sizeParams,
		},
		{
			name: "ranked scan returns hi-res marker immediately",
			page: `<html><img src="https://steamuserimages-a.akamaihd.net/ugc/1/640x480/a.jpg?x=1">
				<img src="https://steamuserimages-a.akamaihd.net/ugc/1/3840x2160/b.jpg?x=1"></html>`,
			want: "https://steamuserimages-a.akamaihd.net/ugc/1/3840x2160/b.jpg?" + sizeParams,
		},
		{
			name: "ranked scan orders by encoded area",
			page: `<html><img src="https://steamuserimages-a.akamaihd.net/ugc/1/640x480/a.jpg">
				<img src="https://steamuserimages-a.akamaihd.net/ugc/1/800x600/b.jpg"></html>`,
			want: "https://steamuserimages-a.akamaihd.net/ugc/1/800x600/b.jpg?" + sizeParams,
		},
		{
			name: "details image element strips params",
			page: `<html><img class="screenshotDetailsImage" src="https://cdn.example.net/d.png?resize=1"></html>`,
			want: "https://cdn.example.net/d.png",
		},
		{
			name: "broad scan prefers longest URL",
			page: `<html><img src="https://cdn.example.net/a.jpg"><img src="https://cdn.example.net/longer/b.png"></html>`,
			want: "https://cdn.example.net/longer/b.png",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := newTestExtractor(&stubFetcher{})
			shot := e.FromContent("s", "page", []byte(tc.page))
			require.NotNil(t, shot)
			require.Equal(t, tc.want, shot.ImageURL)
		})
	}
}

func TestExtractSoftFailures(t *testing.T) {
	t.Parallel()

	t.Run("fetch error", func(t *testing.T) {
		t.Parallel()
		e := newTestExtractor(&stubFetcher{err: errors.New("status 502")})
		shot, err := e.Extract(context.Background(), "s", "page")
		require.NoError(t, err)
		require.Nil(t, shot)
	})

	t.Run("no strategy matches", func(t *testing.T) {
		t.Parallel()
		e := newTestExtractor(&stubFetcher{body: []byte("<html><p>no media here</p></html>")})
		shot, err := e.Extract(context.Background(), "s", "page")
		require.NoError(t, err)
		require.Nil(t, shot)
	})
}

func TestClassifyTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want screenshot.QualityTier
	}{
		{"https://x/ugc/1/3840x2160/a.jpg", screenshot.TierUltra},
		{"https://x/a_original.jpg", screenshot.TierUltra},
		{"https://x/a.jpg?imw=5000", screenshot.TierUltra},
		{"https://x/ugc/1/2560x1440/a.jpg", screenshot.TierVeryHigh},
		{"https://x/ugc/1/1920x1080/a.jpg", screenshot.TierHigh},
		{"https://x/ugc/1/a.jpg", screenshot.TierStandard},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, classifyTier(tc.url), tc.url)
	}
}
