// Package extractor resolves a candidate detail page into a structured
// screenshot record with a direct media URL, quality tier, and optional
// title and game metadata.
package extractor

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/screenshot"
)

// sizeParams asks the Steam CDN for the largest rendition it will serve.
const sizeParams = "imw=5000&imh=5000&ima=fit&impolicy=Letterbox"

// Fetcher retrieves a page body. *fetcher.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Extractor turns detail pages into screenshot records. Failures are
// soft: a page that cannot be fetched or parsed yields (nil, nil) so the
// caller can drop the candidate and move on.
type Extractor struct {
	fetch  Fetcher
	logger *zap.Logger
	now    func() time.Time
}

func New(fetch Fetcher, logger *zap.Logger) *Extractor {
	return &Extractor{fetch: fetch, logger: logger, now: time.Now}
}

// Extract fetches pageURL and runs the strategy cascade over its content.
// The first strategy to produce a URL wins; results are never merged.
func (e *Extractor) Extract(ctx context.Context, sourceID, pageURL string) (*screenshot.Screenshot, error) {
	body, err := e.fetch.Get(ctx, pageURL)
	if err != nil {
		metrics.ObserveExtraction("fetch_error")
		e.logger.Warn("detail page fetch failed",
			zap.String("url", pageURL),
			zap.Error(err),
		)
		return nil, nil
	}
	shot := e.FromContent(sourceID, pageURL, body)
	if shot == nil {
		metrics.ObserveExtraction("no_match")
		e.logger.Warn("no extraction strategy matched", zap.String("url", pageURL))
		return nil, nil
	}
	metrics.ObserveExtraction("ok")
	return shot, nil
}

// FromContent applies the cascade to already-fetched page content.
func (e *Extractor) FromContent(sourceID, pageURL string, body []byte) *screenshot.Screenshot {
	content := string(body)
	doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if docErr != nil {
		doc = nil
	}

	var mediaURL string
	for _, strategy := range strategies {
		if url := strategy(doc, content); url != "" {
			mediaURL = url
			break
		}
	}
	if mediaURL == "" {
		return nil
	}

	mediaURL = normalizeMediaURL(mediaURL)

	shot := &screenshot.Screenshot{
		PageURL:      pageURL,
		ImageURL:     mediaURL,
		Tier:         classifyTier(mediaURL),
		SourceID:     sourceID,
		DiscoveredAt: e.now().UTC(),
	}
	if doc != nil {
		shot.Title = strings.TrimSpace(doc.Find("div.screenshotName").First().Text())
		shot.Game = strings.TrimSpace(doc.Find("div.screenshotAppName").First().Text())
	}
	return shot
}

// normalizeMediaURL strips resize parameters. Steam's own CDN gets the
// fixed maximum-size query re-appended; other hosts keep the bare URL
// because their parameters cannot be assumed to mean "resize".
func normalizeMediaURL(url string) string {
	base := url
	if i := strings.Index(url, "?"); i >= 0 {
		base = url[:i]
	} else if !strings.Contains(url, "steamuserimages") {
		return url
	}
	if strings.Contains(base, "steamuserimages") {
		return base + "?" + sizeParams
	}
	return base
}

func classifyTier(url string) screenshot.QualityTier {
	switch {
	case strings.Contains(url, "original"),
		strings.Contains(url, "5000"),
		strings.Contains(url, "3840x2160"):
		return screenshot.TierUltra
	case strings.Contains(url, "2560x1440"):
		return screenshot.TierVeryHigh
	case strings.Contains(url, "1920x1080"):
		return screenshot.TierHigh
	default:
		return screenshot.TierStandard
	}
}
