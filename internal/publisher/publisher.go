// Package publisher posts a screenshot to Instagram, falling through a
// cascade of delivery strategies until one sticks.
package publisher

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/screenshot"
)

// Processor turns the original asset into an Instagram-ready JPEG.
// *imaging.Processor satisfies it.
type Processor interface {
	Prepare(ctx context.Context, url string) ([]byte, error)
}

type Publisher struct {
	graph    *GraphClient
	uploader *Uploader
	proc     Processor
	logger   *zap.Logger
}

func New(graph *GraphClient, uploader *Uploader, proc Processor, logger *zap.Logger) *Publisher {
	return &Publisher{graph: graph, uploader: uploader, proc: proc, logger: logger}
}

// Publish tries, in order: the Steam CDN URL re-parameterized into
// Instagram-compatible shapes, a locally processed copy re-hosted on a
// public image host, and finally the bare original URL. Returns the
// Instagram post id.
func (p *Publisher) Publish(ctx context.Context, shot *screenshot.Screenshot, caption string) (string, error) {
	if err := p.graph.VerifyToken(ctx); err != nil {
		return "", err
	}

	for i, url := range steamURLVariants(shot.ImageURL) {
		postID, err := p.graph.PublishImage(ctx, url, caption)
		if err == nil {
			p.logger.Info("published via direct CDN URL",
				zap.Int("variant", i+1),
				zap.String("post_id", postID),
			)
			return postID, nil
		}
		p.logger.Debug("CDN URL variant rejected",
			zap.Int("variant", i+1),
			zap.Error(err),
		)
	}

	postID, err := p.publishProcessed(ctx, shot, caption)
	if err == nil {
		return postID, nil
	}
	p.logger.Warn("processed-image strategy failed", zap.Error(err))

	postID, err = p.graph.PublishImage(ctx, shot.ImageURL, caption)
	if err != nil {
		return "", fmt.Errorf("all upload strategies failed: %w", err)
	}
	p.logger.Info("published via original URL", zap.String("post_id", postID))
	return postID, nil
}

func (p *Publisher) publishProcessed(ctx context.Context, shot *screenshot.Screenshot, caption string) (string, error) {
	jpeg, err := p.proc.Prepare(ctx, shot.ImageURL)
	if err != nil {
		return "", err
	}
	hosted, err := p.uploader.Upload(ctx, jpeg)
	if err != nil {
		return "", err
	}
	postID, err := p.graph.PublishImage(ctx, hosted, caption)
	if err != nil {
		return "", err
	}
	p.logger.Info("published via re-hosted image",
		zap.String("hosted_url", hosted),
		zap.String("post_id", postID),
	)
	return postID, nil
}

// steamURLVariants re-parameterizes a Steam CDN URL into the shapes
// Instagram accepts, best quality first. Non-Steam URLs pass through
// unchanged.
func steamURLVariants(imageURL string) []string {
	if !strings.Contains(imageURL, "steamuserimages") && !strings.Contains(imageURL, "steamusercontent") {
		return []string{imageURL}
	}
	base := imageURL
	if i := strings.Index(imageURL, "?"); i >= 0 {
		base = imageURL[:i]
	}
	const suffix = "&ima=fit&impolicy=Letterbox&imcolor=%23000000&letterbox=true"
	return []string{
		base + "?imw=1080&imh=1080" + suffix,
		base + "?imw=1080&imh=565" + suffix,
		base + "?imw=1080&imh=1350" + suffix,
		base + "?imw=800&imh=800" + suffix,
		base + "?imw=640&imh=640" + suffix,
	}
}
