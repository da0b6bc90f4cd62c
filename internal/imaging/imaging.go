// Package imaging prepares screenshot assets for Instagram: download,
// fit into the accepted aspect-ratio envelope, and re-encode as JPEG.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Instagram rejects images wider than 1.91:1 or taller than 4:5.
const (
	maxWidth       = 1080
	landscapeRatio = 1.91
	portraitRatio  = 0.8
	portraitHeight = 1350
	jpegQuality    = 85
)

// Fetcher downloads the raw asset. *fetcher.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Processor struct {
	fetch  Fetcher
	logger *zap.Logger
}

func NewProcessor(fetch Fetcher, logger *zap.Logger) *Processor {
	return &Processor{fetch: fetch, logger: logger}
}

// Download fetches the asset without any processing, for callers that
// want the bytes as served (vision analysis, direct re-hosting).
func (p *Processor) Download(ctx context.Context, url string) ([]byte, error) {
	return p.fetch.Get(ctx, url)
}

// Prepare downloads the asset and returns an Instagram-ready JPEG.
func (p *Processor) Prepare(ctx context.Context, url string) ([]byte, error) {
	data, err := p.fetch.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	fitted := Fit(src)
	out, err := EncodeJPEG(fitted)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("image prepared",
		zap.String("format", format),
		zap.Int("width", fitted.Bounds().Dx()),
		zap.Int("height", fitted.Bounds().Dy()),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}

// Fit scales the image into Instagram's envelope. Out-of-bound aspect
// ratios are center-cropped to the nearest allowed shape; acceptable
// ones are only downscaled to the preferred width.
func Fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}
	ratio := float64(w) / float64(h)

	var tw, th int
	switch {
	case ratio > landscapeRatio:
		tw = maxWidth
		th = int(math.Round(maxWidth / landscapeRatio))
	case ratio < portraitRatio:
		tw = maxWidth
		th = portraitHeight
	default:
		tw = w
		if tw > maxWidth {
			tw = maxWidth
		}
		th = int(math.Round(float64(tw) / ratio))
	}
	if tw == w && th == h {
		return src
	}

	// Crop the source to the target shape, centered, then resample.
	targetRatio := float64(tw) / float64(th)
	cw, ch := w, h
	if ratio > targetRatio {
		cw = int(math.Round(float64(h) * targetRatio))
	} else if ratio < targetRatio {
		ch = int(math.Round(float64(w) / targetRatio))
	}
	x0 := b.Min.X + (w-cw)/2
	y0 := b.Min.Y + (h-ch)/2

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, image.Rect(x0, y0, x0+cw, y0+ch), draw.Over, nil)
	return dst
}

func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
