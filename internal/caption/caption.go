// Package caption produces the Instagram caption for a screenshot:
// body text from an AI provider or local templates, plus an assembled
// hashtag block.
package caption

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBodyLength = 200

type Config struct {
	AIEnabled        bool
	VisionEnabled    bool
	Provider         string
	Model            string
	OpenAIKey        string
	AnthropicKey     string
	GeminiKey        string
	FallbackToStatic bool
	Variety          string
	MaxHashtags      int
}

// ImageFetcher downloads the screenshot asset for vision analysis.
type ImageFetcher func(ctx context.Context, url string) ([]byte, error)

// Subject is the slice of a screenshot the generator cares about.
type Subject struct {
	Game     string
	Title    string
	Tier     string
	ImageURL string
}

type Generator struct {
	cfg        Config
	provider   provider
	vision     *geminiProvider
	history    *History
	fetchImage ImageFetcher
	logger     *zap.Logger
	now        func() time.Time
	rng        *rand.Rand
}

// New wires a generator from config. AI providers are optional: with
// AIEnabled false (or no usable key) every caption comes from the local
// template pool.
func New(cfg Config, history *History, fetchImage ImageFetcher, logger *zap.Logger) (*Generator, error) {
	if cfg.MaxHashtags <= 0 {
		cfg.MaxHashtags = 30
	}
	g := &Generator{
		cfg:        cfg,
		history:    history,
		fetchImage: fetchImage,
		logger:     logger,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	client := &http.Client{Timeout: 30 * time.Second}
	if cfg.AIEnabled {
		switch strings.ToLower(cfg.Provider) {
		case "openai":
			if cfg.OpenAIKey == "" {
				return nil, fmt.Errorf("openai provider selected but no API key configured")
			}
			g.provider = &openaiProvider{apiKey: cfg.OpenAIKey, model: cfg.Model, client: client}
		case "anthropic":
			if cfg.AnthropicKey == "" {
				return nil, fmt.Errorf("anthropic provider selected but no API key configured")
			}
			g.provider = &anthropicProvider{apiKey: cfg.AnthropicKey, model: cfg.Model, client: client}
		case "gemini":
			if cfg.GeminiKey == "" {
				return nil, fmt.Errorf("gemini provider selected but no API key configured")
			}
			g.provider = &geminiProvider{apiKey: cfg.GeminiKey, model: cfg.Model, client: client}
		default:
			return nil, fmt.Errorf("unknown AI provider: %q (valid: openai, anthropic, gemini)", cfg.Provider)
		}
	}
	if cfg.VisionEnabled && cfg.GeminiKey != "" {
		g.vision = &geminiProvider{apiKey: cfg.GeminiKey, model: cfg.Model, client: client}
	}
	return g, nil
}

// Generate returns the complete caption: body, blank line, hashtags.
// Provider failures degrade through the cascade instead of propagating,
// so a post never dies for want of prose.
func (g *Generator) Generate(ctx context.Context, subj Subject) (string, error) {
	body := g.body(ctx, subj)
	tags := g.Hashtags(subj)
	return body + "\n\n" + strings.Join(tags, " "), nil
}

// body walks the cascade: vision analysis, then plain text AI, then the
// local template pool, which cannot fail.
func (g *Generator) body(ctx context.Context, subj Subject) string {
	theme := themeFor(g.now())

	if g.vision != nil && g.fetchImage != nil {
		text, err := g.visionBody(ctx, subj, theme)
		if err == nil {
			return text
		}
		g.logger.Warn("vision caption failed", zap.Error(err))
		if !g.cfg.FallbackToStatic {
			return g.templateBody(subj, theme)
		}
	}

	if g.provider != nil {
		text, err := g.provider.generate(ctx, textPrompt(subj, theme, g.now()))
		if err == nil && strings.TrimSpace(text) != "" {
			return g.finishAIBody(text)
		}
		g.logger.Warn("AI caption failed, using static caption", zap.Error(err))
		return staticBody(subj, theme)
	}

	return g.templateBody(subj, theme)
}

func (g *Generator) visionBody(ctx context.Context, subj Subject, theme dailyTheme) (string, error) {
	image, err := g.fetchImage(ctx, subj.ImageURL)
	if err != nil {
		return "", fmt.Errorf("fetch image for vision: %w", err)
	}
	text, err := g.vision.generateWithImage(ctx, visionPrompt(subj, theme, g.history.Top(10)), image)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("vision provider returned empty caption")
	}
	return g.finishAIBody(text), nil
}

var hashtagPattern = regexp.MustCompile(`#\w+`)

// finishAIBody strips any hashtags the model slipped in (ours are added
// separately), truncates, and records the pattern against repetition.
func (g *Generator) finishAIBody(text string) string {
	text = strings.TrimSpace(hashtagPattern.ReplaceAllString(strings.TrimSpace(text), ""))
	// Truncate on rune boundaries; models are fond of emoji and a byte
	// slice could cut one in half.
	if runes := []rune(text); len(runes) > maxBodyLength {
		text = string(runes[:maxBodyLength-3]) + "..."
	}
	g.history.Bump(Pattern(text))
	return text
}
