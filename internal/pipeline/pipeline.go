// Package pipeline runs the end-to-end posting flow: select a
// candidate, caption it, publish it, and record the result.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/caption"
	"github.com/steamgram/steamgram/internal/ledger"
	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/screenshot"
)

// Selector yields the next unposted candidate, or nil when none remain.
type Selector interface {
	Select(ctx context.Context) (*screenshot.Screenshot, error)
}

// Captioner produces the full caption text for a candidate.
type Captioner interface {
	Generate(ctx context.Context, subj caption.Subject) (string, error)
}

// Publisher delivers the candidate and returns the platform post id.
type Publisher interface {
	Publish(ctx context.Context, shot *screenshot.Screenshot, caption string) (string, error)
}

// Status captures run outcomes for the health endpoint and the status
// command.
type Status struct {
	mu          sync.Mutex
	RunsStarted int       `json:"runs_started"`
	RunsOK      int       `json:"runs_ok"`
	RunsFailed  int       `json:"runs_failed"`
	RunsSkipped int       `json:"runs_skipped"`
	LastRunAt   time.Time `json:"last_run_at,omitzero"`
	LastPostID  string    `json:"last_post_id,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	PostedTotal int       `json:"posted_total"`
}

func (s *Status) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		RunsStarted: s.RunsStarted,
		RunsOK:      s.RunsOK,
		RunsFailed:  s.RunsFailed,
		RunsSkipped: s.RunsSkipped,
		LastRunAt:   s.LastRunAt,
		LastPostID:  s.LastPostID,
		LastError:   s.LastError,
		PostedTotal: s.PostedTotal,
	}
}

type Pipeline struct {
	selector  Selector
	captioner Captioner
	publisher Publisher
	ledger    ledger.Ledger
	history   *caption.History
	status    *Status
	logger    *zap.Logger
}

func New(sel Selector, capt Captioner, pub Publisher, led ledger.Ledger, hist *caption.History, status *Status, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		selector:  sel,
		captioner: capt,
		publisher: pub,
		ledger:    led,
		history:   hist,
		status:    status,
		logger:    logger,
	}
}

// Run executes one posting cycle. A run with no eligible candidate is a
// success, not an error. The ledger must persist before the run counts
// as successful; a persist failure surfaces as the run's error while
// the in-memory ledger still shields the next run from a double post.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	logger.Info("posting run started")

	p.statusUpdate(func(s *Status) {
		s.RunsStarted++
		s.LastRunAt = time.Now().UTC()
	})

	err := p.run(ctx, logger)
	if err != nil {
		metrics.ObservePost("error")
		p.statusUpdate(func(s *Status) {
			s.RunsFailed++
			s.LastError = err.Error()
		})
		logger.Error("posting run failed", zap.Error(err))
		return err
	}
	return nil
}

func (p *Pipeline) run(ctx context.Context, logger *zap.Logger) error {
	shot, err := p.selector.Select(ctx)
	if err != nil {
		return fmt.Errorf("select candidate: %w", err)
	}
	if shot == nil {
		metrics.ObservePost("skipped")
		p.statusUpdate(func(s *Status) { s.RunsSkipped++ })
		logger.Info("no suitable screenshot found, skipping run")
		return nil
	}

	capText, err := p.captioner.Generate(ctx, caption.Subject{
		Game:     shot.Game,
		Title:    shot.Title,
		Tier:     string(shot.Tier),
		ImageURL: shot.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("generate caption: %w", err)
	}

	postID, err := p.publisher.Publish(ctx, shot, capText)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	p.ledger.Add(shot.PageURL)
	if err := p.ledger.Persist(ctx); err != nil {
		return fmt.Errorf("persist ledger after post %s: %w", postID, err)
	}
	if p.history != nil {
		if err := p.history.Persist(); err != nil {
			logger.Warn("persist caption history failed", zap.Error(err))
		}
	}

	metrics.ObservePost("ok")
	metrics.SetLedgerSize(p.ledger.Size())
	p.statusUpdate(func(s *Status) {
		s.RunsOK++
		s.LastPostID = postID
		s.LastError = ""
		s.PostedTotal = p.ledger.Size()
	})
	logger.Info("posting run complete",
		zap.String("page_url", shot.PageURL),
		zap.String("post_id", postID),
		zap.String("game", shot.Game),
	)
	return nil
}

func (p *Pipeline) statusUpdate(fn func(*Status)) {
	if p.status == nil {
		return
	}
	p.status.mu.Lock()
	fn(p.status)
	p.status.mu.Unlock()
}
