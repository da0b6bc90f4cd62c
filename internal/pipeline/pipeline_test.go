package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/caption"
	"github.com/steamgram/steamgram/internal/ledger"
	"github.com/steamgram/steamgram/internal/metrics"
	"github.com/steamgram/steamgram/internal/screenshot"
)

type stubSelector struct {
	shot *screenshot.Screenshot
	err  error
}

func (s *stubSelector) Select(context.Context) (*screenshot.Screenshot, error) {
	return s.shot, s.err
}

type stubCaptioner struct{}

func (stubCaptioner) Generate(_ context.Context, subj caption.Subject) (string, error) {
	return "caption for " + subj.Game, nil
}

type stubPublisher struct {
	postID string
	err    error
	calls  int
}

func (s *stubPublisher) Publish(context.Context, *screenshot.Screenshot, string) (string, error) {
	s.calls++
	return s.postID, s.err
}

func testShot() *screenshot.Screenshot {
	return &screenshot.Screenshot{
		PageURL:      "https://steamcommunity.com/sharedfiles/filedetails/?id=1",
		ImageURL:     "https://steamuserimages-a.akamaihd.net/ugc/1/shot.jpg",
		Game:         "Elden Ring",
		Tier:         screenshot.TierUltra,
		DiscoveredAt: time.Now().UTC(),
	}
}

func newTestPipeline(t *testing.T, sel Selector, pub Publisher) (*Pipeline, ledger.Ledger, *Status) {
	t.Helper()
	metrics.Init()
	led := ledger.NewFileLedger(filepath.Join(t.TempDir(), "posted.json"))
	require.NoError(t, led.Load(context.Background()))
	status := &Status{}
	p := New(sel, stubCaptioner{}, pub, led, nil, status, zap.NewNop())
	return p, led, status
}

func TestRunSuccessRecordsLedger(t *testing.T) {
	t.Parallel()

	shot := testShot()
	pub := &stubPublisher{postID: "post-1"}
	p, led, status := newTestPipeline(t, &stubSelector{shot: shot}, pub)

	require.NoError(t, p.Run(context.Background()))
	require.True(t, led.Contains(shot.PageURL))
	require.Equal(t, 1, pub.calls)

	snap := status.Snapshot()
	require.Equal(t, 1, snap.RunsOK)
	require.Equal(t, "post-1", snap.LastPostID)
	require.Equal(t, 1, snap.PostedTotal)
}

func TestRunNoCandidateIsNotAnError(t *testing.T) {
	t.Parallel()

	pub := &stubPublisher{}
	p, _, status := newTestPipeline(t, &stubSelector{}, pub)

	require.NoError(t, p.Run(context.Background()))
	require.Zero(t, pub.calls)
	require.Equal(t, 1, status.Snapshot().RunsSkipped)
}

func TestRunPublishFailureLeavesLedgerUntouched(t *testing.T) {
	t.Parallel()

	shot := testShot()
	pub := &stubPublisher{err: errors.New("all upload strategies failed")}
	p, led, status := newTestPipeline(t, &stubSelector{shot: shot}, pub)

	require.Error(t, p.Run(context.Background()))
	// A failed post must stay eligible for the next run.
	require.False(t, led.Contains(shot.PageURL))
	require.Equal(t, 1, status.Snapshot().RunsFailed)
}

func TestRunSelectorFailure(t *testing.T) {
	t.Parallel()

	p, _, status := newTestPipeline(t, &stubSelector{err: errors.New("every source down")}, &stubPublisher{})
	require.Error(t, p.Run(context.Background()))
	require.Equal(t, 1, status.Snapshot().RunsFailed)
	require.NotEmpty(t, status.Snapshot().LastError)
}
