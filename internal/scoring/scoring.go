// Package scoring ranks screenshot candidates. Scores order candidates
// for display inside a crawl batch; selection itself is recency-based,
// so a score is advisory and never persisted as ground truth.
package scoring

import (
	"time"

	"github.com/steamgram/steamgram/internal/games"
	"github.com/steamgram/steamgram/internal/screenshot"
)

const (
	baseScore        = 10
	gameBonus        = 5
	popularGameBonus = 10
	titleBonus       = 3
	titleMinLength   = 5
	recencyBonus     = 5
	recencyWindow    = 24 * time.Hour
)

var tierBonus = map[screenshot.QualityTier]int{
	screenshot.TierUltra:    15,
	screenshot.TierVeryHigh: 12,
	screenshot.TierHigh:     8,
	screenshot.TierStandard: 4,
}

// Score is deterministic for a given candidate and reference time.
func Score(shot *screenshot.Screenshot, now time.Time) int {
	score := baseScore
	score += tierBonus[shot.Tier]

	if shot.Game != "" {
		score += gameBonus
		if games.IsPopular(shot.Game) {
			score += popularGameBonus
		}
	}
	if len(shot.Title) > titleMinLength {
		score += titleBonus
	}
	if !shot.DiscoveredAt.IsZero() && now.Sub(shot.DiscoveredAt) < recencyWindow {
		score += recencyBonus
	}
	return score
}
