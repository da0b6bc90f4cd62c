package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steamgram/steamgram/internal/screenshot"
)

var scoreNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestScoreComponents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		shot screenshot.Screenshot
		want int
	}{
		{
			name: "bare standard candidate",
			shot: screenshot.Screenshot{Tier: screenshot.TierStandard},
			want: 10 + 4,
		},
		{
			name: "ultra tier",
			shot: screenshot.Screenshot{Tier: screenshot.TierUltra},
			want: 10 + 15,
		},
		{
			name: "obscure game",
			shot: screenshot.Screenshot{Tier: screenshot.TierStandard, Game: "Cart Life"},
			want: 10 + 4 + 5,
		},
		{
			name: "popular game",
			shot: screenshot.Screenshot{Tier: screenshot.TierStandard, Game: "ELDEN RING"},
			want: 10 + 4 + 5 + 10,
		},
		{
			name: "short title earns nothing",
			shot: screenshot.Screenshot{Tier: screenshot.TierStandard, Title: "hi"},
			want: 10 + 4,
		},
		{
			name: "long title",
			shot: screenshot.Screenshot{Tier: screenshot.TierStandard, Title: "Sunset over Limgrave"},
			want: 10 + 4 + 3,
		},
		{
			name: "recent discovery",
			shot: screenshot.Screenshot{
				Tier:         screenshot.TierStandard,
				DiscoveredAt: scoreNow.Add(-23 * time.Hour),
			},
			want: 10 + 4 + 5,
		},
		{
			name: "stale discovery",
			shot: screenshot.Screenshot{
				Tier:         screenshot.TierStandard,
				DiscoveredAt: scoreNow.Add(-25 * time.Hour),
			},
			want: 10 + 4,
		},
		{
			name: "everything at once",
			shot: screenshot.Screenshot{
				Tier:         screenshot.TierUltra,
				Game:         "The Witcher 3",
				Title:        "Kaer Morhen at dawn",
				DiscoveredAt: scoreNow.Add(-time.Hour),
			},
			want: 10 + 15 + 5 + 10 + 3 + 5,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Score(&tc.shot, scoreNow))
		})
	}
}

func TestScoreTierMonotonicity(t *testing.T) {
	t.Parallel()

	tiers := []screenshot.QualityTier{
		screenshot.TierStandard,
		screenshot.TierHigh,
		screenshot.TierVeryHigh,
		screenshot.TierUltra,
	}
	prev := -1
	for _, tier := range tiers {
		s := Score(&screenshot.Screenshot{Tier: tier}, scoreNow)
		require.Greater(t, s, prev, "tier %s", tier)
		prev = s
	}
}
