// Package screenshot defines the candidate record shared across the
// pipeline.
package screenshot

import "time"

// QualityTier grades a candidate by the resolution its media URL encodes.
type QualityTier string

const (
	TierUltra    QualityTier = "ultra"
	TierVeryHigh QualityTier = "very_high"
	TierHigh     QualityTier = "high"
	TierStandard QualityTier = "standard"
)

// Screenshot is a fully extracted candidate. PageURL is its identity
// everywhere, including the posted ledger. Fields are written during
// extraction and scoring and read-only afterwards.
type Screenshot struct {
	PageURL      string      `json:"page_url"`
	ImageURL     string      `json:"image_url"`
	Tier         QualityTier `json:"tier"`
	Title        string      `json:"title,omitempty"`
	Game         string      `json:"game,omitempty"`
	SourceID     string      `json:"source_id"`
	DiscoveredAt time.Time   `json:"discovered_at"`
	Score        int         `json:"score"`
}
