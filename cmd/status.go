package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// newStatusCmd prints the bot's configuration and state summary.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show posted count, cache state, and configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			out := map[string]any{
				"posted_count":             a.Ledger.Size(),
				"cached_sets":              a.Cache.Len(),
				"sources":                  len(a.Cfg.Sources.Pool),
				"schedule":                 a.Cfg.Schedule.Cron,
				"batch_size":               a.Cfg.Crawler.BatchSize,
				"max_retries":              a.Cfg.HTTP.MaxRetries,
				"ai_captions_enabled":      a.Cfg.Caption.AIEnabled,
				"vision_analysis_enabled":  a.Cfg.Caption.VisionEnabled,
				"ai_provider":              a.Cfg.Caption.Provider,
				"ai_model":                 a.Cfg.Caption.Model,
				"fallback_to_static":       a.Cfg.Caption.FallbackToStatic,
				"caption_variety":          a.Cfg.Caption.Variety,
				"caption_patterns_tracked": a.History.Size(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
