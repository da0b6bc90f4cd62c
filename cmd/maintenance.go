package cmd

import (
	"github.com/spf13/cobra"
)

// newClearCacheCmd drops the in-memory crawl cache so the next run
// re-crawls every source.
func newClearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Clear the crawl result cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			a.Cache.Clear()
			cmd.Println("cache cleared")
			return nil
		},
	}
}

// newResetHistoryCmd wipes the posted ledger. Every screenshot becomes
// eligible for posting again.
func newResetHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-history",
		Short: "Reset the posted-screenshot ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Ledger.Reset(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("posted history reset")
			return nil
		},
	}
}

// newResetCaptionsCmd clears the caption pattern counts.
func newResetCaptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-captions",
		Short: "Reset the caption pattern history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.History.Reset(); err != nil {
				return err
			}
			cmd.Println("caption history reset")
			return nil
		},
	}
}
