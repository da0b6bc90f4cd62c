package cmd

import (
	"github.com/spf13/cobra"
)

// newPostCmd runs a single posting cycle and exits.
func newPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post",
		Short: "Run one posting cycle now",
		Long: `Crawls all configured sources, selects the most recent unposted
screenshot, and publishes it to Instagram. Exits non-zero if the run fails;
finding nothing new to post is a successful run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.Pipeline.Run(cmd.Context())
		},
	}
}
