// Package cmd defines the CLI commands for the steamgram executable.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steamgram/steamgram/internal/app"
)

var cfgFile string

type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. A variable so tests can replace it
// with a stub factory.
var newApp = func(ctx context.Context, cfgPath string) (*app.App, error) {
	return app.New(ctx, cfgPath)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steamgram",
		Short: "Posts Steam community screenshots to Instagram on a schedule.",
		Long: `steamgram crawls a pool of Steam community profiles for screenshots,
picks the best unposted one, and publishes it to Instagram with a
generated caption. It can run once (post) or as a scheduled service (run).`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app.App); ok && a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (settings also read from STEAMGRAM_* env)")

	cmd.AddCommand(
		newPostCmd(),
		newRunCmd(),
		newStatusCmd(),
		newClearCacheCmd(),
		newResetHistoryCmd(),
		newResetCaptionsCmd(),
		newMigrateCmd(),
	)
	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
