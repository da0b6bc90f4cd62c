package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steamgram/steamgram/internal/ledger"
)

// newMigrateCmd copies an existing file-ledger snapshot into the
// Postgres ledger, for deployments moving off the JSON file.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Copy the file ledger into the Postgres ledger",
		Long: `Reads the posted-history JSON snapshot at ledger.path and inserts every
identifier into the Postgres table, skipping ones already present.
Requires ledger.dsn to be configured; the file is left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := a.Ledger.(*ledger.PostgresLedger); !ok {
				return fmt.Errorf("migrate requires ledger.dsn to be configured")
			}
			if a.Cfg.Ledger.Path == "" {
				return fmt.Errorf("migrate requires ledger.path pointing at the file snapshot")
			}

			src := ledger.NewFileLedger(a.Cfg.Ledger.Path)
			if err := src.Load(cmd.Context()); err != nil {
				return fmt.Errorf("load file ledger: %w", err)
			}
			if src.Size() == 0 {
				cmd.Println("no file history found, nothing to migrate")
				return nil
			}

			for _, id := range src.Members() {
				a.Ledger.Add(id)
			}
			if err := a.Ledger.Persist(cmd.Context()); err != nil {
				return fmt.Errorf("persist migrated ledger: %w", err)
			}
			cmd.Printf("migrated %d entries into postgres\n", src.Size())
			return nil
		},
	}
}
