package cli

import (
	"context"
	"database/sql"

	"quickhacker/internal/platform/config"
	"quickhacker/internal/platform/database"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
}

// NewRootCommand creates the root command for hackctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hackctl",
		Short: "Operator tool for the QuickHacker API",
		Long:  "Applies the database schema, seeds accounts and problems, and hashes passwords for hand-provisioned accounts.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "PostgreSQL connection string (defaults to DATABASE_URL / DB_* settings)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand())

	return cmd
}

func (o *RootOptions) openDB(ctx context.Context) (*sql.DB, error) {
	connStr := o.DatabaseURL
	if connStr == "" {
		connStr = config.AppConfig.DBConnStr
	}
	return database.Open(ctx, connStr)
}
