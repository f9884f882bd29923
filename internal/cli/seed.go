package cli

import (
	"fmt"

	"quickhacker/internal/app/service"
	"quickhacker/internal/domain/repository"
	"quickhacker/internal/platform/config"

	"github.com/spf13/cobra"
)

type seedOptions struct {
	file          string
	adminEmail    string
	adminPassword string
}

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the accounts and problems listed in a seed file",
		Long: `Create the accounts and problems listed in a YAML seed file.

Accounts whose email already exists and problems whose slug already exists
are skipped, so the command can be run repeatedly.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.adminEmail == "" {
				opts.adminEmail = config.AppConfig.AdminEmail
			}
			if opts.adminPassword == "" {
				opts.adminPassword = config.AppConfig.AdminPassword
			}
			db, err := rootOpts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := service.NewSeeder(
				repository.NewPgUserRepository(db),
				service.NewProblemService(repository.NewPgProblemRepository(db)),
			)
			report, err := seeder.SeedFromPath(cmd.Context(), opts.file, opts.adminEmail, opts.adminPassword)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d accounts and %d problems.\n", report.AccountsCreated, report.ProblemsCreated)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "fixtures/seed.yaml", "seed file to apply")
	cmd.Flags().StringVar(&opts.adminEmail, "admin-email", "", "also ensure an admin account with this email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&opts.adminPassword, "admin-password", "", "password for --admin-email (defaults to ADMIN_PASSWORD)")

	return cmd
}
