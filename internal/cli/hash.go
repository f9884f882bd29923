package cli

import (
	"fmt"

	"quickhacker/internal/common/security"

	"github.com/spf13/cobra"
)

func NewHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "hash-password <plaintext>",
		Short:        "Print the stored form of a password",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := security.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
