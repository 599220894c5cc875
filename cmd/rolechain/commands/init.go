package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate the root seed and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			summary, err := wire.Identity.GenerateIdentity(passphrase)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identity created.\n")
			fmt.Fprintf(out, "Root:        %s\n", summary.Root)
			fmt.Fprintf(out, "Fingerprint: %s\n", summary.Fingerprint)
			fmt.Fprintf(out, "Environment: %s\n", summary.Environment)
			return nil
		},
	}
}
