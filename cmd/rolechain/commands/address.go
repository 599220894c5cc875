package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rolechain/internal/domain"
	"rolechain/internal/services/identity"
)

// address <role>: print the address of a role branch.
func addressCmd() *cobra.Command {
	var xpub string
	cmd := &cobra.Command{
		Use:   "address <role>",
		Short: "Print the address of a role branch",
		Long: "Print the address of a role branch. With --xpub the address is\n" +
			"recomputed from someone's environment key without any secret.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.Role(args[0])
			if xpub != "" {
				addr, err := identity.PublicRoleAddress(xpub, role)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), addr)
				return nil
			}
			if err := requirePassphrase(); err != nil {
				return err
			}
			n, err := wire.Identity.RoleNode(passphrase, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.Address())
			return nil
		},
	}
	cmd.Flags().StringVar(&xpub, "xpub", "", "environment extended public key to derive from")
	return cmd
}
