package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
)

// follow [prefix]: stream records published on the relay.
func followCmd() *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "follow [prefix]",
		Short: "Stream records published under a locator prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Config.Relay == "" {
				return fmt.Errorf("no relay configured. use --relay")
			}
			prefix := wire.Config.Scheme + "://"
			if len(args) == 1 {
				prefix = args[0]
			}

			var reader *keytree.KeyNode
			if role != "" {
				n, err := roleNode(domain.Role(role))
				if err != nil {
					return err
				}
				reader = n
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			inbox, err := wire.Journal.Follow(ctx, prefix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for msg := range inbox {
				fmt.Fprintf(out, "%s  %s\n", msg.ID, msg.Locator)
				if reader == nil {
					continue
				}
				plain, err := wire.Journal.Read(reader, msg.Record)
				if err != nil {
					fmt.Fprintf(out, "    (%v)\n", err)
					continue
				}
				fmt.Fprintf(out, "    %s\n", plain)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "open records addressed to this role")
	return cmd
}
