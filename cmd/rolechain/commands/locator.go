package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rolechain/internal/protocol/locator"
)

func locatorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locator",
		Short: "Build or parse role-address locators",
	}
	cmd.AddCommand(locatorBuildCmd(), locatorParseCmd())
	return cmd
}

// locator build --with host=ADDR --with client=ADDR [--action order]
func locatorBuildCmd() *cobra.Command {
	var (
		pairs  []string
		action string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Encode roles and an action as a locator",
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := parseRoles(pairs)
			if err != nil {
				return err
			}
			s, err := locator.Locator{Scheme: wire.Config.Scheme, Action: action, Roles: rs}.Encode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "with", nil, "role=address binding (repeatable, host required)")
	cmd.Flags().StringVar(&action, "action", "", "action path")
	return cmd
}

func locatorParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <locator>",
		Short: "Decode a locator into its roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := locator.Parse(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scheme: %s\n", l.Scheme)
			if l.Action != "" {
				fmt.Fprintf(out, "action: %s\n", l.Action)
			}
			for _, role := range l.Roles.Roles() {
				addr, _ := l.Roles.Get(role)
				fmt.Fprintf(out, "%-10s %s\n", role, addr)
			}
			return nil
		},
	}
}
