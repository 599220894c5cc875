package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/services/journal"
	"rolechain/internal/transport"
)

// chainFlags select the chain a command works on: chain number index under
// role's branch.
type chainFlags struct {
	role  string
	index uint32
}

func (f *chainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.role, "role", "", "role branch the chain lives under")
	cmd.Flags().Uint32Var(&f.index, "index", 0, "chain number under the role branch")
	_ = cmd.MarkFlagRequired("role")
}

func chainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain",
		Short: "Manage ledger chains",
	}
	cmd.AddCommand(
		chainStartCmd(),
		chainAppendCmd(),
		chainLogCmd(),
		chainVerifyCmd(),
		chainExportCmd(),
		chainImportCmd(),
	)
	return cmd
}

func chainStartCmd() *cobra.Command {
	var (
		cf      chainFlags
		message string
		in      string
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Create a chain with a genesis record",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := chainBase(domain.Role(cf.role), cf.index)
			if err != nil {
				return err
			}
			plaintext, err := readInput(message, in)
			if err != nil {
				return err
			}
			rec, err := wire.Journal.Start(cmd.Context(), base, plaintext)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chain started.\nRoot: %s\nLink: %s\n", rec.Address, rec.Link)
			return nil
		},
	}
	cf.register(cmd)
	cmd.Flags().StringVarP(&message, "message", "m", "", "genesis plaintext")
	cmd.Flags().StringVar(&in, "in", "", "genesis plaintext file (- for stdin)")
	return cmd
}

func chainAppendCmd() *cobra.Command {
	var (
		cf      chainFlags
		pairs   []string
		action  string
		message string
		in      string
	)
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Seal a record for the given roles and append it",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := chainBase(domain.Role(cf.role), cf.index)
			if err != nil {
				return err
			}
			rs, err := parseRoles(pairs)
			if err != nil {
				return err
			}
			plaintext, err := readInput(message, in)
			if err != nil {
				return err
			}
			rec, err := wire.Journal.Append(cmd.Context(), base, journal.Draft{
				Roles:     rs,
				Action:    action,
				Plaintext: plaintext,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appended %s\nLink: %s\n", rec.Address, rec.Link)
			return nil
		},
	}
	cf.register(cmd)
	cmd.Flags().StringArrayVar(&pairs, "with", nil, "role=address counterparty (repeatable)")
	cmd.Flags().StringVar(&action, "action", "", "action path of the record locator")
	cmd.Flags().StringVarP(&message, "message", "m", "", "plaintext")
	cmd.Flags().StringVar(&in, "in", "", "plaintext file (- for stdin)")
	return cmd
}

// rootArg resolves the chain root from an explicit address argument or from
// --role/--index.
func rootArg(args []string, cf chainFlags) (domain.Address, error) {
	if len(args) == 1 {
		return domain.Address(args[0]), nil
	}
	if cf.role == "" {
		return "", fmt.Errorf("give a root address or --role")
	}
	base, err := chainBase(domain.Role(cf.role), cf.index)
	if err != nil {
		return "", err
	}
	return base.Address(), nil
}

func chainLogCmd() *cobra.Command {
	var (
		cf      chainFlags
		newest  bool
		limit   int
		decrypt bool
	)
	cmd := &cobra.Command{
		Use:   "log [root]",
		Short: "List a chain's records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(args, cf)
			if err != nil {
				return err
			}
			chain, err := wire.Journal.Chain(root)
			if err != nil {
				return err
			}
			seq := chain.Walk()
			if newest {
				seq = chain.Backward()
			}
			var reader *keytree.KeyNode
			if decrypt {
				if cf.role == "" {
					return fmt.Errorf("--open needs --role")
				}
				if reader, err = roleNode(domain.Role(cf.role)); err != nil {
					return err
				}
			}
			out := cmd.OutOrStdout()
			n := 0
			for rec := range seq {
				if limit > 0 && n == limit {
					break
				}
				n++
				fmt.Fprintf(out, "%s  prev=%s  recipients=%d\n", rec.Address, rec.PreviousFingerprint, len(rec.Payload.Recipients))
				if rec.Link != "" {
					fmt.Fprintf(out, "    %s\n", rec.Link)
				}
				if reader != nil {
					if plain, err := wire.Journal.Read(reader, rec); err == nil {
						fmt.Fprintf(out, "    %s\n", plain)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cf.role, "role", "", "role branch the chain lives under")
	cmd.Flags().Uint32Var(&cf.index, "index", 0, "chain number under the role branch")
	cmd.Flags().BoolVar(&newest, "newest-first", false, "walk from the latest record backwards")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n records")
	cmd.Flags().BoolVar(&decrypt, "open", false, "print payloads the --role key can open")
	return cmd
}

func chainVerifyCmd() *cobra.Command {
	var (
		cf  chainFlags
		all bool
	)
	cmd := &cobra.Command{
		Use:   "verify [root]",
		Short: "Re-validate stored chains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var roots []domain.Address
			if all {
				var err error
				if roots, err = wire.Journal.Roots(); err != nil {
					return err
				}
			} else {
				root, err := rootArg(args, cf)
				if err != nil {
					return err
				}
				roots = []domain.Address{root}
			}
			var failed int
			for _, root := range roots {
				n, err := wire.Journal.Verify(root)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s  INVALID: %v\n", root, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  ok (%d records)\n", root, n)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d chains failed verification", failed, len(roots))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cf.role, "role", "", "role branch the chain lives under")
	cmd.Flags().Uint32Var(&cf.index, "index", 0, "chain number under the role branch")
	cmd.Flags().BoolVar(&all, "all", false, "verify every stored chain")
	return cmd
}

func chainExportCmd() *cobra.Command {
	var (
		cf  chainFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export [root]",
		Short: "Write a chain snapshot as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := rootArg(args, cf)
			if err != nil {
				return err
			}
			chain, err := wire.Journal.Chain(root)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(chain.Export(), "", "  ")
			if err != nil {
				return err
			}
			digest, err := transport.DeliveryID(b)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), out, append(b, '\n')); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records, digest %s\n", chain.Len(), digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&cf.role, "role", "", "role branch the chain lives under")
	cmd.Flags().Uint32Var(&cf.index, "index", 0, "chain number under the role branch")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func chainImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a snapshot and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var snap domain.ChainSnapshot
			if err := json.NewDecoder(r).Decode(&snap); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}
			chain, err := wire.Journal.Import(snap)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%d records)\n", chain.Root(), chain.Len())
			return nil
		},
	}
}
