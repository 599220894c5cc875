package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/multiparty"
)

// seal --role client --to ADDR[,ADDR] [--self] (--message TEXT | --in FILE)
func sealCmd() *cobra.Command {
	var (
		role    string
		to      []string
		self    bool
		message string
		in      string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt a payload for several recipients, signed by a role key",
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := roleNode(domain.Role(role))
			if err != nil {
				return err
			}
			plaintext, err := readInput(message, in)
			if err != nil {
				return err
			}
			var opts []multiparty.Option
			if self {
				opts = append(opts, multiparty.WithSelf())
			}
			rec, err := multiparty.Encrypt(sender, plaintext, parseAddresses(to), opts...)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, append(b, '\n'))
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "sending role")
	cmd.Flags().StringSliceVar(&to, "to", nil, "recipient addresses")
	cmd.Flags().BoolVar(&self, "self", false, "add the sender as a recipient")
	cmd.Flags().StringVarP(&message, "message", "m", "", "plaintext")
	cmd.Flags().StringVar(&in, "in", "", "plaintext file (- for stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

// open --role provider --from ADDR --in FILE
func openCmd() *cobra.Command {
	var (
		role string
		from string
		in   string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Verify and decrypt a sealed payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			receiver, err := roleNode(domain.Role(role))
			if err != nil {
				return err
			}
			raw, err := readInput("", in)
			if err != nil {
				return err
			}
			var rec domain.EncryptedRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode sealed payload: %w", err)
			}
			plaintext, err := multiparty.Decrypt(receiver, rec, domain.Address(from))
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, plaintext)
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "receiving role")
	cmd.Flags().StringVar(&from, "from", "", "sender address")
	cmd.Flags().StringVar(&in, "in", "-", "sealed file (- for stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
