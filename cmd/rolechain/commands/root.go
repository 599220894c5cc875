package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rolechain/internal/app"
)

var (
	configPath string
	home       string
	passphrase string
	relay      string
	scheme     string
	linkage    string
	logLevel   string

	wire *app.Wire
)

func Execute() error {
	root := &cobra.Command{
		Use:           "rolechain",
		Short:         "Role-addressed, multi-party encrypted ledger chains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("home") {
				cfg.Home = home
			}
			if flags.Changed("relay") {
				cfg.Relay = relay
			}
			if flags.Changed("scheme") {
				cfg.Scheme = scheme
			}
			if flags.Changed("linkage") {
				cfg.Linkage = linkage
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			log, err := app.NewLogger(cfg.LogLevel)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, log)
			if err != nil {
				return err
			}
			log.Debug("configured",
				zap.String("home", cfg.Home),
				zap.String("relay", cfg.Relay),
				zap.String("linkage", cfg.Linkage))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			_ = wire.Log.Sync()
			return wire.Close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	pf.StringVar(&home, "home", "", "data dir (default ~/.rolechain)")
	pf.StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the seed")
	pf.StringVar(&relay, "relay", "", "gRPC relay address (e.g. 127.0.0.1:7369)")
	pf.StringVar(&scheme, "scheme", "", "locator scheme of produced records")
	pf.StringVar(&linkage, "linkage", "", "chain linkage: adjacent or ancestor")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		addressCmd(),
		locatorCmd(),
		sealCmd(),
		openCmd(),
		chainCmd(),
		followCmd(),
	)
	return root.Execute()
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}
