package app

import (
	"os"
	"time"

	"go.uber.org/zap"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/ledger"
	"rolechain/internal/services/identity"
	"rolechain/internal/services/journal"
	"rolechain/internal/store"
	"rolechain/internal/transport"
	"rolechain/internal/transport/grpcrelay"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config    Config
	Log       *zap.Logger
	Identity  *identity.Service
	Journal   *journal.Service
	Chains    domain.ChainStore
	Transport domain.Transport
	Ancestors *keytree.Index

	closers []func() error
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, log *zap.Logger) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	linkage, err := ledger.ParseLinkage(cfg.Linkage)
	if err != nil {
		return nil, err
	}

	w := &Wire{Config: cfg, Log: log, Ancestors: keytree.NewIndex()}

	// File-based stores
	identityStore := store.NewIdentityFileStore(cfg.Home)
	w.Chains = store.NewChainFileStore(cfg.Home)

	if cfg.Relay != "" {
		c, err := grpcrelay.Dial(cfg.Relay, grpcrelay.DialOptions{
			Timeout: 5 * time.Second,
			Log:     log.Named("relay"),
		})
		if err != nil {
			return nil, err
		}
		c.Timeout = 10 * time.Second
		w.Transport = c
		w.closers = append(w.closers, c.Close)
	} else {
		w.Transport = transport.NewBroker(transport.WithLogger(log.Named("broker")))
	}

	// High-level services
	w.Identity = identity.New(identityStore, identity.WithLogger(log.Named("identity")))
	w.Journal = journal.New(w.Chains, w.Transport,
		journal.WithLogger(log.Named("journal")),
		journal.WithScheme(cfg.Scheme),
		journal.WithLinkage(linkage, w.Ancestors),
	)
	return w, nil
}

// Close releases network clients.
func (w *Wire) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
