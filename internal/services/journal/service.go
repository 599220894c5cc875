package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
	"rolechain/internal/protocol/ledger"
	"rolechain/internal/protocol/locator"
	"rolechain/internal/protocol/multiparty"
)

const (
	// GenesisAction is the locator action of a chain's first record.
	GenesisAction = "genesis"

	// maxIndexRetries bounds how many child indices are tried when a
	// derivation lands on an invalid scalar.
	maxIndexRetries = 16
)

var (
	// ErrChainExists is returned by Start when base already roots a chain.
	ErrChainExists = errors.New("journal: chain already exists")
	// ErrNoChain is returned when no chain is stored for a root address.
	ErrNoChain = errors.New("journal: no chain for root")
	// ErrForeignChain is returned when the stored chain was not produced
	// from the given base node.
	ErrForeignChain = errors.New("journal: chain was not derived from this base")
)

// Draft is the caller's half of a new record.
type Draft struct {
	// Roles are the counterparties. The host role is always overwritten
	// with the new record's address.
	Roles     locator.RoleSet
	Action    string
	Plaintext []byte
}

// Inbound is a record received from the transport.
type Inbound struct {
	ID      string
	Locator locator.Locator
	Record  domain.ChainRecord
}

// Service produces, publishes and persists chain records.
type Service struct {
	chains    domain.ChainStore
	transport domain.Transport
	log       *zap.Logger
	scheme    string
	linkage   ledger.Linkage
	resolver  ledger.AncestorResolver

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithScheme sets the locator scheme of produced records.
func WithScheme(scheme string) Option {
	return func(s *Service) {
		if scheme != "" {
			s.scheme = scheme
		}
	}
}

// WithLinkage sets how loaded chains validate links. resolver is only
// consulted for ledger.LinkAncestor and may be nil.
func WithLinkage(l ledger.Linkage, resolver ledger.AncestorResolver) Option {
	return func(s *Service) {
		s.linkage = l
		s.resolver = resolver
	}
}

// New returns a journal over the given store and transport.
func New(chains domain.ChainStore, transport domain.Transport, opts ...Option) *Service {
	s := &Service{
		chains:    chains,
		transport: transport,
		log:       zap.NewNop(),
		scheme:    locator.DefaultScheme,
		linkage:   ledger.LinkAdjacent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) chainOptions() []ledger.Option {
	if s.linkage == ledger.LinkAncestor {
		return []ledger.Option{ledger.WithAncestorWalk(s.resolver)}
	}
	return []ledger.Option{ledger.WithLinkage(s.linkage)}
}

// Start creates a chain whose genesis record lives at base's address. The
// genesis payload is sealed to base alone.
func (s *Service) Start(ctx context.Context, base *keytree.KeyNode, plaintext []byte) (domain.ChainRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := s.chains.LoadSnapshot(base.Address())
	if err != nil {
		return domain.ChainRecord{}, err
	}
	if found {
		return domain.ChainRecord{}, fmt.Errorf("%w: %s", ErrChainExists, base.Address())
	}

	var roles locator.RoleSet
	if err := roles.Set(domain.RoleHost, base.Address()); err != nil {
		return domain.ChainRecord{}, err
	}
	rec, err := s.produce(ctx, base, base.ParentFingerprint(), roles, GenesisAction, plaintext)
	if err != nil {
		return domain.ChainRecord{}, err
	}

	chain := ledger.New(s.chainOptions()...)
	if err := chain.Genesis(rec); err != nil {
		return domain.ChainRecord{}, err
	}
	if err := s.chains.SaveSnapshot(chain.Export()); err != nil {
		return domain.ChainRecord{}, err
	}
	s.log.Info("chain started", zap.Stringer("root", rec.Address))
	return rec, nil
}

// Append derives the next record key, seals draft for its roles, publishes
// and appends the record, and persists the chain.
func (s *Service) Append(ctx context.Context, base *keytree.KeyNode, draft Draft) (domain.ChainRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chain, err := s.load(base.Address())
	if err != nil {
		return domain.ChainRecord{}, err
	}
	latest, err := latestNode(base, chain)
	if err != nil {
		return domain.ChainRecord{}, err
	}
	next, err := nextChild(latest)
	if err != nil {
		return domain.ChainRecord{}, err
	}

	roles := draft.Roles.Clone()
	if err := roles.Set(domain.RoleHost, next.Address()); err != nil {
		return domain.ChainRecord{}, err
	}
	rec, err := s.produce(ctx, next, latest.Fingerprint(), roles, draft.Action, draft.Plaintext)
	if err != nil {
		return domain.ChainRecord{}, err
	}
	if err := chain.Add(rec); err != nil {
		return domain.ChainRecord{}, err
	}
	if err := s.chains.SaveSnapshot(chain.Export()); err != nil {
		return domain.ChainRecord{}, err
	}
	s.log.Info("record appended",
		zap.Stringer("root", base.Address()),
		zap.Stringer("address", rec.Address),
		zap.Int("length", chain.Len()))
	return rec, nil
}

// produce seals plaintext with key for the roles' recipients and publishes
// the resulting record.
func (s *Service) produce(
	ctx context.Context,
	key *keytree.KeyNode,
	prev domain.Fingerprint,
	roles locator.RoleSet,
	action string,
	plaintext []byte,
) (domain.ChainRecord, error) {
	link, err := locator.Locator{Scheme: s.scheme, Action: action, Roles: roles}.Encode()
	if err != nil {
		return domain.ChainRecord{}, err
	}
	payload, err := multiparty.Encrypt(key, plaintext, locator.Recipients(roles))
	if err != nil {
		return domain.ChainRecord{}, err
	}
	rec := domain.ChainRecord{
		Address:             key.Address(),
		Link:                link,
		PreviousFingerprint: prev,
		Payload:             payload,
	}
	if s.transport == nil {
		return rec, nil
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return domain.ChainRecord{}, err
	}
	id, err := s.transport.Publish(ctx, link, body)
	if err != nil {
		return domain.ChainRecord{}, fmt.Errorf("publish: %w", err)
	}
	s.log.Debug("record published",
		zap.String("id", id),
		zap.Stringer("address", rec.Address),
		zap.Int("recipients", len(payload.Recipients)))
	return rec, nil
}

// Read opens a record's payload as receiver. The record's own address is
// the sender.
func (s *Service) Read(receiver *keytree.KeyNode, rec domain.ChainRecord) ([]byte, error) {
	return multiparty.Decrypt(receiver, rec.Payload, rec.Address)
}

// Chain loads and validates the chain rooted at root.
func (s *Service) Chain(root domain.Address) (*ledger.Chain, error) {
	return s.load(root)
}

// Verify re-validates the stored chain rooted at root and returns its length.
func (s *Service) Verify(root domain.Address) (int, error) {
	chain, err := s.load(root)
	if err != nil {
		return 0, err
	}
	s.log.Debug("chain verified", zap.Stringer("root", root), zap.Int("length", chain.Len()))
	return chain.Len(), nil
}

// Import validates snap and stores it, replacing any chain with the same root.
func (s *Service) Import(snap domain.ChainSnapshot) (*ledger.Chain, error) {
	chain, err := ledger.FromSnapshot(snap, s.chainOptions()...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.chains.SaveSnapshot(chain.Export()); err != nil {
		return nil, err
	}
	s.log.Info("chain imported", zap.Stringer("root", snap.RootAddress), zap.Int("length", chain.Len()))
	return chain, nil
}

// Roots lists the stored chains.
func (s *Service) Roots() ([]domain.Address, error) {
	return s.chains.ListChains()
}

// Follow streams records published under prefix until ctx is done.
// Deliveries that do not decode to a record are dropped.
func (s *Service) Follow(ctx context.Context, prefix string) (<-chan Inbound, error) {
	if s.transport == nil {
		return nil, errors.New("journal: no transport configured")
	}
	in, err := s.transport.Subscribe(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(chan Inbound)
	go func() {
		defer close(out)
		for d := range in {
			msg, err := decode(d)
			if err != nil {
				s.log.Warn("dropped delivery", zap.String("id", d.ID), zap.Error(err))
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func decode(d domain.Delivery) (Inbound, error) {
	loc, err := locator.Parse(d.Locator)
	if err != nil {
		return Inbound{}, err
	}
	var rec domain.ChainRecord
	if err := json.Unmarshal(d.Payload, &rec); err != nil {
		return Inbound{}, fmt.Errorf("decode record: %w", err)
	}
	if rec.Address != loc.Host() {
		return Inbound{}, fmt.Errorf("%w: record %s published under host %s",
			domain.ErrMalformedLocator, rec.Address, loc.Host())
	}
	return Inbound{ID: d.ID, Locator: loc, Record: rec}, nil
}

func (s *Service) load(root domain.Address) (*ledger.Chain, error) {
	snap, found, err := s.chains.LoadSnapshot(root)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoChain, root)
	}
	return ledger.FromSnapshot(snap, s.chainOptions()...)
}

// latestNode re-derives the private key of the chain's latest record by
// following the stored addresses down from base.
func latestNode(base *keytree.KeyNode, chain *ledger.Chain) (*keytree.KeyNode, error) {
	var cur *keytree.KeyNode
	for rec := range chain.Walk() {
		if cur == nil {
			if rec.Address != base.Address() {
				return nil, ErrForeignChain
			}
			cur = base
			continue
		}
		child, err := findChild(cur, rec.Address)
		if err != nil {
			return nil, err
		}
		cur = child
	}
	if cur == nil {
		return nil, domain.ErrEmptyChain
	}
	return cur, nil
}

func findChild(parent *keytree.KeyNode, addr domain.Address) (*keytree.KeyNode, error) {
	for i := uint32(0); i < maxIndexRetries; i++ {
		child, err := parent.DeriveChild(i)
		if err != nil {
			continue
		}
		if child.Address() == addr {
			return child, nil
		}
	}
	return nil, fmt.Errorf("%w: %s is not a child of %s", ErrForeignChain, addr, parent.Address())
}

func nextChild(parent *keytree.KeyNode) (*keytree.KeyNode, error) {
	index := uint32(0)
	for range maxIndexRetries {
		child, err := parent.DeriveChild(index)
		if err == nil {
			return child, nil
		}
		var derr *domain.DerivationError
		if !errors.As(err, &derr) {
			return nil, err
		}
		index = derr.Next()
	}
	return nil, domain.ErrDerivation
}
