package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"rolechain/internal/domain"
	"rolechain/internal/protocol/keytree"
)

// ErrGenesisExists is returned by Genesis on a chain that already has one.
var ErrGenesisExists = errors.New("ledger: chain already has a genesis record")

// Chain is an append-only sequence of records rooted at a genesis address.
type Chain struct {
	mu  sync.RWMutex
	cfg config

	records []domain.ChainRecord
	fps     []domain.Fingerprint
	byAddr  map[domain.Address]int
	byFP    map[domain.Fingerprint]int
}

// New returns an empty chain.
func New(opts ...Option) *Chain {
	c := &Chain{}
	for _, opt := range opts {
		opt(&c.cfg)
	}
	c.reset()
	return c
}

// CreateGenesis returns a chain seeded with one record at root.
func CreateGenesis(root domain.Address, payload domain.EncryptedRecord, opts ...Option) (*Chain, error) {
	c := New(opts...)
	if err := c.Genesis(domain.ChainRecord{Address: root, Payload: payload}); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Chain) reset() {
	c.records = nil
	c.fps = nil
	c.byAddr = make(map[domain.Address]int)
	c.byFP = make(map[domain.Fingerprint]int)
}

// Genesis seeds an empty chain. No link check is performed; the record's
// PreviousFingerprint is kept as given and may be zero.
func (c *Chain) Genesis(rec domain.ChainRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.genesisLocked(rec)
}

func (c *Chain) genesisLocked(rec domain.ChainRecord) error {
	if len(c.records) > 0 {
		return ErrGenesisExists
	}
	fp, err := keytree.FingerprintOf(rec.Address)
	if err != nil {
		return fmt.Errorf("genesis: %w", err)
	}
	c.appendLocked(rec, fp)
	return nil
}

// Add validates rec against the latest record and appends it. A failed Add
// leaves the chain untouched.
func (c *Chain) Add(rec domain.ChainRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addLocked(rec)
}

func (c *Chain) addLocked(rec domain.ChainRecord) error {
	if len(c.records) == 0 {
		return domain.ErrEmptyChain
	}
	if _, dup := c.byAddr[rec.Address]; dup {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateAddress, rec.Address)
	}
	fp, err := keytree.FingerprintOf(rec.Address)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBrokenLink, err)
	}
	if err := c.checkLinkLocked(rec.PreviousFingerprint); err != nil {
		return err
	}
	c.appendLocked(rec, fp)
	return nil
}

func (c *Chain) appendLocked(rec domain.ChainRecord, fp domain.Fingerprint) {
	rec = cloneRecord(rec)
	rec.State = domain.RecordAppended
	c.byAddr[rec.Address] = len(c.records)
	if _, seen := c.byFP[fp]; !seen {
		c.byFP[fp] = len(c.records)
	}
	c.records = append(c.records, rec)
	c.fps = append(c.fps, fp)
}

func (c *Chain) checkLinkLocked(prev domain.Fingerprint) error {
	latest := len(c.records) - 1
	if prev == c.fps[latest] {
		return nil
	}
	if c.cfg.linkage == LinkAncestor && c.isAncestorLocked(prev, c.records[latest].PreviousFingerprint) {
		return nil
	}
	return fmt.Errorf("%w: record claims parent %s, latest is %s", domain.ErrBrokenLink, prev, c.fps[latest])
}

// isAncestorLocked walks upward from start looking for target: first through
// the chain's own records, then through the resolver.
func (c *Chain) isAncestorLocked(target, start domain.Fingerprint) bool {
	seen := make(map[domain.Fingerprint]struct{})
	for fp := start; !fp.IsZero(); {
		if fp == target {
			return true
		}
		if _, loop := seen[fp]; loop {
			return false
		}
		seen[fp] = struct{}{}

		if i, ok := c.byFP[fp]; ok {
			fp = c.records[i].PreviousFingerprint
			continue
		}
		if c.cfg.resolver == nil {
			return false
		}
		parent, ok := c.cfg.resolver.Parent(fp)
		if !ok {
			return false
		}
		fp = parent
	}
	return false
}

// Latest returns the most recent record.
func (c *Chain) Latest() (domain.ChainRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.records) == 0 {
		return domain.ChainRecord{}, domain.ErrEmptyChain
	}
	return c.records[len(c.records)-1], nil
}

// LatestN returns up to n most recent records in append order.
func (c *Chain) LatestN(n int) []domain.ChainRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if n > len(c.records) {
		n = len(c.records)
	}
	if n <= 0 {
		return nil
	}
	return slices.Clone(c.records[len(c.records)-n:])
}

// Get returns the record stored under addr.
func (c *Chain) Get(addr domain.Address) (domain.ChainRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byAddr[addr]
	if !ok {
		return domain.ChainRecord{}, false
	}
	return c.records[i], true
}

// Len returns the number of records, genesis included.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Root returns the genesis address, or "" for an empty chain.
func (c *Chain) Root() domain.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.records) == 0 {
		return ""
	}
	return c.records[0].Address
}

// Linkage returns the chain's link discipline.
func (c *Chain) Linkage() Linkage { return c.cfg.linkage }

// IsValid re-checks every link from genesis onward.
func (c *Chain) IsValid() bool {
	snap := c.Export()
	if len(snap.Records) == 0 {
		return false
	}
	_, err := replay(snap, c.cfg)
	return err == nil
}

// Walk yields records in append order, one at a time. Each call starts a
// fresh traversal; stopping early is free.
func (c *Chain) Walk() iter.Seq[domain.ChainRecord] {
	return func(yield func(domain.ChainRecord) bool) {
		for i := 0; ; i++ {
			rec, ok := c.at(i)
			if !ok || !yield(rec) {
				return
			}
		}
	}
}

// Backward yields records from the latest back to genesis.
func (c *Chain) Backward() iter.Seq[domain.ChainRecord] {
	return func(yield func(domain.ChainRecord) bool) {
		for i := c.Len() - 1; i >= 0; i-- {
			rec, ok := c.at(i)
			if !ok || !yield(rec) {
				return
			}
		}
	}
}

func (c *Chain) at(i int) (domain.ChainRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.records) {
		return domain.ChainRecord{}, false
	}
	return c.records[i], true
}

// Export returns a deep copy of the chain suitable for persistence.
func (c *Chain) Export() domain.ChainSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := domain.ChainSnapshot{Records: make([]domain.ChainRecord, len(c.records))}
	for i, rec := range c.records {
		snap.Records[i] = cloneRecord(rec)
	}
	if len(c.records) > 0 {
		snap.RootAddress = c.records[0].Address
	}
	return snap
}

// Import replaces the chain with snapshot after replaying every record
// through Genesis and Add. On failure the chain is left as it was and the
// error is a *domain.ImportError naming the offending record.
func (c *Chain) Import(snap domain.ChainSnapshot) error {
	staged, err := replay(snap, c.cfg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records, c.fps, c.byAddr, c.byFP = staged.records, staged.fps, staged.byAddr, staged.byFP
	return nil
}

// FromSnapshot builds a new chain from snapshot.
func FromSnapshot(snap domain.ChainSnapshot, opts ...Option) (*Chain, error) {
	c := New(opts...)
	if err := c.Import(snap); err != nil {
		return nil, err
	}
	return c, nil
}

func replay(snap domain.ChainSnapshot, cfg config) (*Chain, error) {
	staged := &Chain{cfg: cfg}
	staged.reset()
	if len(snap.Records) == 0 {
		return nil, &domain.ImportError{Index: 0, Err: domain.ErrEmptyChain}
	}
	if snap.Records[0].Address != snap.RootAddress {
		return nil, &domain.ImportError{Index: 0, Err: fmt.Errorf("%w: genesis %s is not root %s",
			domain.ErrBrokenLink, snap.Records[0].Address, snap.RootAddress)}
	}
	if err := staged.genesisLocked(snap.Records[0]); err != nil {
		return nil, &domain.ImportError{Index: 0, Err: err}
	}
	for i, rec := range snap.Records[1:] {
		if err := staged.addLocked(rec); err != nil {
			return nil, &domain.ImportError{Index: i + 1, Err: err}
		}
	}
	return staged, nil
}

func cloneRecord(rec domain.ChainRecord) domain.ChainRecord {
	rec.Payload.Ciphertext = bytes.Clone(rec.Payload.Ciphertext)
	rec.Payload.Authenticator = bytes.Clone(rec.Payload.Authenticator)
	rec.Payload.Recipients = slices.Clone(rec.Payload.Recipients)
	return rec
}
