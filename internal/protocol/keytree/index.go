package keytree

import (
	"sync"

	"rolechain/internal/domain"
)

// Index remembers the parent of every node it has seen so that a fingerprint
// can be walked towards its root without holding the nodes themselves.
// It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	parents map[domain.Fingerprint]domain.Fingerprint
	addrs   map[domain.Fingerprint]domain.Address
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		parents: make(map[domain.Fingerprint]domain.Fingerprint),
		addrs:   make(map[domain.Fingerprint]domain.Address),
	}
}

// Add records n.
func (x *Index) Add(n *KeyNode) {
	fp := n.Fingerprint()
	x.mu.Lock()
	x.parents[fp] = n.ParentFingerprint()
	x.addrs[fp] = n.Address()
	x.mu.Unlock()
}

// AddPath derives every node along path from n and records each of them,
// n included. It returns the last node.
func (x *Index) AddPath(n *KeyNode, path Path) (*KeyNode, error) {
	x.Add(n)
	cur := n
	for _, idx := range path {
		next, err := cur.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		x.Add(next)
		cur = next
	}
	return cur, nil
}

// Parent returns the recorded parent fingerprint of fp.
func (x *Index) Parent(fp domain.Fingerprint) (domain.Fingerprint, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	p, ok := x.parents[fp]
	return p, ok
}

// Lookup returns the address recorded for fp.
func (x *Index) Lookup(fp domain.Fingerprint) (domain.Address, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	a, ok := x.addrs[fp]
	return a, ok
}

// Len returns the number of recorded nodes.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.parents)
}
