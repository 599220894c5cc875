package ledger

import (
	"fmt"

	"rolechain/internal/domain"
)

// Linkage selects how strictly Add checks PreviousFingerprint.
type Linkage int

const (
	// LinkAdjacent requires the latest record's fingerprint.
	LinkAdjacent Linkage = iota
	// LinkAncestor also accepts any ancestor of the latest record.
	LinkAncestor
)

// String returns the config name of the linkage.
func (l Linkage) String() string {
	switch l {
	case LinkAdjacent:
		return "adjacent"
	case LinkAncestor:
		return "ancestor"
	default:
		return fmt.Sprintf("linkage(%d)", int(l))
	}
}

// ParseLinkage maps a config name to a Linkage.
func ParseLinkage(s string) (Linkage, error) {
	switch s {
	case "", "adjacent":
		return LinkAdjacent, nil
	case "ancestor":
		return LinkAncestor, nil
	}
	return 0, fmt.Errorf("ledger: unknown linkage %q", s)
}

// AncestorResolver reports the parent fingerprint of keys that live outside
// the chain. keytree.Index satisfies it.
type AncestorResolver interface {
	Parent(fp domain.Fingerprint) (domain.Fingerprint, bool)
}

type config struct {
	linkage  Linkage
	resolver AncestorResolver
}

// Option configures a Chain.
type Option func(*config)

// WithAncestorWalk switches the chain to LinkAncestor. resolver may be nil,
// in which case only ancestry recorded in the chain itself is followed.
func WithAncestorWalk(resolver AncestorResolver) Option {
	return func(c *config) {
		c.linkage = LinkAncestor
		c.resolver = resolver
	}
}

// WithLinkage selects a linkage without a resolver.
func WithLinkage(l Linkage) Option {
	return func(c *config) { c.linkage = l }
}
