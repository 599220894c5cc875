// Package identity manages creation, encryption and loading of the local
// key tree.
//
// It enforces passphrase policy, generates the root seed and persists it via
// the domain.IdentityStore. Every other key (environment, role branches,
// record keys) is re-derived from the seed on demand.
//
// # Notes
//
// The passphrase protects the seed at rest only. The seed itself is
// stretched with an empty passphrase, so a seed exported to another tool
// rebuilds the same tree.
package identity
