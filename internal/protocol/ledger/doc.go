// Package ledger keeps the append-only record chain of one identity.
//
// Records are linked by key derivation rather than by a stored hash: each
// record names the fingerprint of the key its own address was derived from,
// and Add accepts it only if that fingerprint belongs to the latest record
// (LinkAdjacent). Chains built with WithAncestorWalk also accept any ancestor
// of the latest record (LinkAncestor), found by following the previous
// fingerprints recorded in the chain and then an external resolver such as
// a keytree.Index.
//
// Lifecycle: New (empty) -> Genesis (one record, no link check) -> Add...
// A record is RecordPending until Add validates it and stores an
// RecordAppended copy. Nothing is ever removed or overwritten; a repeated
// address is domain.ErrDuplicateAddress.
//
// # Concurrency
//
// Each Chain carries its own RWMutex: Add and Import are serialized, reads
// run concurrently. Walk is lazy and observes records appended while it is
// being consumed.
package ledger
