// Package journal drives a ledger chain end to end: it derives record keys,
// seals payloads for the roles named in a locator, publishes the record on
// a transport and persists the resulting chain.
//
// Record keys follow the adjacent discipline: every record's key is a
// child of the previous record's key, starting from the chain's base node.
// The chain therefore only ever stores public material; the private keys
// are re-derived from the base node when a new record is produced.
package journal
