// Package transport carries encrypted chain records between parties.
//
// Broker is the in-process implementation of domain.Transport: publishers
// hand it a locator and opaque bytes, subscribers receive every delivery whose
// locator falls under their prefix. Deliveries are identified by a CIDv1
// (raw codec, sha2-256) of their payload and retained so they can be fetched
// later by id.
//
// The transport never sees plaintext and performs no retries; timeouts and
// backpressure are governed by the caller's context.
package transport
