// Package main runs the gRPC relay that carries rolechain records between
// parties during development and tests. It retains every published record
// in memory and streams new ones to subscribers by locator prefix.
//
// gRPC API (rolechain.relay.v1.Relay)
//
//	Publish(BytesValue) -> StringValue
//	    Body is JSON {"locator": ..., "payload": base64}. Returns the
//	    delivery id, the CIDv1 of the payload.
//
//	Fetch(StringValue) -> BytesValue
//	    Returns the JSON delivery for an id, or NOT_FOUND.
//
//	Subscribe(StringValue) -> stream BytesValue
//	    Streams JSON deliveries whose locator falls under the prefix.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Malformed locators are rejected with INVALID_ARGUMENT.
//   - A slow subscriber blocks publishers until its buffer drains or the
//     publish call's deadline passes.
//   - The default listen address is :7369.
//
// The relay never sees plaintext or private keys; it only stores sealed
// records and the locators they were published under.
package main
