// Package grpcrelay exposes a domain.Transport over gRPC.
//
// The service is rolechain.relay.v1.Relay:
//
//	Publish(BytesValue)   returns (StringValue)          JSON {locator, payload} -> delivery id
//	Fetch(StringValue)    returns (BytesValue)           delivery id -> JSON delivery
//	Subscribe(StringValue) returns (stream BytesValue)   locator prefix -> JSON deliveries
//
// Messages are protobuf well-known wrapper types, so no protoc step is
// needed. The client re-checks every delivery id against its payload.
package grpcrelay
