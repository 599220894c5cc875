// Package commands defines the rolechain CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create the local key tree
//   - fingerprint    Print the identity summary
//   - address        Print a role address, from the seed or from an xpub
//   - locator        Build or parse role-address locators
//   - seal / open    Multi-party encrypt and decrypt a payload
//   - chain          Start, append to, inspect, verify, export and import chains
//   - follow         Stream records published on the relay
//
// # Implementation
//
// The root command loads the layered configuration (defaults, config.yaml,
// ROLECHAIN_* variables, then flags), builds a zap logger and the dependency
// graph (stores, transport, services) before any subcommand runs.
package commands
