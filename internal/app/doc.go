// Package app wires application dependencies for the CLI.
//
// It loads Config (defaults, then an optional YAML file, then ROLECHAIN_*
// environment variables; flags are applied by the caller), builds the zap
// logger and constructs the stores, transport and services exposed via the
// Wire struct for commands to use.
package app
