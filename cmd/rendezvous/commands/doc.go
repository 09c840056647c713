// Package commands defines the rendezvous CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create or rotate the local identity
//   - fingerprint    Print the identity fingerprint
//   - register       Mint and publish your pre-key bundle to a relay
//   - start-session  Pin a peer's identity key on first contact
//   - send           Run X3DH and send an encrypted message
//   - recv           Drain and decrypt your queued messages
//
// # Implementation
//
// The root command constructs an HTTP client and builds a dependency graph
// (stores, services, relay client) before any subcommand runs, so handlers can
// use a shared app context with timeouts and connection pooling.
package commands
