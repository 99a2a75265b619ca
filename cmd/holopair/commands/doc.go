// Package commands defines the holopair CLI.
//
// Commands
//
//   - initiator  Listen for a responder, advertise via mDNS and drive pairing
//   - responder  Find or dial the initiator and follow its lead
//   - demo       Run both sides in one process over an in-memory pipe
//   - artifact   Print the verification artifact for a secret
//
// # Configuration
//
// The root command loads holopair.yaml (see pkg/config) before any
// subcommand runs; flags override file values. The initiator reloads element
// sizes and attack probability when the file changes.
//
// # Keywords
//
// Interactive commands read keywords from the terminal: click, abort,
// restart, switch, roles, help and quit.
package commands
