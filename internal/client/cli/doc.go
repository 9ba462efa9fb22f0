// Package cli provides the interactive sessionkeeper command-line client.
//
// It wires configuration, the local session database, the auth state and
// the API client, then runs a REPL driven by a command table. Commands
// that need a session are marked requiresAuth and are refused while
// nobody is logged in.
//
// Commands:
//   - login, signup, reset (always available)
//   - logout, whoami, onboard, profile, trial, subscribe, verify, resend,
//     refresh (logged in only)
//   - help, exit | quit
//
// A background watcher pings the API and shows online/offline in the
// prompt; the prompt also follows the auth state through State.OnChange.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
