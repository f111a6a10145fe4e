// Package cli provides the interactive juiz command-line client.
//
// It wires configuration, the local credential store, the REST client and
// session managers into a REPL. The shell keeps one session manager for its
// whole lifetime and shows the signed-in user in the prompt. Commands that
// act on a single resource (show, add, edit, delete) mount their own manager
// for the duration of the command, the way a page would.
//
// A 401 returned to any of those commands signs the session out and records
// the command; after the next successful login it is resumed.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
