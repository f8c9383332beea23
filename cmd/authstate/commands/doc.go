// Package commands implements the authstate CLI, which inspects and edits
// the auth bootstrap records of a local store.
package commands
