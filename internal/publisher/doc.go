// Package publisher writes rendered notes into an Obsidian vault.
//
// Each settings.WriteMode has its own handler. The direct handler writes the
// note atomically into the captures folder and refuses any path that would
// land outside the vault. The CLI handler shells out to the configured
// Obsidian command line tool. The fallback handler tries the CLI first and
// writes directly on any failure.
package publisher
