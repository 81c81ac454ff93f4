// Package main hosts the vaultcapture CLI.
//
// The command tree covers enqueueing files, inspecting and transitioning
// jobs, editing the settings row, rendering and publishing notes, and managing
// the Gemini API key. Configuration, the database pool and the logger are
// resolved once per invocation by commandContext so subcommands only deal
// with presentation.
package main
