// Package preflight runs the environment checks behind `vaultcapture status`:
// directory access for the database, content store and vault, availability
// of the Obsidian CLI, and whether a Gemini key is configured.
package preflight
