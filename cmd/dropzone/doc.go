// Package main hosts the dropzone CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the two workflows (tagging audio files
// into the Apple Music import folder, copying files to a remote host) plus
// the supporting surface: host listing, run history, dependency checks, and
// configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
