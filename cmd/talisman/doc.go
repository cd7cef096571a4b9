// Package main hosts the talisman CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves a bundle source (patch CDN, HTTP
// mirror, or local tree), layers the configured cache over it, and surfaces
// the extraction pipeline plus small single-file utilities (sha, extract)
// and configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
