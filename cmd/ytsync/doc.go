// Package main hosts the ytsync CLI entrypoint and command graph.
//
// The Cobra-based command tree covers source lifecycle (add, remove, enable,
// disable), catalog listings (sources, videos), the scheduled refresh and
// download passes (fetch, sync), and configuration scaffolding. It centralizes
// configuration resolution, catalog startup migration, and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
