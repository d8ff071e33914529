// Package main hosts the Lightbox CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into catalog
// operations: importing records, editing attributes, managing the key
// catalog, and driving the interactive edit session with undo support. It
// centralizes configuration resolution and catalog opening so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
