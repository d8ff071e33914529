// Package config loads, validates, and defaults Lightbox configuration.
//
// Configuration is a TOML file resolved from an explicit --config flag, then
// ~/.config/lightbox/config.toml, then ./lightbox.toml. Paths are expanded
// (including ~) and normalized to absolute form during load so the rest of
// the codebase never deals with relative or user-prefixed paths.
package config
