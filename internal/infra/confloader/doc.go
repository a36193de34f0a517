// Package confloader loads layered configuration with koanf.
//
// Sources, lowest priority first:
//
//  1. Defaults (WithDefaults)
//  2. YAML file
//  3. Environment variables, ISOAUTH_ prefixed, "__" between sections
//  4. Explicit overrides (LoadMap), used for command-line flags
//
// Watcher reports edits to a loaded file so long-running processes can
// re-read reloadable settings.
package confloader
