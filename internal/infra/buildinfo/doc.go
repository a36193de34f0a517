// Package buildinfo exposes the version stamped into isoauth binaries.
package buildinfo
