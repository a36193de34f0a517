// Package cmap provides a sharded concurrent map keyed by strings.
//
// Keys are spread across shards with murmur3, each shard guarded by its
// own RWMutex. isoauth uses it for the observer registry (keyed by ULID
// subscription ID) and for per-client rate limiters in the gateway.
package cmap
