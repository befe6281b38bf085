// Package extension holds the block type registry: the mapping from
// descriptor type names to factories plus per-type construction defaults,
// and the go-type registry used for typed block options and snapshots.
package extension
