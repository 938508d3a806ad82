// package repositories provides the sqlite persistence layer.
//
// The only persisted entity is the playlist cache: one row per source
// playlist id holding the canonical track list and fetch timestamp.
// Reads are TTL-gated; writes are last-write-wins.
package repositories
