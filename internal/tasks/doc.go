// package tasks orchestrates the transfer pipeline.
//
// A run moves through phases strictly in order: reading the source
// playlist (cache-aware), matching every track against the destination
// catalog, resolving whatever the match engine could not auto-accept,
// writing the destination playlist in batches, and reporting. Progress
// is streamed over a channel with non-blocking sends; the returned
// Summary carries the authoritative counts.
package tasks
