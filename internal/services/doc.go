// The package contains two categories of types: wire types mirroring the
// Spotify Web API and ytmusicapi proxy responses, and the canonical
// [Track]/[Playlist] types every other package works with. Only the
// canonical types cross package boundaries.
package services
