package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NocturnalNick/spotify2youtube/internal/services"
)

// CacheEntry is a cached source playlist snapshot.
type CacheEntry struct {
	PlaylistID  string
	Name        string
	Description string
	FetchedAt   time.Time
	Tracks      []services.Track
}

// PlaylistCache stores fetched playlists keyed by playlist id.
//
// An entry is valid only while now - FetchedAt < TTL; expired entries are
// treated as absent on read and overwritten on the next put.
type PlaylistCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewPlaylistCache creates a playlist cache with the given TTL.
func NewPlaylistCache(db *sql.DB, ttl time.Duration) *PlaylistCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &PlaylistCache{db: db, ttl: ttl}
}

// Get returns the cached entry for playlistID, or nil if there is no
// entry or the entry has expired. Expired rows are left in place; the
// next Put overwrites them.
func (c *PlaylistCache) Get(playlistID string) (*CacheEntry, error) {
	query := `
		SELECT playlist_id, name, description, tracks_json, fetched_at
		FROM playlist_cache
		WHERE playlist_id = ?
	`

	var entry CacheEntry
	var tracksJSON string
	var fetchedAt int64

	err := c.db.QueryRow(query, playlistID).Scan(
		&entry.PlaylistID,
		&entry.Name,
		&entry.Description,
		&tracksJSON,
		&fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}

	entry.FetchedAt = time.Unix(fetchedAt, 0)
	if time.Since(entry.FetchedAt) >= c.ttl {
		return nil, nil
	}

	if err := json.Unmarshal([]byte(tracksJSON), &entry.Tracks); err != nil {
		return nil, fmt.Errorf("failed to decode cached tracks: %w", err)
	}

	return &entry, nil
}

// Put stores an entry for its playlist id, replacing any existing row.
func (c *PlaylistCache) Put(entry CacheEntry) error {
	if entry.PlaylistID == "" {
		return fmt.Errorf("cache entry missing playlist id")
	}

	tracksJSON, err := json.Marshal(entry.Tracks)
	if err != nil {
		return fmt.Errorf("failed to encode tracks: %w", err)
	}

	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	query := `
		INSERT INTO playlist_cache (playlist_id, name, description, tracks_json, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(playlist_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			tracks_json = excluded.tracks_json,
			fetched_at = excluded.fetched_at
	`

	if _, err := c.db.Exec(query, entry.PlaylistID, entry.Name, entry.Description, string(tracksJSON), fetchedAt.Unix()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	return nil
}

// Delete removes the entry for playlistID if present.
func (c *PlaylistCache) Delete(playlistID string) error {
	if _, err := c.db.Exec("DELETE FROM playlist_cache WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries.
func (c *PlaylistCache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM playlist_cache"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// List returns all entries, including expired ones, newest first.
// Used by the cache inspection command.
func (c *PlaylistCache) List() ([]CacheEntry, error) {
	rows, err := c.db.Query(`
		SELECT playlist_id, name, description, tracks_json, fetched_at
		FROM playlist_cache
		ORDER BY fetched_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var entry CacheEntry
		var tracksJSON string
		var fetchedAt int64

		if err := rows.Scan(&entry.PlaylistID, &entry.Name, &entry.Description, &tracksJSON, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}

		entry.FetchedAt = time.Unix(fetchedAt, 0)
		if err := json.Unmarshal([]byte(tracksJSON), &entry.Tracks); err != nil {
			return nil, fmt.Errorf("failed to decode cached tracks: %w", err)
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Expired reports whether an entry would be treated as absent on read.
func (c *PlaylistCache) Expired(entry CacheEntry) bool {
	return time.Since(entry.FetchedAt) >= c.ttl
}
