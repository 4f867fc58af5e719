package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure PlaylistStore implements store.PlaylistStore
var _ store.PlaylistStore = (*PlaylistStore)(nil)

// PlaylistStore implements store.PlaylistStore using PostgreSQL.
type PlaylistStore struct {
	db DB
}

// NewPlaylistStore creates a new PlaylistStore instance
func NewPlaylistStore(db DB) *PlaylistStore {
	return &PlaylistStore{db: db}
}

// GetPlaylist returns the playlist or store.ErrNotFound.
func (s *PlaylistStore) GetPlaylist(ctx context.Context, playlistID string) (*types.Playlist, error) {
	query := `
		SELECT id, owner_id, name, created_at, updated_at
		FROM playlists
		WHERE id = $1`

	p := &types.Playlist{}
	err := s.db.QueryRow(ctx, query, playlistID).Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error getting playlist: %w", err)
	}

	return p, nil
}

// GetSongs returns the playlist's songs in position order.
func (s *PlaylistStore) GetSongs(ctx context.Context, playlistID string) ([]types.Song, error) {
	query := `
		SELECT id, title, artist, position
		FROM playlist_songs
		WHERE playlist_id = $1
		ORDER BY position ASC`

	rows, err := s.db.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("error listing playlist songs: %w", err)
	}
	defer rows.Close()

	songs := []types.Song{}
	for rows.Next() {
		var song types.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.Position); err != nil {
			return nil, fmt.Errorf("error scanning song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist songs: %w", err)
	}

	return songs, nil
}
