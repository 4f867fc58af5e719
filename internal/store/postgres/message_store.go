package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ensure MessageStore implements store.MessageStore
var _ store.MessageStore = (*MessageStore)(nil)

// MessageStore implements store.MessageStore using PostgreSQL.
type MessageStore struct {
	db DB
}

// NewMessageStore creates a new MessageStore instance
func NewMessageStore(db DB) *MessageStore {
	return &MessageStore{db: db}
}

// CreateMessage persists a direct message. playlistID may be nil; a non-nil
// value marks the message as a playlist share.
func (s *MessageStore) CreateMessage(ctx context.Context, fromID, toID, content string, playlistID *string) (*types.Message, error) {
	query := `
		INSERT INTO messages (from_id, to_id, content, playlist_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	msg := &types.Message{
		FromID:     fromID,
		ToID:       toID,
		Content:    content,
		PlaylistID: playlistID,
	}
	err := s.db.QueryRow(ctx, query, fromID, toID, content, playlistID).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			// Recipient or playlist reference doesn't exist
			return nil, fmt.Errorf("message references missing record: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	return msg, nil
}

// PlaylistSharedWith reports whether any message addressed to userID carries
// the given playlist id.
func (s *MessageStore) PlaylistSharedWith(ctx context.Context, userID, playlistID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM messages
			WHERE to_id = $1 AND playlist_id = $2
		)`

	var shared bool
	if err := s.db.QueryRow(ctx, query, userID, playlistID).Scan(&shared); err != nil {
		return false, fmt.Errorf("error checking playlist share: %w", err)
	}

	return shared, nil
}

// ListPlaylistShares returns one entry per message addressed to userID that
// carries a playlist reference, newest message first. Each message produces
// its own entry; no deduplication by playlist.
func (s *MessageStore) ListPlaylistShares(ctx context.Context, userID string) ([]*types.SharedPlaylist, error) {
	query := `
		SELECT m.id, m.from_id, u.display_name, COALESCE(u.image_url, ''),
		       m.content, m.created_at, p.id, p.name
		FROM messages m
		JOIN users u ON u.id = m.from_id
		JOIN playlists p ON p.id = m.playlist_id
		WHERE m.to_id = $1 AND m.playlist_id IS NOT NULL
		ORDER BY m.created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing playlist shares: %w", err)
	}
	defer rows.Close()

	shares := []*types.SharedPlaylist{}
	for rows.Next() {
		sp := &types.SharedPlaylist{}
		if err := rows.Scan(
			&sp.MessageID,
			&sp.SenderID,
			&sp.SenderName,
			&sp.SenderImage,
			&sp.Content,
			&sp.SentAt,
			&sp.PlaylistID,
			&sp.PlaylistName,
		); err != nil {
			return nil, fmt.Errorf("error scanning playlist share: %w", err)
		}
		shares = append(shares, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading playlist shares: %w", err)
	}

	return shares, nil
}
