// Package store defines the persistence interfaces consumed by services and
// handlers. Implementations live in the postgres subpackage.
package store

import (
	"context"

	"github.com/MixtapeHQ/mixtape-backend/types"
)

// PushTokenStore maintains the durable mapping from user to the set of device
// tokens eligible to receive pushes.
type PushTokenStore interface {
	// RegisterToken upserts a (userID, token) registration. Re-registering the
	// same pair updates the platform and refresh timestamp in place; it never
	// creates a duplicate row. Returns ErrInvalidInput for an unsupported
	// platform or empty token.
	RegisterToken(ctx context.Context, userID, token string, platform types.Platform) (*types.PushToken, error)

	// ListTokens returns all tokens for a user, newest first.
	ListTokens(ctx context.Context, userID string) ([]*types.PushToken, error)

	// DeleteToken removes the token with the given id if it belongs to the
	// user; returns ErrNotFound otherwise.
	DeleteToken(ctx context.Context, userID, tokenID string) error

	// InvalidateToken removes a token the provider reported as permanently
	// invalid. Keyed by the opaque token value since provider tickets carry no
	// row id.
	InvalidateToken(ctx context.Context, token string) error
}

// MessageStore handles direct messages and the derived playlist-share relation.
type MessageStore interface {
	// CreateMessage persists a message, returning it with id and timestamp set.
	CreateMessage(ctx context.Context, fromID, toID, content string, playlistID *string) (*types.Message, error)

	// PlaylistSharedWith reports whether any message addressed to userID
	// carries the given playlist id.
	PlaylistSharedWith(ctx context.Context, userID, playlistID string) (bool, error)

	// ListPlaylistShares returns one entry per message addressed to userID
	// that carries a playlist reference, newest first. Song lists are filled
	// in by the caller.
	ListPlaylistShares(ctx context.Context, userID string) ([]*types.SharedPlaylist, error)
}

// UserStore handles the minimal user reads the notification flows need.
type UserStore interface {
	// GetUser returns the user's display identity or ErrNotFound.
	GetUser(ctx context.Context, userID string) (*types.User, error)
}

// PlaylistStore handles playlist reads needed for access resolution and
// shared-content rendering.
type PlaylistStore interface {
	// GetPlaylist returns the playlist or ErrNotFound.
	GetPlaylist(ctx context.Context, playlistID string) (*types.Playlist, error)

	// GetSongs returns the playlist's songs in position order.
	GetSongs(ctx context.Context, playlistID string) ([]types.Song, error)
}
