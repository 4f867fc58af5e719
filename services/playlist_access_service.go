package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"go.uber.org/zap"
)

// PlaylistAccessService decides playlist visibility for a requesting user and
// surfaces the set of playlists shared with a user via messages. Access is
// granted by ownership or by having received the playlist in a message; there
// is no first-class grant entity.
type PlaylistAccessService struct {
	playlistStore store.PlaylistStore
	messageStore  store.MessageStore
	logger        *zap.SugaredLogger
}

// NewPlaylistAccessService creates a new PlaylistAccessService.
func NewPlaylistAccessService(ps store.PlaylistStore, ms store.MessageStore) *PlaylistAccessService {
	return &PlaylistAccessService{
		playlistStore: ps,
		messageStore:  ms,
		logger:        logger.GetLogger().Named("playlist-access"),
	}
}

// CanView reports whether viewerID may read the playlist's contents: true for
// the owner, true for the recipient of any message carrying the playlist's id,
// false otherwise. A missing playlist resolves to false so callers surface the
// same not-found response for "doesn't exist" and "not authorized".
func (s *PlaylistAccessService) CanView(ctx context.Context, viewerID, playlistID string) (bool, error) {
	playlist, err := s.playlistStore.GetPlaylist(ctx, playlistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to resolve playlist access: %w", err)
	}

	if playlist.OwnerID == viewerID {
		return true, nil
	}

	shared, err := s.messageStore.PlaylistSharedWith(ctx, viewerID, playlistID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve playlist access: %w", err)
	}

	return shared, nil
}

// GetPlaylistForViewer returns the playlist with its songs when the viewer is
// allowed to read it, and store.ErrNotFound otherwise (deliberately identical
// for nonexistent and unauthorized playlists).
func (s *PlaylistAccessService) GetPlaylistForViewer(ctx context.Context, viewerID, playlistID string) (*types.PlaylistWithSongs, error) {
	allowed, err := s.CanView(ctx, viewerID, playlistID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, store.ErrNotFound
	}

	playlist, err := s.playlistStore.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	songs, err := s.playlistStore.GetSongs(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist songs: %w", err)
	}

	return &types.PlaylistWithSongs{Playlist: *playlist, Songs: songs}, nil
}

// ListSharedWithUser returns, newest-message-first, one entry per message
// addressed to userID that carries a playlist reference, each with the
// referenced playlist's song list. A playlist shared in two messages appears
// twice; each share is a distinct social event.
func (s *PlaylistAccessService) ListSharedWithUser(ctx context.Context, userID string) ([]*types.SharedPlaylist, error) {
	shares, err := s.messageStore.ListPlaylistShares(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist shares: %w", err)
	}

	for _, share := range shares {
		songs, err := s.playlistStore.GetSongs(ctx, share.PlaylistID)
		if err != nil {
			// A share whose song list can't be loaded is still surfaced;
			// the entry just carries an empty list.
			s.logger.Warnw("Failed to load songs for shared playlist",
				"playlistID", share.PlaylistID,
				"error", err)
			songs = []types.Song{}
		}
		share.Songs = songs
	}

	return shares, nil
}
