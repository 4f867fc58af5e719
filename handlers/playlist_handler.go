package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/internal/utils"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PlaylistHandler handles playlist reads. All reads are filtered through the
// access service so a playlist the viewer may not read is indistinguishable
// from one that does not exist.
type PlaylistHandler struct {
	access *services.PlaylistAccessService
	logger *zap.SugaredLogger
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(access *services.PlaylistAccessService) *PlaylistHandler {
	return &PlaylistHandler{
		access: access,
		logger: logger.GetLogger().Named("playlist-handler"),
	}
}

// GetPlaylist returns a playlist with its songs when the authenticated user is
// the owner or a share recipient. Returns 404 otherwise, including for
// playlists that do not exist.
// GET /v1/playlists/:id
func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	playlistID := c.Param("id")

	playlist, err := h.access.GetPlaylistForViewer(c.Request.Context(), userID, playlistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = c.Error(apperrors.NotFound("Playlist", playlistID))
		} else {
			_ = c.Error(apperrors.NewDatabaseError(err))
		}
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, playlist)
}

// ListSharedWithMe returns the playlists other users have shared with the
// authenticated user via messages, newest share first.
// GET /v1/playlists/shared-with-me
func (h *PlaylistHandler) ListSharedWithMe(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	shares, err := h.access.ListSharedWithUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"shares": shares})
}
