package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/internal/utils"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/services"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MessageHandler handles direct message sends. Attaching a playlist to a
// message is the share mechanism: the recipient gains read access to the
// playlist the moment the message lands.
type MessageHandler struct {
	messageStore  store.MessageStore
	userStore     store.UserStore
	playlistStore store.PlaylistStore
	access        *services.PlaylistAccessService
	notifications *services.NotificationService
	logger        *zap.SugaredLogger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(
	ms store.MessageStore,
	us store.UserStore,
	ps store.PlaylistStore,
	access *services.PlaylistAccessService,
	notifications *services.NotificationService,
) *MessageHandler {
	return &MessageHandler{
		messageStore:  ms,
		userStore:     us,
		playlistStore: ps,
		access:        access,
		notifications: notifications,
		logger:        logger.GetLogger().Named("message-handler"),
	}
}

// SendMessage sends a direct message from the authenticated user, optionally
// attaching a playlist. The sender must be able to view a playlist to attach
// it. The recipient is notified asynchronously; delivery problems never fail
// the send.
// POST /v1/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	var req types.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		c.Abort()
		return
	}

	if req.ToID == userID {
		_ = c.Error(apperrors.ValidationFailed("Invalid recipient", "cannot send a message to yourself"))
		c.Abort()
		return
	}

	playlistName := ""
	if req.PlaylistID != nil {
		allowed, err := h.access.CanView(c.Request.Context(), userID, *req.PlaylistID)
		if err != nil {
			_ = c.Error(apperrors.NewDatabaseError(err))
			c.Abort()
			return
		}
		if !allowed {
			_ = c.Error(apperrors.NotFound("Playlist", *req.PlaylistID))
			c.Abort()
			return
		}

		playlist, err := h.playlistStore.GetPlaylist(c.Request.Context(), *req.PlaylistID)
		if err != nil {
			_ = c.Error(apperrors.NewDatabaseError(err))
			c.Abort()
			return
		}
		playlistName = playlist.Name
	}

	msg, err := h.messageStore.CreateMessage(c.Request.Context(), userID, req.ToID, req.Content, req.PlaylistID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = c.Error(apperrors.NotFound("User", req.ToID))
		} else {
			_ = c.Error(apperrors.NewDatabaseError(err))
		}
		c.Abort()
		return
	}

	sender, err := h.userStore.GetUser(c.Request.Context(), userID)
	if err != nil {
		// The message is already persisted; skip the notification rather
		// than failing the send.
		h.logger.Warnw("Failed to resolve sender for notification",
			"userID", userID,
			"messageID", msg.ID,
			"error", err)
	} else {
		h.notifications.NotifyMessage(sender.Actor(), msg, playlistName)
	}

	c.JSON(http.StatusCreated, msg)
}
