package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/internal/utils"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PushTokenHandler handles HTTP requests related to push notification tokens.
type PushTokenHandler struct {
	pushTokenStore store.PushTokenStore
	logger         *zap.SugaredLogger
}

// NewPushTokenHandler creates a new PushTokenHandler.
func NewPushTokenHandler(pts store.PushTokenStore) *PushTokenHandler {
	return &PushTokenHandler{
		pushTokenStore: pts,
		logger:         logger.GetLogger().Named("push-token-handler"),
	}
}

// RegisterPushToken registers or updates a push token for the authenticated
// user's device. Re-registering the same token is an idempotent upsert.
// POST /v1/users/push-tokens
func (h *PushTokenHandler) RegisterPushToken(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	var req types.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		c.Abort()
		return
	}

	pushToken, err := h.pushTokenStore.RegisterToken(c.Request.Context(), userID, req.Token, types.Platform(req.Platform))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidInput):
			_ = c.Error(apperrors.ValidationFailed("Invalid push token registration", err.Error()))
		case errors.Is(err, store.ErrNotFound):
			_ = c.Error(apperrors.NotFound("User", userID))
		default:
			_ = c.Error(apperrors.NewDatabaseError(err))
		}
		c.Abort()
		return
	}

	h.logger.Infow("Registered push token",
		"userID", userID,
		"platform", req.Platform,
		"token", logger.MaskToken(req.Token))

	c.JSON(http.StatusOK, pushToken)
}

// ListPushTokens returns all device tokens registered by the authenticated user.
// GET /v1/users/push-tokens
func (h *PushTokenHandler) ListPushTokens(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	tokens, err := h.pushTokenStore.ListTokens(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(apperrors.NewDatabaseError(err))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// DeletePushToken removes one of the authenticated user's device tokens
// (typically on logout).
// DELETE /v1/users/push-tokens/:tokenId
func (h *PushTokenHandler) DeletePushToken(c *gin.Context) {
	userID, err := utils.GetUserIDFromContext(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	tokenID := c.Param("tokenId")

	if err := h.pushTokenStore.DeleteToken(c.Request.Context(), userID, tokenID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = c.Error(apperrors.NotFound("Push token", tokenID))
		} else {
			_ = c.Error(apperrors.NewDatabaseError(err))
		}
		c.Abort()
		return
	}

	h.logger.Infow("Deleted push token", "userID", userID, "tokenID", tokenID)

	c.Status(http.StatusNoContent)
}
