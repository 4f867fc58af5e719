package handlers

import (
	"net/http"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/internal/utils"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/services"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler exposes the direct notification send and stats endpoints.
type NotificationHandler struct {
	push   services.PushService
	logger *zap.SugaredLogger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(push services.PushService) *NotificationHandler {
	return &NotificationHandler{
		push:   push,
		logger: logger.GetLogger().Named("notification-handler"),
	}
}

// SendNotification delivers a notification to all of one user's devices and
// returns the delivery report. Partial delivery failures are reflected in the
// report, not in the response status.
// POST /v1/notifications/send
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	if _, err := utils.GetUserIDFromContext(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	var req types.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		c.Abort()
		return
	}

	payload := services.ComposeGeneric(req.Title, req.Body, req.Data)
	report, err := h.push.SendToUser(c.Request.Context(), req.UserID, payload)
	if err != nil {
		_ = c.Error(apperrors.InternalServerError("Failed to dispatch notification"))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, report)
}

// SendBulkNotification delivers a notification to many users and returns the
// combined delivery report partitioned by user.
// POST /v1/notifications/send-bulk
func (h *NotificationHandler) SendBulkNotification(c *gin.Context) {
	if _, err := utils.GetUserIDFromContext(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	var req types.SendBulkNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		c.Abort()
		return
	}

	payload := services.ComposeGeneric(req.Title, req.Body, req.Data)
	report, err := h.push.SendToUsers(c.Request.Context(), req.UserIDs, payload)
	if err != nil {
		_ = c.Error(apperrors.InternalServerError("Failed to dispatch notifications"))
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetNotificationStats returns process-lifetime delivery counters.
// GET /v1/notifications/stats
func (h *NotificationHandler) GetNotificationStats(c *gin.Context) {
	if _, err := utils.GetUserIDFromContext(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, h.push.Stats())
}
