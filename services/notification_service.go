package services

import (
	"context"

	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"go.uber.org/zap"
)

// NotificationService is the entry point business actions use to trigger push
// notifications. Every notify method composes a payload and hands delivery to
// the worker pool: the triggering action (follow created, message sent, like
// recorded) never waits on delivery and never observes a delivery failure.
type NotificationService struct {
	push   PushService
	pool   *WorkerPool
	logger *zap.SugaredLogger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(push PushService, pool *WorkerPool) *NotificationService {
	return &NotificationService{
		push:   push,
		pool:   pool,
		logger: logger.GetLogger().Named("notification-service"),
	}
}

// NotifyFollow notifies targetUserID that actor started following them.
// Self-follow is rejected upstream, so follow events always notify.
func (s *NotificationService) NotifyFollow(actor types.Actor, targetUserID string) {
	s.dispatch("notify-follow", targetUserID, ComposeFollow(actor))
}

// NotifyUnfollow notifies targetUserID that actor unfollowed them.
func (s *NotificationService) NotifyUnfollow(actor types.Actor, targetUserID string) {
	s.dispatch("notify-unfollow", targetUserID, ComposeUnfollow(actor))
}

// NotifyMessage notifies the message recipient. When the message carries a
// playlist reference, the recipient sees the playlist-share rendering;
// playlistName must be resolved by the caller in that case.
func (s *NotificationService) NotifyMessage(sender types.Actor, msg *types.Message, playlistName string) {
	s.dispatch("notify-message", msg.ToID, ComposeMessage(sender, msg, playlistName))
}

// NotifyPlaylistLike notifies the playlist owner of a like. Suppressed when
// the liker owns the playlist.
func (s *NotificationService) NotifyPlaylistLike(liker types.Actor, playlist *types.Playlist) {
	s.dispatch("notify-playlist-like", playlist.OwnerID, ComposePlaylistLike(liker, playlist))
}

// NotifyPlaylistComment notifies the playlist owner of a comment. Suppressed
// when the commenter owns the playlist.
func (s *NotificationService) NotifyPlaylistComment(commenter types.Actor, playlist *types.Playlist, comment string) {
	s.dispatch("notify-playlist-comment", playlist.OwnerID, ComposePlaylistComment(commenter, playlist, comment))
}

// Stats returns process-lifetime delivery counters.
func (s *NotificationService) Stats() types.NotificationStats {
	return s.push.Stats()
}

// dispatch submits a fire-and-forget fan-out job. A nil payload means the
// composer suppressed the event. A full queue or a delivery failure is logged
// and counted, never surfaced to the triggering action.
func (s *NotificationService) dispatch(name, userID string, payload *types.NotificationPayload) {
	if payload == nil {
		return
	}

	submitted := s.pool.Submit(Job{
		Name: name,
		Execute: func(ctx context.Context) error {
			_, err := s.push.SendToUser(ctx, userID, payload)
			return err
		},
	})
	if !submitted {
		s.logger.Warnw("Notification dropped - worker queue full",
			"job", name,
			"userID", userID,
			"category", payload.Category)
	}
}
