package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/config"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingPushService records SendToUser calls so tests can assert on the
// payloads dispatched through the worker pool.
type capturingPushService struct {
	mu    sync.Mutex
	calls []capturedSend
	done  chan struct{}
}

type capturedSend struct {
	userID  string
	payload *types.NotificationPayload
}

func newCapturingPushService() *capturingPushService {
	return &capturingPushService{done: make(chan struct{}, 16)}
}

func (s *capturingPushService) SendToUser(ctx context.Context, userID string, payload *types.NotificationPayload) (*types.DeliveryReport, error) {
	s.mu.Lock()
	s.calls = append(s.calls, capturedSend{userID: userID, payload: payload})
	s.mu.Unlock()
	s.done <- struct{}{}
	return &types.DeliveryReport{UserID: userID}, nil
}

func (s *capturingPushService) SendToUsers(ctx context.Context, userIDs []string, payload *types.NotificationPayload) (*types.BulkDeliveryReport, error) {
	return &types.BulkDeliveryReport{}, nil
}

func (s *capturingPushService) Stats() types.NotificationStats {
	return types.NotificationStats{}
}

func (s *capturingPushService) waitForCall(t *testing.T) capturedSend {
	t.Helper()
	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification dispatched")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func (s *capturingPushService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newNotificationServiceForTest(t *testing.T, push PushService) (*NotificationService, *WorkerPool) {
	t.Helper()
	pool := newTestPool(2, 16)
	pool.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = pool.Shutdown(ctx)
	})
	return NewNotificationService(push, pool), pool
}

func TestNotifyFollow_DispatchesToTarget(t *testing.T) {
	push := newCapturingPushService()
	svc, _ := newNotificationServiceForTest(t, push)

	svc.NotifyFollow(types.Actor{ID: "u1", Name: "Alice"}, "u2")

	call := push.waitForCall(t)
	assert.Equal(t, "u2", call.userID)
	assert.Equal(t, types.CategoryFollow, call.payload.Category)
	assert.Equal(t, "Alice started following you", call.payload.Body)
}

func TestNotifyMessage_ShareRendering(t *testing.T) {
	push := newCapturingPushService()
	svc, _ := newNotificationServiceForTest(t, push)

	playlistID := "pl-1"
	msg := &types.Message{ID: "m1", FromID: "u1", ToID: "u2", Content: "enjoy", PlaylistID: &playlistID, CreatedAt: time.Now()}

	svc.NotifyMessage(types.Actor{ID: "u1", Name: "Alice"}, msg, "Roadtrip")

	call := push.waitForCall(t)
	assert.Equal(t, "u2", call.userID)
	assert.Equal(t, types.CategoryPlaylistShare, call.payload.Category)
	assert.Equal(t, `Alice shared "Roadtrip" with you`, call.payload.Body)
}

func TestNotifyPlaylistLike_SelfLikeSuppressed(t *testing.T) {
	push := newCapturingPushService()
	svc, pool := newNotificationServiceForTest(t, push)

	playlist := &types.Playlist{ID: "pl-1", OwnerID: "u1", Name: "Chill"}
	svc.NotifyPlaylistLike(types.Actor{ID: "u1", Name: "Owner"}, playlist)

	// Nothing should have been queued; give the pool a beat to prove it.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, push.callCount())
	assert.Equal(t, 0, pool.QueueDepth())
}

func TestNotifyPlaylistComment_DispatchesToOwner(t *testing.T) {
	push := newCapturingPushService()
	svc, _ := newNotificationServiceForTest(t, push)

	playlist := &types.Playlist{ID: "pl-1", OwnerID: "u1", Name: "Chill"}
	svc.NotifyPlaylistComment(types.Actor{ID: "u2", Name: "Bob"}, playlist, "nice one")

	call := push.waitForCall(t)
	assert.Equal(t, "u1", call.userID)
	assert.Equal(t, types.CategoryPlaylistComment, call.payload.Category)
}

func TestDispatch_QueueFullDropsSilently(t *testing.T) {
	push := newCapturingPushService()

	resetWorkerPoolMetricsForTesting()
	pool := NewWorkerPool(config.WorkerPoolConfig{MaxWorkers: 1, QueueSize: 1, ShutdownTimeoutSeconds: 1})
	// Pool deliberately not started so the queue cannot drain.
	svc := NewNotificationService(push, pool)

	svc.NotifyFollow(types.Actor{ID: "u1", Name: "Alice"}, "u2")
	require.Equal(t, 1, pool.QueueDepth())

	// The second dispatch is dropped; the caller never sees an error.
	svc.NotifyFollow(types.Actor{ID: "u1", Name: "Alice"}, "u3")
	assert.Equal(t, 1, pool.QueueDepth())
}
