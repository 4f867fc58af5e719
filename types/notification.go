package types

import "time"

// NotificationCategory identifies the social event a notification describes.
type NotificationCategory string

const (
	CategoryFollow          NotificationCategory = "follow"
	CategoryUnfollow        NotificationCategory = "unfollow"
	CategoryMessage         NotificationCategory = "message"
	CategoryPlaylistShare   NotificationCategory = "playlist_share"
	CategoryPlaylistLike    NotificationCategory = "playlist_like"
	CategoryPlaylistComment NotificationCategory = "playlist_comment"
	CategoryGeneric         NotificationCategory = "generic"
)

// Actor carries the already-resolved identity of the user who triggered a
// notification. The composer performs no lookups; callers supply these.
type Actor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// NotificationPayload is the composed, ready-to-send notification content.
// It is ephemeral and never persisted.
type NotificationPayload struct {
	Category  NotificationCategory   `json:"category"`
	Title     string                 `json:"title"`
	Body      string                 `json:"body"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// DeliveryStatus is the per-token outcome of one delivery attempt.
type DeliveryStatus string

const (
	DeliverySent          DeliveryStatus = "sent"
	DeliveryInvalidToken  DeliveryStatus = "invalid_token"
	DeliveryProviderError DeliveryStatus = "provider_error"
)

// DeliveryOutcome records what happened to a single device token during fan-out.
type DeliveryOutcome struct {
	Token  string         `json:"token"`
	Status DeliveryStatus `json:"status"`
	Error  string         `json:"error,omitempty"`
}

// DeliveryReport aggregates the outcomes of one fan-out call for one user.
// Attempted counts tokens actually submitted to the provider; malformed tokens
// are recorded as invalid without being submitted.
type DeliveryReport struct {
	UserID    string            `json:"userId"`
	Attempted int               `json:"attempted"`
	Sent      int               `json:"sent"`
	Failed    int               `json:"failed"`
	Invalid   int               `json:"invalid"`
	Outcomes  []DeliveryOutcome `json:"outcomes,omitempty"`
	// Error is set when the report could not be produced at all for this user
	// (token registry unavailable). Advisory only; never aborts sibling users.
	Error string `json:"error,omitempty"`
}

// BulkDeliveryReport combines per-user reports for a multi-user fan-out,
// ordered by the requested user IDs.
type BulkDeliveryReport struct {
	Attempted int               `json:"attempted"`
	Sent      int               `json:"sent"`
	Failed    int               `json:"failed"`
	Invalid   int               `json:"invalid"`
	Reports   []*DeliveryReport `json:"reports"`
}

// NotificationStats exposes process-lifetime delivery counters.
type NotificationStats struct {
	FanOuts   int64 `json:"fanOuts"`
	Attempted int64 `json:"attempted"`
	Sent      int64 `json:"sent"`
	Failed    int64 `json:"failed"`
	Invalid   int64 `json:"invalid"`
}

// SendNotificationRequest is the request body for sending a notification to one user.
type SendNotificationRequest struct {
	UserID string                 `json:"userId" binding:"required"`
	Title  string                 `json:"title" binding:"required"`
	Body   string                 `json:"body" binding:"required"`
	Data   map[string]interface{} `json:"data"`
}

// SendBulkNotificationRequest is the request body for sending a notification to many users.
type SendBulkNotificationRequest struct {
	UserIDs []string               `json:"userIds" binding:"required,min=1"`
	Title   string                 `json:"title" binding:"required"`
	Body    string                 `json:"body" binding:"required"`
	Data    map[string]interface{} `json:"data"`
}
