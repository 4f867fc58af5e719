package types

import "time"

// Platform represents the device platform for push notifications
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Valid reports whether the platform is one of the supported values.
func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// PushToken represents one registered device endpoint for a user.
// The (UserID, Token) pair is unique; re-registering the same pair updates
// the platform and refresh timestamp in place.
type PushToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	Platform  Platform  `json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterPushTokenRequest is the request body for registering a push token
type RegisterPushTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=ios android"`
}
