package types

import "time"

// User is the minimal profile the notification flows need: a display identity
// for composing notification content.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Actor converts the user into the composer's actor shape.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.DisplayName, ImageURL: u.ImageURL}
}

// SendMessageRequest is the request body for sending a direct message,
// optionally attaching a playlist.
type SendMessageRequest struct {
	ToID       string  `json:"toId" binding:"required"`
	Content    string  `json:"content" binding:"required"`
	PlaylistID *string `json:"playlistId"`
}
