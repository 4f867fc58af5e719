package types

import "time"

// Message represents a direct message between two users. A message may carry
// a playlist reference, which is the sole signal that the playlist was shared
// with the recipient.
type Message struct {
	ID         string    `json:"id"`
	FromID     string    `json:"fromId"`
	ToID       string    `json:"toId"`
	Content    string    `json:"content"`
	PlaylistID *string   `json:"playlistId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HasPlaylist reports whether the message carries a playlist reference.
func (m *Message) HasPlaylist() bool {
	return m.PlaylistID != nil && *m.PlaylistID != ""
}
