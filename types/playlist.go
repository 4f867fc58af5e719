package types

import "time"

// Playlist represents a user-owned playlist.
type Playlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Song is one track of a playlist.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Position int    `json:"position"`
}

// PlaylistWithSongs bundles a playlist with its track list for read endpoints.
type PlaylistWithSongs struct {
	Playlist Playlist `json:"playlist"`
	Songs    []Song   `json:"songs"`
}

// SharedPlaylist is one "shared via message" entry surfaced to a recipient.
// Each qualifying message produces its own entry; a playlist shared in two
// messages appears twice, since each share is a distinct social event.
type SharedPlaylist struct {
	MessageID    string    `json:"messageId"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	SenderImage  string    `json:"senderImage,omitempty"`
	Content      string    `json:"content"`
	SentAt       time.Time `json:"sentAt"`
	PlaylistID   string    `json:"playlistId"`
	PlaylistName string    `json:"playlistName"`
	Songs        []Song    `json:"songs"`
}
