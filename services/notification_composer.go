// Package services provides business logic implementations.
package services

import (
	"fmt"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/types"
)

// commentPreviewLimit caps the comment text embedded in a notification body.
const commentPreviewLimit = 50

// The compose functions are pure: they build typed push payloads from
// already-resolved context (names, images, playlist titles) and perform no
// persistence or network I/O. A nil return means the event is suppressed and
// nothing should be sent.

// ComposeFollow builds the payload for a new-follower event.
func ComposeFollow(actor types.Actor) *types.NotificationPayload {
	return &types.NotificationPayload{
		Category: types.CategoryFollow,
		Title:    "New Follower",
		Body:     fmt.Sprintf("%s started following you", actor.Name),
		Data: map[string]interface{}{
			"category":   string(types.CategoryFollow),
			"actorId":    actor.ID,
			"actorName":  actor.Name,
			"actorImage": actor.ImageURL,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ComposeUnfollow builds the payload for an unfollow event.
func ComposeUnfollow(actor types.Actor) *types.NotificationPayload {
	return &types.NotificationPayload{
		Category: types.CategoryUnfollow,
		Title:    "User Unfollowed",
		Body:     fmt.Sprintf("%s unfollowed you", actor.Name),
		Data: map[string]interface{}{
			"category":  string(types.CategoryUnfollow),
			"actorId":   actor.ID,
			"actorName": actor.Name,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ComposeMessage builds the payload for a direct message. When the message
// carries a playlist reference it renders the playlist-share template instead;
// same underlying event, different rendering. playlistName is only consulted
// for shares and must be resolved by the caller.
func ComposeMessage(sender types.Actor, msg *types.Message, playlistName string) *types.NotificationPayload {
	data := map[string]interface{}{
		"senderId":    sender.ID,
		"senderName":  sender.Name,
		"senderImage": sender.ImageURL,
		"content":     msg.Content,
		"sentAt":      msg.CreatedAt.UTC().Format(time.RFC3339),
	}

	if msg.HasPlaylist() {
		data["category"] = string(types.CategoryPlaylistShare)
		data["playlistId"] = *msg.PlaylistID
		data["playlistName"] = playlistName
		return &types.NotificationPayload{
			Category:  types.CategoryPlaylistShare,
			Title:     "New Playlist Shared",
			Body:      fmt.Sprintf("%s shared %q with you", sender.Name, playlistName),
			Data:      data,
			Timestamp: time.Now().UTC(),
		}
	}

	data["category"] = string(types.CategoryMessage)
	return &types.NotificationPayload{
		Category:  types.CategoryMessage,
		Title:     "New Message",
		Body:      fmt.Sprintf("%s: %s", sender.Name, msg.Content),
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// ComposePlaylistLike builds the payload for a playlist like. Returns nil when
// the liker owns the playlist; nobody is notified of their own like.
func ComposePlaylistLike(liker types.Actor, playlist *types.Playlist) *types.NotificationPayload {
	if liker.ID == playlist.OwnerID {
		return nil
	}

	return &types.NotificationPayload{
		Category: types.CategoryPlaylistLike,
		Title:    "Playlist Liked",
		Body:     fmt.Sprintf("%s liked your playlist %q", liker.Name, playlist.Name),
		Data: map[string]interface{}{
			"category":     string(types.CategoryPlaylistLike),
			"actorId":      liker.ID,
			"actorName":    liker.Name,
			"actorImage":   liker.ImageURL,
			"playlistId":   playlist.ID,
			"playlistName": playlist.Name,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ComposePlaylistComment builds the payload for a playlist comment. Returns
// nil when the commenter owns the playlist. Comment text longer than 50
// characters is truncated with an ellipsis marker.
func ComposePlaylistComment(commenter types.Actor, playlist *types.Playlist, comment string) *types.NotificationPayload {
	if commenter.ID == playlist.OwnerID {
		return nil
	}

	preview := truncateComment(comment, commentPreviewLimit)

	return &types.NotificationPayload{
		Category: types.CategoryPlaylistComment,
		Title:    "New Comment",
		Body:     fmt.Sprintf("%s commented on %q: %q", commenter.Name, playlist.Name, preview),
		Data: map[string]interface{}{
			"category":     string(types.CategoryPlaylistComment),
			"actorId":      commenter.ID,
			"actorName":    commenter.Name,
			"actorImage":   commenter.ImageURL,
			"playlistId":   playlist.ID,
			"playlistName": playlist.Name,
			"comment":      preview,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ComposeGeneric builds an untyped payload with caller-supplied content. Used
// by the direct send endpoints.
func ComposeGeneric(title, body string, data map[string]interface{}) *types.NotificationPayload {
	if data == nil {
		data = map[string]interface{}{}
	}
	if _, ok := data["category"]; !ok {
		data["category"] = string(types.CategoryGeneric)
	}
	return &types.NotificationPayload{
		Category:  types.CategoryGeneric,
		Title:     title,
		Body:      body,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// truncateComment shortens a comment to limit runes, appending "..." when the
// original was longer.
func truncateComment(comment string, limit int) string {
	runes := []rune(comment)
	if len(runes) <= limit {
		return comment
	}
	return string(runes[:limit]) + "..."
}
