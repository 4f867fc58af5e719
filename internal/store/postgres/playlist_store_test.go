package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlaylist(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	now := time.Now()
	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM playlists`)).
		WithArgs("pl-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "name", "created_at", "updated_at"}).
			AddRow("pl-1", "owner-1", "Roadtrip", now, now))

	s := NewPlaylistStore(mockPool)

	playlist, err := s.GetPlaylist(context.Background(), "pl-1")

	require.NoError(t, err)
	assert.Equal(t, "Roadtrip", playlist.Name)
	assert.Equal(t, "owner-1", playlist.OwnerID)
}

func TestGetPlaylist_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM playlists`)).
		WithArgs("gone").
		WillReturnError(pgx.ErrNoRows)

	s := NewPlaylistStore(mockPool)

	_, err = s.GetPlaylist(context.Background(), "gone")

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetSongs_PositionOrder(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM playlist_songs`)).
		WithArgs("pl-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "artist", "position"}).
			AddRow("s1", "Opening Track", "A", 0).
			AddRow("s2", "Closer", "B", 1))

	s := NewPlaylistStore(mockPool)

	songs, err := s.GetSongs(context.Background(), "pl-1")

	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, 0, songs[0].Position)
	assert.Equal(t, "Closer", songs[1].Title)
}

func TestGetUser(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "display_name", "image_url", "created_at"}).
			AddRow("user-1", "Alice", "https://img.example/alice.png", time.Now()))

	s := NewUserStore(mockPool)

	user, err := s.GetUser(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "Alice", user.DisplayName)
	actor := user.Actor()
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, "Alice", actor.Name)
}

func TestGetUser_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	s := NewUserStore(mockPool)

	_, err = s.GetUser(context.Background(), "ghost")

	assert.ErrorIs(t, err, store.ErrNotFound)
}
