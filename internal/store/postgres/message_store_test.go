package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createMessageQuery = `
			INSERT INTO messages (from_id, to_id, content, playlist_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`

func TestCreateMessage(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	playlistID := "pl-1"
	now := time.Now()
	mockPool.ExpectQuery(regexp.QuoteMeta(createMessageQuery)).
		WithArgs("user-1", "user-2", "check this out", &playlistID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("msg-1", now))

	s := NewMessageStore(mockPool)

	msg, err := s.CreateMessage(context.Background(), "user-1", "user-2", "check this out", &playlistID)

	require.NoError(t, err)
	assert.Equal(t, "msg-1", msg.ID)
	assert.Equal(t, "user-1", msg.FromID)
	assert.Equal(t, "user-2", msg.ToID)
	require.NotNil(t, msg.PlaylistID)
	assert.Equal(t, "pl-1", *msg.PlaylistID)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestCreateMessage_WithoutPlaylist(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(createMessageQuery)).
		WithArgs("user-1", "user-2", "hello", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("msg-2", time.Now()))

	s := NewMessageStore(mockPool)

	msg, err := s.CreateMessage(context.Background(), "user-1", "user-2", "hello", nil)

	require.NoError(t, err)
	assert.Nil(t, msg.PlaylistID)
	assert.False(t, msg.HasPlaylist())
}

func TestCreateMessage_UnknownRecipient(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(createMessageQuery)).
		WithArgs("user-1", "ghost", "hello", (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})

	s := NewMessageStore(mockPool)

	_, err = s.CreateMessage(context.Background(), "user-1", "ghost", "hello", nil)

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlaylistSharedWith(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs("user-2", "pl-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	s := NewMessageStore(mockPool)

	shared, err := s.PlaylistSharedWith(context.Background(), "user-2", "pl-1")

	require.NoError(t, err)
	assert.True(t, shared)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListPlaylistShares(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	now := time.Now()
	cols := []string{"id", "from_id", "display_name", "image_url", "content", "created_at", "p_id", "p_name"}
	mockPool.ExpectQuery(regexp.QuoteMeta(`FROM messages m`)).
		WithArgs("user-2").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("msg-2", "user-1", "Alice", "", "second share", now, "pl-1", "Roadtrip").
			AddRow("msg-1", "user-1", "Alice", "", "first share", now.Add(-time.Hour), "pl-1", "Roadtrip"))

	s := NewMessageStore(mockPool)

	shares, err := s.ListPlaylistShares(context.Background(), "user-2")

	require.NoError(t, err)
	require.Len(t, shares, 2, "each share message is its own entry")
	assert.Equal(t, "msg-2", shares[0].MessageID, "newest message first")
	assert.Equal(t, "Roadtrip", shares[0].PlaylistName)
	assert.Equal(t, "Alice", shares[1].SenderName)
}
