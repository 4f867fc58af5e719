package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.IsTest = true
	m.Run()
}

const registerTokenQuery = `
			INSERT INTO push_tokens (user_id, token, platform)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, token)
			DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()
			RETURNING id, user_id, token, platform, created_at, updated_at`

func TestRegisterToken_Upsert(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	now := time.Now()
	mockPool.ExpectQuery(regexp.QuoteMeta(registerTokenQuery)).
		WithArgs("user-1", "ExponentPushToken[abc]", "ios").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "platform", "created_at", "updated_at"}).
			AddRow("tok-1", "user-1", "ExponentPushToken[abc]", "ios", now, now))

	s := NewPushTokenStore(mockPool)

	pt, err := s.RegisterToken(context.Background(), "user-1", "ExponentPushToken[abc]", types.PlatformIOS)

	require.NoError(t, err)
	assert.Equal(t, "tok-1", pt.ID)
	assert.Equal(t, "user-1", pt.UserID)
	assert.Equal(t, types.PlatformIOS, pt.Platform)
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestRegisterToken_EmptyToken(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	s := NewPushTokenStore(mockPool)

	_, err = s.RegisterToken(context.Background(), "user-1", "   ", types.PlatformIOS)

	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestRegisterToken_UnsupportedPlatform(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	s := NewPushTokenStore(mockPool)

	_, err = s.RegisterToken(context.Background(), "user-1", "ExponentPushToken[abc]", types.Platform("web"))

	assert.ErrorIs(t, err, store.ErrInvalidInput)
}

func TestListTokens(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	now := time.Now()
	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, token, platform, created_at, updated_at`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "platform", "created_at", "updated_at"}).
			AddRow("tok-2", "user-1", "ExponentPushToken[b]", "android", now, now).
			AddRow("tok-1", "user-1", "ExponentPushToken[a]", "ios", now.Add(-time.Hour), now.Add(-time.Hour)))

	s := NewPushTokenStore(mockPool)

	tokens, err := s.ListTokens(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "tok-2", tokens[0].ID, "newest registration first")
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestListTokens_Empty(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, token, platform, created_at, updated_at`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token", "platform", "created_at", "updated_at"}))

	s := NewPushTokenStore(mockPool)

	tokens, err := s.ListTokens(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestDeleteToken(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM push_tokens WHERE id = $1 AND user_id = $2`)).
		WithArgs("tok-1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	s := NewPushTokenStore(mockPool)

	require.NoError(t, s.DeleteToken(context.Background(), "user-1", "tok-1"))
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestDeleteToken_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM push_tokens WHERE id = $1 AND user_id = $2`)).
		WithArgs("tok-unknown", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	s := NewPushTokenStore(mockPool)

	err = s.DeleteToken(context.Background(), "user-1", "tok-unknown")

	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvalidateToken(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM push_tokens WHERE token = $1`)).
		WithArgs("ExponentPushToken[stale]").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	s := NewPushTokenStore(mockPool)

	require.NoError(t, s.InvalidateToken(context.Background(), "ExponentPushToken[stale]"))
	require.NoError(t, mockPool.ExpectationsWereMet())
}

func TestInvalidateToken_AlreadyGone(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectExec(regexp.QuoteMeta(`DELETE FROM push_tokens WHERE token = $1`)).
		WithArgs("ExponentPushToken[gone]").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	s := NewPushTokenStore(mockPool)

	require.NoError(t, s.InvalidateToken(context.Background(), "ExponentPushToken[gone]"),
		"deleting an absent token is not an error")
}
