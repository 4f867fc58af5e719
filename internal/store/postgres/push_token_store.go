package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Ensure PushTokenStore implements store.PushTokenStore
var _ store.PushTokenStore = (*PushTokenStore)(nil)

// PushTokenStore implements store.PushTokenStore using PostgreSQL.
type PushTokenStore struct {
	db DB
}

// NewPushTokenStore creates a new PushTokenStore instance
func NewPushTokenStore(db DB) *PushTokenStore {
	return &PushTokenStore{db: db}
}

// RegisterToken upserts a push token registration for a user. The
// (user_id, token) pair is unique; a re-registration of the same pair updates
// platform and refresh timestamp in place. The upsert runs through
// ON CONFLICT, so a racing duplicate insert converges on a single row with
// last-write-wins semantics instead of surfacing a uniqueness violation.
func (s *PushTokenStore) RegisterToken(ctx context.Context, userID, token string, platform types.Platform) (*types.PushToken, error) {
	log := logger.GetLogger()

	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("empty token: %w", store.ErrInvalidInput)
	}
	if !platform.Valid() {
		return nil, fmt.Errorf("unsupported platform %q: %w", platform, store.ErrInvalidInput)
	}

	query := `
		INSERT INTO push_tokens (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token)
		DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()
		RETURNING id, user_id, token, platform, created_at, updated_at`

	pt := &types.PushToken{}
	err := s.db.QueryRow(ctx, query, userID, token, string(platform)).Scan(
		&pt.ID,
		&pt.UserID,
		&pt.Token,
		&pt.Platform,
		&pt.CreatedAt,
		&pt.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			// Registration for a user that doesn't exist
			return nil, fmt.Errorf("unknown user %s: %w", userID, store.ErrNotFound)
		}
		return nil, fmt.Errorf("error registering push token: %w", err)
	}

	log.Infow("Registered push token",
		"userID", userID,
		"platform", platform,
		"token", logger.MaskToken(token))
	return pt, nil
}

// ListTokens returns all tokens for a user, newest first.
func (s *PushTokenStore) ListTokens(ctx context.Context, userID string) ([]*types.PushToken, error) {
	query := `
		SELECT id, user_id, token, platform, created_at, updated_at
		FROM push_tokens
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing push tokens: %w", err)
	}
	defer rows.Close()

	tokens := []*types.PushToken{}
	for rows.Next() {
		pt := &types.PushToken{}
		if err := rows.Scan(&pt.ID, &pt.UserID, &pt.Token, &pt.Platform, &pt.CreatedAt, &pt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning push token: %w", err)
		}
		tokens = append(tokens, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading push tokens: %w", err)
	}

	return tokens, nil
}

// DeleteToken removes a token by id if it belongs to the given user.
func (s *PushTokenStore) DeleteToken(ctx context.Context, userID, tokenID string) error {
	query := `DELETE FROM push_tokens WHERE id = $1 AND user_id = $2`

	cmdTag, err := s.db.Exec(ctx, query, tokenID, userID)
	if err != nil {
		return fmt.Errorf("error deleting push token: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}

	return nil
}

// InvalidateToken removes every registration of a token the provider reported
// as permanently invalid. No error when the token is already gone.
func (s *PushTokenStore) InvalidateToken(ctx context.Context, token string) error {
	query := `DELETE FROM push_tokens WHERE token = $1`

	_, err := s.db.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("error invalidating push token: %w", err)
	}

	logger.GetLogger().Infow("Invalidated push token", "token", logger.MaskToken(token))
	return nil
}
