package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/MixtapeHQ/mixtape-backend/internal/store"
	"github.com/MixtapeHQ/mixtape-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure UserStore implements store.UserStore
var _ store.UserStore = (*UserStore)(nil)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db DB
}

// NewUserStore creates a new UserStore instance
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

// GetUser returns the user's display identity or store.ErrNotFound.
func (s *UserStore) GetUser(ctx context.Context, userID string) (*types.User, error) {
	query := `
		SELECT id, display_name, COALESCE(image_url, ''), created_at
		FROM users
		WHERE id = $1`

	u := &types.User{}
	err := s.db.QueryRow(ctx, query, userID).Scan(&u.ID, &u.DisplayName, &u.ImageURL, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return u, nil
}
