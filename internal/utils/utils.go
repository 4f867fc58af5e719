package utils

import (
	"context"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/middleware"
)

// GetUserIDFromContext extracts the authenticated user ID from the context.
// Shared utility function for all handlers and services.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	if userID, ok := ctx.Value(middleware.UserIDKey).(string); ok && userID != "" {
		return userID, nil
	}
	return "", apperrors.Unauthorized("missing_auth", "User not authenticated")
}
