package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/MixtapeHQ/mixtape-backend/config"
	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/MixtapeHQ/mixtape-backend/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the Bearer token and injects the authenticated
// user's ID into both the gin context and the request context.
func AuthMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Warnw("Missing bearer token", "path", c.Request.URL.Path)
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authentication required"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.JwtSecretKey), nil
		})
		if err != nil || !token.Valid {
			log.Warnw("Invalid token", "path", c.Request.URL.Path, "error", err)
			_ = c.Error(apperrors.Unauthorized("invalid_token", "Invalid or expired token"))
			c.Abort()
			return
		}

		userID, err := claims.GetSubject()
		if err != nil || userID == "" {
			_ = c.Error(apperrors.Unauthorized("invalid_token", "Token missing subject"))
			c.Abort()
			return
		}

		c.Set(string(UserIDKey), userID)
		// Propagate onto the request context so services reached without a gin
		// context still see the caller identity.
		ctx := context.WithValue(c.Request.Context(), UserIDKey, userID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
