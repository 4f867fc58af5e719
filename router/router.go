// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"net/http"
	"time"

	"github.com/MixtapeHQ/mixtape-backend/config"
	"github.com/MixtapeHQ/mixtape-backend/handlers"
	"github.com/MixtapeHQ/mixtape-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Dependencies carries everything the router needs to wire routes.
type Dependencies struct {
	Config              *config.Config
	RedisClient         *redis.Client
	PushTokenHandler    *handlers.PushTokenHandler
	NotificationHandler *handlers.NotificationHandler
	PlaylistHandler     *handlers.PlaylistHandler
	MessageHandler      *handlers.MessageHandler
}

// SetupRouter creates the gin engine with all routes and middleware attached.
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": deps.Config.Server.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(&deps.Config.Server))

	users := v1.Group("/users")
	{
		users.POST("/push-tokens", deps.PushTokenHandler.RegisterPushToken)
		users.GET("/push-tokens", deps.PushTokenHandler.ListPushTokens)
		users.DELETE("/push-tokens/:tokenId", deps.PushTokenHandler.DeletePushToken)
	}

	sendLimiter := middleware.SendRateLimiter(
		deps.RedisClient,
		deps.Config.RateLimit.SendRequestsPerMinute,
		time.Duration(deps.Config.RateLimit.WindowSeconds)*time.Second,
	)

	notifications := v1.Group("/notifications")
	{
		notifications.POST("/send", sendLimiter, deps.NotificationHandler.SendNotification)
		notifications.POST("/send-bulk", sendLimiter, deps.NotificationHandler.SendBulkNotification)
		notifications.GET("/stats", deps.NotificationHandler.GetNotificationStats)
	}

	playlists := v1.Group("/playlists")
	{
		playlists.GET("/shared-with-me", deps.PlaylistHandler.ListSharedWithMe)
		playlists.GET("/:id", deps.PlaylistHandler.GetPlaylist)
	}

	v1.POST("/messages", deps.MessageHandler.SendMessage)

	return r
}
