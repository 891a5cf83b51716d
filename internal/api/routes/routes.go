package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chat-presence/internal/api/handlers"
	"chat-presence/internal/api/middleware"
	"chat-presence/internal/chat"
	"chat-presence/internal/directory"
	"chat-presence/internal/presence"
	"chat-presence/internal/websocket"
)

// Dependencies carries everything the router needs wired up.
type Dependencies struct {
	Facade      *presence.QueryFacade
	Users       directory.Store
	WSHub       *websocket.Hub
	ChatHub     *chat.Hub
	RedisClient *redis.Client
	JWTSecret   string
	Logger      *slog.Logger
}

// NewRouter assembles the gin engine with the full middleware chain
// and all presence routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.LogApi())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.NewAuthMiddleware(deps.JWTSecret)
	limiter := middleware.NewRateLimiter(deps.RedisClient, deps.Logger)

	wsHandler := handlers.NewWebSocketHandler(deps.WSHub, deps.ChatHub)
	adminHandler := handlers.NewAdminHandler(deps.Facade, deps.Users)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/ws", auth.WSAuth(), wsHandler.Connect)

		admin := v1.Group("/admin")
		admin.Use(auth.RequireAuth(), auth.RequireAdmin(), limiter.Limit(60, time.Minute))
		{
			admin.GET("/online-users", adminHandler.GetOnlineUsers)
			admin.GET("/online-users/detailed", adminHandler.GetOnlineUsersDetailed)
			admin.GET("/users/status/:userId", adminHandler.GetUserStatus)
			admin.GET("/stats", adminHandler.GetStats)
		}
	}

	return router
}
