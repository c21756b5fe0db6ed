package routes

import (
	"time"

	"skab-service/internal/api/handlers"
	"skab-service/internal/api/middleware"
	"skab-service/internal/config"
	"skab-service/internal/database"
	"skab-service/internal/events"
	"skab-service/internal/repositories/mongodb"
	"skab-service/internal/repositories/postgres"
	"skab-service/internal/service"
	"skab-service/internal/services"
	"skab-service/internal/websocket"
	"skab-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	authHandler         *handlers.AuthHandler
	userHandler         *handlers.UserHandler
	friendHandler       *handlers.FriendHandler
	messageHandler      *handlers.MessageHandler
	notificationHandler *handlers.NotificationHandler
	adminHandler        *handlers.AdminHandler
	presenceHandler     *handlers.PresenceHandler
	rateLimitMW         *middleware.RateLimitMiddleware
	authMW              *middleware.AuthMiddleware
}

func NewRouter(
	hub *websocket.Hub,
	bus *events.Bus,
	redisService *services.RedisService,
	db *gorm.DB,
	mongo *database.MongoDB,
	minioClient *database.MinIOClient,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.RequestLogger())

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	relationshipRepo := postgres.NewRelationshipRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	messageRepo := mongodb.NewMessageRepository(mongo)

	// Services
	identityService := service.NewIdentityService(userRepo, log)
	authService := service.NewAuthService(userRepo, identityService, cfg.JWT.Secret, cfg.JWT.ExpirationTime, log)
	relationshipService := service.NewRelationshipService(relationshipRepo, userRepo, bus, log)
	conversationService := service.NewConversationService(messageRepo, relationshipRepo, userRepo, bus, log)
	notificationService := service.NewNotificationService(notificationRepo, bus, log)
	badgeService := service.NewBadgeService(userRepo, log)

	// Wire the fanout into the event bus before any request can publish.
	notificationService.Start()

	rateLimitMW := middleware.NewRateLimitMiddleware(redisService)
	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	return &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(hub, log),
		authHandler:         handlers.NewAuthHandler(authService),
		userHandler:         handlers.NewUserHandler(identityService, minioClient),
		friendHandler:       handlers.NewFriendHandler(relationshipService),
		messageHandler:      handlers.NewMessageHandler(conversationService),
		notificationHandler: handlers.NewNotificationHandler(notificationService),
		adminHandler:        handlers.NewAdminHandler(badgeService),
		presenceHandler:     handlers.NewPresenceHandler(redisService),
		rateLimitMW:         rateLimitMW,
		authMW:              authMW,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// Public auth routes, rate limited by IP
	auth := api.Group("/auth")
	auth.Use(r.rateLimitMW.RateLimitIP(20, time.Minute))
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
	}

	// WebSocket endpoint authenticates via query token
	api.GET("/ws",
		r.authMW.RequireAuthToken(),
		r.wsHandler.HandleWebSocket,
	)

	// Authenticated routes
	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	{
		authed.PUT("/auth/password", r.authHandler.ChangePassword)

		users := authed.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/me", r.userHandler.GetMe)
			users.PUT("/me", r.userHandler.UpdateMe)
			users.DELETE("/me", r.userHandler.DeleteMe)
			users.POST("/me/avatar", r.userHandler.UploadAvatar)
			users.GET("/search", r.userHandler.SearchUsers)
			users.GET("/:id", r.userHandler.GetUser)
		}

		friends := authed.Group("/friends")
		friends.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			friends.GET("", r.friendHandler.ListFriends)
			friends.DELETE("/:id", r.friendHandler.RemoveFriend)
			friends.GET("/requests/incoming", r.friendHandler.ListIncomingRequests)
			friends.GET("/requests/outgoing", r.friendHandler.ListOutgoingRequests)
			friends.POST("/requests/:id", r.friendHandler.SendRequest)
			friends.DELETE("/requests/:id", r.friendHandler.CancelRequest)
			friends.POST("/requests/:id/accept", r.friendHandler.AcceptRequest)
			friends.POST("/requests/:id/decline", r.friendHandler.DeclineRequest)
		}

		blocks := authed.Group("/blocks")
		blocks.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			blocks.GET("", r.friendHandler.ListBlocks)
			blocks.POST("/:id", r.friendHandler.BlockUser)
			blocks.DELETE("/:id", r.friendHandler.UnblockUser)
		}

		conversations := authed.Group("/conversations")
		conversations.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			conversations.GET("/:id/messages", r.messageHandler.GetHistory)
			conversations.POST("/:id/messages", r.messageHandler.SendMessage)
		}
		authed.DELETE("/messages/:messageId", r.rateLimitMW.RateLimit(200, time.Minute), r.messageHandler.DeleteMessage)

		notifications := authed.Group("/notifications")
		notifications.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			notifications.GET("", r.notificationHandler.ListRecent)
			notifications.POST("/read", r.notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", r.notificationHandler.MarkRead)
		}

		presence := authed.Group("/presence")
		presence.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			presence.GET("/online", r.presenceHandler.GetOnlineUsers)
			presence.GET("/:id", r.presenceHandler.GetUserPresence)
		}

		admin := authed.Group("/admin")
		admin.Use(r.rateLimitMW.RateLimit(50, time.Minute))
		{
			admin.PUT("/users/:id/badges", r.adminHandler.AssignBadges)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
