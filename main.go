package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/omarionnn/mom-app/internal/cache"
	"github.com/omarionnn/mom-app/internal/config"
	"github.com/omarionnn/mom-app/internal/db"
	"github.com/omarionnn/mom-app/internal/handlers"
	"github.com/omarionnn/mom-app/internal/middleware"
	"github.com/omarionnn/mom-app/internal/observability"
	"github.com/omarionnn/mom-app/internal/rabbitmq"
	"github.com/omarionnn/mom-app/internal/repositories"
	"github.com/omarionnn/mom-app/internal/telemetry"
	"github.com/omarionnn/mom-app/internal/ws"
)

const serviceName = "mom-app"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	shutdownTracer, err := telemetry.InitTracer(context.Background(), serviceName, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.events", serviceName, cfg.Server.Env)

	if cfg.AMQP.URL != "" {
		eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Printf("event publisher disabled: %v", err)
		} else {
			observability.SetPublisher(eventPublisher)
			defer eventPublisher.Close()
		}
	}

	// Redis is optional; without it unread counts fall back to the database.
	var unreadCache cache.UnreadCache
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Printf("redis unavailable, unread cache disabled: %v", err)
		} else {
			unreadCache = cache.NewRedisUnreadCache(redisClient)
			defer redisClient.Close()
		}
	}

	profileRepo := repositories.NewProfileRepo(database)
	swipeRepo := repositories.NewSwipeRepo(database)
	matchRepo := repositories.NewMatchRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	groupMessageRepo := repositories.NewGroupMessageRepo(database)

	hub := ws.NewHub()

	profileHandler := handlers.NewProfileHandler(profileRepo, audit)
	matchHandler := handlers.NewMatchHandler(profileRepo, swipeRepo, matchRepo, unreadCache, hub, audit)
	conversationHandler := handlers.NewConversationHandler(matchRepo, messageRepo, profileRepo, unreadCache, hub, audit)
	groupHandler := handlers.NewGroupHandler(groupRepo, groupMessageRepo, profileRepo, hub, audit)

	conversationWS := ws.NewConversationWebSocketHandler(hub, matchRepo, cfg.JWT.Secret)
	groupWS := ws.NewGroupWebSocketHandler(hub, groupRepo, cfg.JWT.Secret)
	notificationsWS := ws.NewNotificationsWebSocketHandler(hub, cfg.JWT.Secret)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterValidators()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMiddleware := middleware.AuthMiddleware(cfg.JWT.Secret)

	router.GET("/profile", authMiddleware, profileHandler.GetProfile)
	router.PUT("/profile", authMiddleware, profileHandler.UpsertProfile)

	router.GET("/candidates", authMiddleware, matchHandler.GetCandidates)
	router.POST("/swipes", authMiddleware, matchHandler.RecordSwipe)
	router.DELETE("/matches/:user_id", authMiddleware, matchHandler.Unmatch)

	router.GET("/conversations", authMiddleware, conversationHandler.ListConversations)
	router.GET("/conversations/unread", authMiddleware, conversationHandler.GetUnreadCount)
	router.GET("/conversations/:user_id/messages", authMiddleware, conversationHandler.GetThreadMessages)
	router.POST("/conversations/:user_id/read", authMiddleware, conversationHandler.MarkThreadRead)
	router.POST("/messages", authMiddleware, conversationHandler.SendMessage)

	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.POST("/groups/:group_id/join", authMiddleware, groupHandler.JoinGroup)
	router.DELETE("/groups/:group_id/membership", authMiddleware, groupHandler.LeaveGroup)
	router.GET("/groups/:group_id/messages", authMiddleware, groupHandler.GetGroupMessages)
	router.POST("/groups/:group_id/messages", authMiddleware, groupHandler.PostGroupMessage)
	router.DELETE("/groups/:group_id/messages/:message_id", authMiddleware, groupHandler.DeleteGroupMessage)

	router.GET("/ws/conversations/:match_id", conversationWS.Handle)
	router.GET("/ws/groups/:group_id", groupWS.Handle)
	router.GET("/ws/notifications", notificationsWS.Handle)

	handlers.RegisterDebugRoutes(router, audit, hub, cfg.Debug)

	// Read/write timeouts stay off the server so websocket connections
	// are not cut; handlers bound their own work via request contexts.
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}
