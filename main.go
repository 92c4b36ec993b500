package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/conversation"
	"messenger-service/internal/db"
	"messenger-service/internal/feed"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/relationship"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/tracing"
	"messenger-service/internal/ws"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := tracing.Setup(context.Background(), "messenger-service", os.Getenv("OTLP_ENDPOINT"))
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "messenger_events"))
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	emitter := telemetry.NewAuditEmitter(publisher, getEnv("AUDIT_ROUTING_KEY", "audit.messenger"), "messenger-service", getEnv("ENVIRONMENT", "dev"))

	wsPublisher, err := observability.NewAMQPPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "messenger_events"))
	if err == nil {
		observability.SetPublisher(wsPublisher)
		defer wsPublisher.Close()
	}

	// The feed hubs and the repositories reference each other: repositories
	// notify the hubs after writes, the hubs reload through the
	// repositories' snapshot queries.
	feeds := &feed.Feeds{}
	messageRepo := repositories.NewMessageRepo(database, feeds)
	friendRepo := repositories.NewFriendRepo(database, feeds)
	profileRepo := repositories.NewProfileRepo(database)

	feeds.Messages = feed.NewHub(feed.TableMessages, messageRepo.Snapshot)
	feeds.Requests = feed.NewHub(feed.TableFriendRequests, friendRepo.SnapshotRequests)
	feeds.Friendships = feed.NewHub(feed.TableFriendships, friendRepo.SnapshotFriendships)

	conversationSvc := conversation.NewService(messageRepo, profileRepo)
	relationshipSvc := relationship.NewService(friendRepo)

	verifier := auth.NewJWTVerifier(getEnv("JWT_SECRET", "dev-secret"))

	hub := ws.NewHub()
	defer hub.CloseAll()

	conversationHandler := handlers.NewConversationHandler(conversationSvc)
	friendHandler := handlers.NewFriendHandler(relationshipSvc, emitter)
	conversationWS := ws.NewConversationWebSocketHandler(hub, feeds.Messages, conversationSvc, verifier)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/conversations", authMiddleware, conversationHandler.List)
	router.GET("/conversations/:counterpart_id/messages", authMiddleware, conversationHandler.History)
	router.POST("/conversations/:counterpart_id/read", authMiddleware, conversationHandler.MarkRead)
	router.POST("/messages", authMiddleware, conversationHandler.Send)

	router.GET("/friends/status/:user_id", authMiddleware, friendHandler.Status)
	router.GET("/friends/requests", authMiddleware, friendHandler.ListIncoming)
	router.POST("/friends/requests", authMiddleware, friendHandler.SendRequest)
	router.DELETE("/friends/requests/:receiver_id", authMiddleware, friendHandler.CancelRequest)
	router.POST("/friends/requests/:id/accept", authMiddleware, friendHandler.AcceptRequest)
	router.POST("/friends/requests/:id/decline", authMiddleware, friendHandler.DeclineRequest)
	router.DELETE("/friendships/:friend_id", authMiddleware, friendHandler.Unfriend)

	router.GET("/ws/conversations", conversationWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, emitter, os.Getenv("DEBUG_ROUTES") == "true")

	port := getEnv("PORT", "8086")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
