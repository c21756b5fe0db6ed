package main

// @title           Skab Service API
// @version         1.0
// @description     Backend for the Skab messenger: identity, friendships, direct messages and notifications
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skab-service/internal/adapters/kafka"
	"skab-service/internal/api/routes"
	"skab-service/internal/config"
	"skab-service/internal/database"
	"skab-service/internal/events"
	"skab-service/internal/services"
	"skab-service/internal/websocket"
	"skab-service/pkg/logger"
)

func main() {
	log := logger.New("server")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log.Info("Starting skab service")

	redisClient, err := database.NewRedisConnection(&cfg.Redis, logger.New("redis"))
	if err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.URI, logger.New("postgres"))
	if err != nil {
		log.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongo, err := database.NewMongoConnection(&cfg.Mongo)
	if err != nil {
		log.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongo.Close(context.Background())

	minioClient, err := database.NewMinIOClient(&cfg.MinIO)
	if err != nil {
		log.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	bus := events.NewBus(logger.New("events"))
	redisService := services.NewRedisService(redisClient, logger.New("redis"))

	// Kafka mirror is optional: the service runs without a broker.
	if producer, err := kafka.InitKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic); err != nil {
		log.Warn("Kafka unavailable, event mirror disabled", "error", err)
	} else {
		defer producer.Close()
		kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger.New("kafka")).Start(bus)
	}

	hub := websocket.NewHub(redisService, bus, logger.New("websocket"))
	go hub.Run()

	router := routes.NewRouter(hub, bus, redisService, db, mongo, minioClient, cfg, logger.New("api"))
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server stopped")
}
