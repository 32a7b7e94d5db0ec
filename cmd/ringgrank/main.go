package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ringg-play/ringgrank/api"
	"github.com/ringg-play/ringgrank/config"
	_ "github.com/ringg-play/ringgrank/docs"
	"github.com/ringg-play/ringgrank/internal/db"
	"github.com/ringg-play/ringgrank/internal/logging"
	"github.com/ringg-play/ringgrank/internal/models"
	"github.com/ringg-play/ringgrank/internal/mq"
	"github.com/ringg-play/ringgrank/internal/store"
)

// @title        Ringgrank Leaderboard API
// @version      1.0
// @description  Single-node real-time leaderboard engine with durable WAL + snapshot persistence.
// @BasePath     /
func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}
	logging.Init()

	log.Println("Starting ringgrank leaderboard service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.NewAppConfig()

	manager := setupManager(cfg)
	defer func() {
		if err := manager.Shutdown(); err != nil {
			log.Printf("Manager shutdown error: %v", err)
		}
	}()
	queries := store.NewQueryService(manager)

	var publisher api.Publisher
	if cfg.Kafka.Enabled {
		pgPool, pgRepo := setupPostgres(cfg)
		defer pgPool.Close()

		producer, consumer := setupKafka(cfg, pgRepo, ctx)
		defer producer.Close()
		defer consumer.Close()
		publisher = producer
	}

	router := setupRouter(cfg, manager, queries, publisher)
	server := setupServer(cfg, router)

	handleGracefulShutdown(server, cancel)
	startServer(cfg, server)
}

func setupManager(cfg *config.AppConfig) *store.Manager {
	log.Println("Initializing leaderboard manager with WAL + snapshot persistence")

	windows := make(map[string]time.Duration, len(cfg.Storage.Windows))
	for _, key := range cfg.Storage.Windows {
		duration, err := models.ParseWindowDuration(key)
		if err != nil {
			log.Fatalf("Invalid configured window %q: %v", key, err)
		}
		windows[key] = duration
	}

	manager, err := store.NewManager(store.Options{
		WALPath:          cfg.Storage.WALPath,
		WALArchivePath:   cfg.Storage.WALArchivePath,
		WALSync:          cfg.Storage.WALSync,
		SnapshotPath:     cfg.Storage.SnapshotPath,
		SnapshotInterval: cfg.Storage.SnapshotInterval,
		Windows:          windows,
	})
	if err != nil {
		log.Fatalf("Failed to recover leaderboard state: %v", err)
	}
	return manager
}

func setupPostgres(cfg *config.AppConfig) (*sql.DB, *db.PostgresRepository) {
	log.Println("Initializing PostgreSQL archive connection")
	pgPool, err := db.CreatePool(cfg)
	if err != nil {
		log.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}

	pgRepo, err := db.NewPostgresRepository(pgPool)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL repository: %v", err)
	}
	log.Println("PostgreSQL connection established")

	return pgPool, pgRepo
}

func setupKafka(cfg *config.AppConfig, pgRepo *db.PostgresRepository, ctx context.Context) (*mq.KafkaProducer, *mq.KafkaConsumer) {
	log.Println("Initializing Kafka producer")
	producer, err := mq.NewKafkaProducer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Kafka producer: %v", err)
	}

	log.Println("Initializing Kafka consumer")
	consumer, err := mq.NewKafkaConsumer(cfg, pgRepo)
	if err != nil {
		log.Fatalf("Failed to initialize Kafka consumer: %v", err)
	}

	consumer.StartConsumer(ctx)
	log.Println("Kafka consumer started")

	return producer, consumer
}

func setupRouter(cfg *config.AppConfig, manager *store.Manager, queries *store.QueryService, publisher api.Publisher) *gin.Engine {
	router := gin.Default()
	responseCache := persistence.NewInMemoryStore(cfg.Cache.TTL)
	api.ConfigureRoutes(router, manager, queries, publisher, responseCache, cfg.Cache.TTL)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return router
}

func setupServer(cfg *config.AppConfig, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}
}

func handleGracefulShutdown(server *http.Server, cancel context.CancelFunc) {
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("Shutdown signal received, stopping server gracefully...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}

		log.Println("Server gracefully stopped")
	}()
}

func startServer(cfg *config.AppConfig, server *http.Server) {
	log.Printf("Starting server on http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Head to http://%s:%d/swagger/index.html to see the API documentation", cfg.Server.Host, cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
