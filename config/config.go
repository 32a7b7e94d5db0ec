package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds the server configuration
type ServerConfig struct {
	Host string
	Port int
}

// StorageConfig holds the WAL and snapshot configuration
type StorageConfig struct {
	WALPath          string
	WALArchivePath   string
	WALSync          bool
	SnapshotPath     string
	SnapshotInterval time.Duration
	Windows          []string
}

// DatabaseConfig holds the analytics archive configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// KafkaConfig holds the Kafka configuration
type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	ScoresTopic   string
	ConsumerGroup string
	BatchSize     int
	BatchTimeout  int // in seconds
}

// CacheConfig holds the response cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// AppConfig holds the application configuration
type AppConfig struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
}

// NewAppConfig creates a new AppConfig from environment variables
func NewAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Storage: StorageConfig{
			WALPath:          getEnv("LEADERBOARD_WAL_PATH", "./data/wal/scores"),
			WALArchivePath:   getEnv("LEADERBOARD_WAL_ARCHIVE_PATH", "./data/wal/scores.archive"),
			WALSync:          getEnvAsBool("LEADERBOARD_WAL_SYNC", false),
			SnapshotPath:     getEnv("LEADERBOARD_SNAPSHOT_PATH", "./data/snapshot/leaderboard"),
			SnapshotInterval: time.Duration(getEnvAsInt("LEADERBOARD_SNAPSHOT_INTERVAL_MS", 3600000)) * time.Millisecond,
			Windows:          strings.Split(getEnv("LEADERBOARD_WINDOWS", "24h"), ","),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "ringgrank"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:       strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			ScoresTopic:   getEnv("KAFKA_SCORES_TOPIC", "leaderboard-scores"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "score-archiver"),
			BatchSize:     getEnvAsInt("KAFKA_BATCH_SIZE", 5000),
			BatchTimeout:  getEnvAsInt("KAFKA_BATCH_TIMEOUT", 5),
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvAsInt("RESPONSE_CACHE_TTL_MS", 1000)) * time.Millisecond,
		},
	}
}

// Helper functions to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
		log.Printf("Warning: Environment variable %s is not a valid integer, using default", key)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
		log.Printf("Warning: Environment variable %s is not a valid boolean, using default", key)
	}
	return defaultValue
}
