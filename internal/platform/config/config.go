package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "protekt/pkg/platform/strings"
)

// Config is the process configuration assembled from the environment.
type Config struct {
	Env      string
	LogLevel string
	Server   Server
	Database Database
	Storage  Storage
	Kafka    Kafka
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

// Database configures the PostgreSQL pool. An empty URL selects in-memory stores.
type Database struct {
	URL          string
	MaxOpenConns int
	TxTimeout    time.Duration
}

// Storage configures object storage. An empty Bucket selects in-memory storage.
type Storage struct {
	Bucket          string
	Region          string
	Endpoint        string
	BasePath        string
	AccessKeyID     string
	SecretAccessKey string
	DocumentURLTTL  time.Duration
}

// Kafka configures domain event publishing. No brokers disables publishing.
type Kafka struct {
	Brokers []string
	Topic   string
}

// LoadDotEnv merges the first readable file into the process environment
// without overriding variables that are already set.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			return
		}
	}
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, err
	}
	txTimeout, err := durationEnv("DB_TX_TIMEOUT", 5*time.Second)
	if err != nil {
		return Config{}, err
	}
	urlTTL, err := durationEnv("DOCUMENT_URL_TTL", 15*time.Minute)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Env:      getEnv("PROTEKT_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: Server{
			Addr: getEnv("PROTEKT_ADDR", ":8080"),
		},
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: maxOpen,
			TxTimeout:    txTimeout,
		},
		Storage: Storage{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			BasePath:        getEnv("S3_BASE_PATH", "protekt"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			DocumentURLTTL:  urlTTL,
		},
		Kafka: Kafka{
			Brokers: pstrings.DedupeAndTrim(strings.Split(os.Getenv("KAFKA_BROKERS"), ",")),
			Topic:   getEnv("KAFKA_TOPIC", "protekt.domain-events"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
