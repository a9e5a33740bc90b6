package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	StoreDriver string

	// Postgres
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// DynamoDB
	DynamoDBEndpointURL string
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	BoardsTable         string
	ColumnsTable        string
	CardsTable          string

	OrderingMode        string
	OrderingMaxAttempts int

	// Background order check; zero disables it
	SweepInterval   time.Duration
	SweepAutoRepair bool

	SeedData bool

	NatsURL   string
	NatsToken string

	CORSOrigins []string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8000"),
		GinMode:   getEnv("GIN_MODE", "release"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", "postgres"),
		DBName:      getEnv("DB_NAME", "kanladin"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		DynamoDBEndpointURL: getEnv("DYNAMODB_ENDPOINT_URL", "http://localhost:8001"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", "dummy"),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", "dummy"),
		BoardsTable:         getEnv("DYNAMODB_BOARDS_TABLE", "kanladin-boards"),
		ColumnsTable:        getEnv("DYNAMODB_COLUMNS_TABLE", "kanladin-columns"),
		CardsTable:          getEnv("DYNAMODB_CARDS_TABLE", "kanladin-cards"),

		OrderingMode:        strings.ToLower(getEnv("ORDERING_MODE", "atomic")),
		OrderingMaxAttempts: getEnvInt("ORDERING_MAX_ATTEMPTS", 3),

		SweepInterval:   getEnvDuration("ORDER_SWEEP_INTERVAL", 0),
		SweepAutoRepair: getEnvBool("ORDER_SWEEP_REPAIR", false),

		SeedData: getEnvBool("SEED_DATA", false),

		NatsURL:   getEnv("NATS_URL", ""),
		NatsToken: getEnv("NATS_TOKEN", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}
}

// PostgresDSN returns DATABASE_URL when set, otherwise a DSN built from the DB_* fields
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
