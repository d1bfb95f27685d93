package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config is the environment-driven server configuration.
type Config struct {
	Env       string
	DBKind    string // sqlite or postgres
	DBPath    string // sqlite file path
	DBHost    string
	DBPort    string
	DBName    string
	DBUser    string
	DBPass    string
	RedisAddr string
	// QueueBackend selects the publish event transport: redis or kafka.
	QueueBackend string
	KafkaBrokers string
	// Compression tag applied to newly written pages.
	Compression string
	HTTPPort    string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	}

	return &Config{
		Env:          env("ENV", "development"),
		DBKind:       env("DB_KIND", "sqlite"),
		DBPath:       env("DB_PATH", "./.tmp/storefront.db"),
		DBHost:       env("DB_HOST", "localhost"),
		DBPort:       env("DB_PORT", "5432"),
		DBName:       env("DB_NAME", "storefront"),
		DBUser:       env("DB_USER", "postgres"),
		DBPass:       env("DB_PASS", ""),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		QueueBackend: env("QUEUE_BACKEND", "redis"),
		KafkaBrokers: env("KAFKA_BROKERS", "localhost:9092"),
		Compression:  env("PAGE_COMPRESSION", ""),
		HTTPPort:     env("HTTP_PORT", "4030"),
	}
}

// GetDB opens the configured database connection.
func GetDB(cnf *Config) *gorm.DB {
	var db *gorm.DB
	var err error

	switch cnf.DBKind {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cnf.DBHost, cnf.DBPort, cnf.DBUser, cnf.DBPass, cnf.DBName)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		if mkErr := os.MkdirAll("./.tmp", os.ModePerm); mkErr != nil {
			logrus.Fatalf("error creating sqlite directory: %v", mkErr)
		}
		db, err = gorm.Open(sqlite.Open(cnf.DBPath), &gorm.Config{})
	}

	if err != nil {
		logrus.Fatalf("error connecting to database: %v", err)
	}

	return db
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
