package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	ListenAddr       string
	WSListenAddr     string
	StorageBackend   string // "postgres" or "mongo"
	TelegramBotToken string
	JWTSecret        string
	DatabaseURL      string
	DatabaseConfig   DatabaseConfig
	MongoConfig      MongoConfig
	CloudinaryConfig CloudinaryConfig
	AppEnv           string
}

// DatabaseConfig holds the Postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
}

// CloudinaryConfig holds the Cloudinary upload settings.
type CloudinaryConfig struct {
	CloudName    string
	APIKey       string
	APISecret    string
	UploadPreset string
	UploadFolder string
}

// LoadConfig reads .env (when present) and the environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("PGHOST", "localhost"),
		Port:     getEnv("PGPORT", "5432"),
		User:     getEnv("PGUSER", "decktrade_user"),
		Password: getEnv("PGPASSWORD", "decktrade_pass"),
		Name:     getEnv("PGDATABASE", "decktrade"),
		SSLMode:  getEnv("PGSSLMODE", "disable"),
	}

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name, dbConfig.SSLMode)

	cfg := &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		WSListenAddr:     getEnv("WS_LISTEN_ADDR", ":8081"),
		StorageBackend:   getEnv("STORAGE_BACKEND", "postgres"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		DatabaseURL:      dbURL,
		DatabaseConfig:   dbConfig,
		MongoConfig: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "decktrade"),
		},
		CloudinaryConfig: CloudinaryConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
			APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", "decktrade_cards"),
			UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "cards"),
		},
		AppEnv: getEnv("APP_ENV", "production"),
	}

	if cfg.TelegramBotToken == "" || cfg.JWTSecret == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and JWT_SECRET must be set")
	}

	return cfg
}

// getEnv reads an environment variable with a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
