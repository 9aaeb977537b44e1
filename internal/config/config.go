package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Store        string
	MongoURI     string
	DatabaseName string

	JWTSecretKey       string
	TokenExpireMinutes int

	AdminAPIKey string

	EmailHost         string
	EmailPort         int
	EmailUsername     string
	EmailPassword     string
	EmailFrom         string
	ActivationURLBase string

	GinMode string
	Port    string
}

// Load reads the configuration from the environment, honoring a local .env
// file when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Store:        getEnv("STORE", "mongo"),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("DATABASE_NAME", "time_tracker"),

		JWTSecretKey:       getEnv("JWT_SECRET_KEY", "default-secret-key-change-me"),
		TokenExpireMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		EmailHost:         getEnv("EMAIL_HOST", ""),
		EmailPort:         getEnvInt("EMAIL_PORT", 587),
		EmailUsername:     getEnv("EMAIL_USERNAME", ""),
		EmailPassword:     getEnv("EMAIL_PASSWORD", ""),
		EmailFrom:         getEnv("EMAIL_FROM", "noreply@localhost"),
		ActivationURLBase: getEnv("ACTIVATION_URL_BASE", "http://localhost:3000/activate-account"),

		GinMode: getEnv("GIN_MODE", "debug"),
		Port:    getEnv("PORT", "8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
