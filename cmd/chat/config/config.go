package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath string
	Tier         string
	GeminiAPIKey string
	GeminiModel  string
	LogLevel     string
}

// Load reads configuration from the environment, with a .env file as a
// convenience for local runs. Everything has a usable default except the
// Gemini key, whose absence selects the built-in rule-based responder.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return &Config{
		DatabasePath: getEnv("CHAT_DB_PATH", "chat.db"),
		Tier:         getEnv("CHAT_TIER", "free"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
