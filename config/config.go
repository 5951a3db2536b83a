// Package config provides configuration for the chatbot gateway.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the gateway configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Groq (OpenAI-compatible) backend
	GroqBaseURL string
	GroqAPIKey  string
	GroqModel   string

	// Search providers
	SerpAPIKey string

	// Timeouts
	LLMTimeout    time.Duration
	SearchTimeout time.Duration

	// Voice turn generation limits
	VoiceMaxTokens   int
	VoiceTemperature float64
}

// Load loads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8000),
		GroqBaseURL:      getEnv("GROQ_BASE_URL", "https://api.groq.com/openai"),
		GroqAPIKey:       getEnv("GROQ_API_KEY", ""),
		GroqModel:        getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		SerpAPIKey:       getEnv("SERPAPI_API_KEY", ""),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		SearchTimeout:    time.Duration(getEnvInt("SEARCH_TIMEOUT_MS", 10000)) * time.Millisecond,
		VoiceMaxTokens:   getEnvInt("VOICE_MAX_TOKENS", 200),
		VoiceTemperature: 0.7,
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
