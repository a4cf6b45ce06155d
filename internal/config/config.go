package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string

	// Provider selects the active vision backend: gemini, openai, or claude.
	Provider     string
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string
	ClaudeAPIKey string
	ClaudeModel  string

	// MinConfidence flags detections below this confidence (0-100) as
	// low-confidence. Informational only; completion is never blocked.
	MinConfidence float64

	StorageBackend   string
	StoragePath      string
	AzureAccountName string
	AzureAccountKey  string

	// PhotosBucket is the container generated reports are uploaded to.
	PhotosBucket string

	LogLevel string
	LogFile  string
}

func Load() *Config {
	// Optional .env file; absence is not an error.
	_ = godotenv.Load()

	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "/data/roofscope.db"),
		Provider:         getEnv("AI_PROVIDER", "gemini"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		ClaudeAPIKey:     getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),
		MinConfidence:    getEnvFloat("MIN_CONFIDENCE", 60.0),
		StorageBackend:   getEnv("STORAGE_BACKEND", "local"),
		StoragePath:      getEnv("STORAGE_LOCAL_PATH", "/data/photos"),
		AzureAccountName: getEnv("AZURE_STORAGE_ACCOUNT", ""),
		AzureAccountKey:  getEnv("AZURE_STORAGE_KEY", ""),
		PhotosBucket:     getEnv("PHOTOS_BUCKET", "roofscope-photos"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
