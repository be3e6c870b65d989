package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	CORSOrigins string

	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AnalysisTTL   time.Duration

	MirrorPath string

	GeminiAPIKey string
	GeminiModel  string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Port:        getEnvString("PORT", "8080"),
		CORSOrigins: getEnvString("CORS_ORIGINS", "*"),

		PostgresDSN: getEnvString("POSTGRES_DSN",
			"host=localhost user=postgres password=password dbname=dejargonator port=5432 sslmode=disable"),

		RedisAddr:     getEnvString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnvString("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		AnalysisTTL:   getEnvDuration("ANALYSIS_CACHE_TTL", 24*time.Hour),

		MirrorPath: getEnvString("MIRROR_PATH", "dejargonator-mirror.sqlite"),

		GeminiAPIKey: getEnvString("GEMINI_API_KEY", ""),
		GeminiModel:  getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	return config, nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
