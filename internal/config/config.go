package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	AI         AIConfig
	Transcript TranscriptConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port        string
	Environment string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the lib/pq connection string. Both the pool and the migration
// runner connect with it.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// AIConfig carries the per-provider API keys. A missing key is not a startup
// failure: the provider factory reports it at call time so partial deployments
// (e.g. Gemini only) keep working.
type AIConfig struct {
	GeminiKey       string
	OpenAIKey       string
	ClaudeKey       string
	GroqKey         string
	DefaultProvider string
}

type TranscriptConfig struct {
	BaseURL  string
	Language string
}

type JWTConfig struct {
	Secret     string
	Expiration int
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION", "86400"))
	rpm, _ := strconv.Atoi(getEnv("RATE_LIMIT_RPM", "10"))
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "3"))
	maxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	maxIdle, _ := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			DBName:       getEnv("DB_NAME", "skillsync"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		AI: AIConfig{
			GeminiKey:       getEnv("GOOGLE_API_KEY", ""),
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			ClaudeKey:       getEnv("CLAUDE_API_KEY", ""),
			GroqKey:         getEnv("GROQ_API_KEY", ""),
			DefaultProvider: getEnv("DEFAULT_AI_PROVIDER", "gemini"),
		},
		Transcript: TranscriptConfig{
			BaseURL:  getEnv("TRANSCRIPT_API_URL", "https://www.youtube.com/api/timedtext"),
			Language: getEnv("TRANSCRIPT_LANGUAGE", "en"),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "dev-only-secret-change-me"),
			Expiration: jwtExp,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: rpm,
			Burst:             burst,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
