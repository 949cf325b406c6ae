package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	GinMode       string
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitMQURI   string
	EventExchange string
	PaymentQueue  string
	JWTSecret     string

	// External assessment providers
	SpeechBaseURL string
	SpeechAPIKey  string
	SpeechTimeout time.Duration
	RubricBaseURL string
	RubricAPIKey  string
	RubricModel   string
	RubricTimeout time.Duration

	// Rate limiting on scoring routes
	RateLimitPerMinute int
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "practice_service"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RabbitMQURI:   getEnv("RABBITMQ_URI", ""),
		EventExchange: getEnv("RABBITMQ_EXCHANGE", "practice.events"),
		PaymentQueue:  getEnv("RABBITMQ_PAYMENT_QUEUE", "practice-service-payment-events"),
		JWTSecret:     getEnv("JWT_SECRET", ""),

		SpeechBaseURL: getEnv("SPEECH_ASSESSMENT_BASE_URL", ""),
		SpeechAPIKey:  getEnv("SPEECH_ASSESSMENT_API_KEY", ""),
		SpeechTimeout: getEnvAsDuration("SPEECH_ASSESSMENT_TIMEOUT", 60*time.Second),
		RubricBaseURL: getEnv("RUBRIC_BASE_URL", ""),
		RubricAPIKey:  getEnv("RUBRIC_API_KEY", ""),
		RubricModel:   getEnv("RUBRIC_MODEL", "gpt-4"),
		RubricTimeout: getEnvAsDuration("RUBRIC_TIMEOUT", 60*time.Second),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
