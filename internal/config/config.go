package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	DBDriver    string
	DBDSN       string
	DBLogLevel  string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string

	LoginMaxAttempts  int
	LoginDecaySeconds int
	APIRateLimit      int

	CORSAllowedOrigins []string

	RabbitMQURL    string
	EventsExchange string

	LogLevel  string
	LogFormat string

	SeedImageDir string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DBDriver:    driver,
		DBDSN:       getEnv("DB_DSN", defaultDSN(driver)),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),
		ResetDB:     getEnvBool("RESET_DB", false),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),

		LoginMaxAttempts:  getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginDecaySeconds: getEnvInt("LOGIN_DECAY_SECONDS", 60),
		APIRateLimit:      getEnvInt("API_RATE_LIMIT", 0),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "postboard.events"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SeedImageDir: os.Getenv("SEED_IMAGE_DIR"),
	}
}

func defaultDSN(driver string) string {
	if driver == "sqlite" {
		return "postboard.db"
	}
	if driver == "postgres" {
		return "host=localhost user=postgres password=postgres dbname=postboard port=5432 sslmode=disable"
	}
	return "user:password@tcp(localhost:3306)/postboard?charset=utf8mb4&parseTime=True&loc=Local"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
