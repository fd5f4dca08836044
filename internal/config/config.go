package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in DB_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env        string
	ServerPort string

	DBDriver      string
	MongoURI      string
	MongoDatabase string
	MySQLDSN      string
	ResetDB       bool

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	NATSURL string

	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	LoginRateLimit float64
	LoginRateBurst int
	MaxUploadSize  string

	LogLevel  string
	LogFormat string

	SwaggerHost string
}

// Load reads the dotenv files for APP_ENV and builds Config from the environment
// with sensible defaults.
func Load() *Config {
	env := getEnv("APP_ENV", "dev")
	loadDotEnvs(env)

	return &Config{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBDriver:      getEnv("DB_DRIVER", DriverMongo),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "twitter-api"),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/twitter?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:       getEnvBool("RESET_DB", false),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),

		NATSURL: os.Getenv("NATS_URL"),

		JWTSecret:  getEnv("JWT_SECRET", "change-me"),
		TokenTTL:   getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		LoginRateLimit: getEnvFloat("LOGIN_RATE_LIMIT", 5),
		LoginRateBurst: getEnvInt("LOGIN_RATE_BURST", 10),
		MaxUploadSize:  getEnv("MAX_UPLOAD_SIZE", "10M"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

// loadDotEnvs follows the dotenv precedence convention: files loaded first win,
// and variables already present in the process environment are never overwritten.
func loadDotEnvs(env string) {
	for _, name := range []string{".env." + env + ".local", ".env.local", ".env." + env, ".env"} {
		_ = godotenv.Load(name)
	}
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
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

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
