package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// User persistence backends.
const (
	UserStoreMongo    = "mongo"
	UserStorePostgres = "postgres"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	MongoURI     string
	MongoScheme  string
	MongoHost    string
	MongoAppName string
	DBUser       string
	DBPass       string
	MongoDB      string
	StoreTimeout time.Duration

	UserStore   string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigins       []string
	AuthRatePerMinute int
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getenv("PORT", "5000"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		MongoURI:     getenv("MONGO_URI", ""),
		MongoScheme:  getenv("MONGO_SCHEME", "mongodb+srv"),
		MongoHost:    getenv("MONGO_HOST", "localhost:27017"),
		MongoAppName: getenv("MONGO_APP_NAME", "event-hub"),
		DBUser:       getenv("DB_USER", ""),
		DBPass:       getenv("DB_PASS", ""),
		MongoDB:      getenv("MONGO_DB", "eventApp"),
		StoreTimeout: getduration("STORE_TIMEOUT", 5*time.Second),

		UserStore:   getenv("USER_STORE", UserStoreMongo),
		PostgresDSN: getenv("POSTGRES_DSN", ""),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "event-photos"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",

		JWTSecret: getenv("JWT_SECRET", ""),
		TokenTTL:  getduration("TOKEN_TTL", 24*time.Hour),

		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		AuthRatePerMinute: getint("AUTH_RATE_PER_MINUTE", 10),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.UserStore {
	case UserStoreMongo:
	case UserStorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when USER_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown USER_STORE %q", c.UserStore)
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	return nil
}

// ConnectionURI returns MONGO_URI when set, otherwise assembles one from the
// database credentials and host.
func (c *Config) ConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}

	u := url.URL{
		Scheme: c.MongoScheme,
		Host:   c.MongoHost,
		Path:   "/",
	}
	if c.DBUser != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPass)
	}
	q := url.Values{}
	q.Set("retryWrites", "true")
	q.Set("w", "majority")
	if c.MongoAppName != "" {
		q.Set("appName", c.MongoAppName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
