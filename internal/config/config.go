package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	MongoURI    string
	MongoDB     string
	CORSOrigins []string

	ResearchAPIURL   string
	PlanAPIURL       string
	ResearchTimeout  time.Duration
	PlanTimeout      time.Duration
	StorePingTimeout time.Duration

	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
}

// Load reads configuration from the environment, after merging a .env file
// from the working directory if one exists. Unset or malformed values fall
// back to local development defaults; Load never fails.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getenv("PORT", "3001"),
		MongoURI:    getenv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDB:     getenv("MONGODB_DB", "company-research"),
		CORSOrigins: getlist("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),

		ResearchAPIURL:   getenv("RESEARCH_API_URL", "http://localhost:8000"),
		PlanAPIURL:       getenv("PLAN_API_URL", getenv("PYTHON_API_URL", "http://localhost:8000")),
		ResearchTimeout:  getduration("RESEARCH_TIMEOUT", 90*time.Second),
		PlanTimeout:      getduration("PLAN_TIMEOUT", 120*time.Second),
		StorePingTimeout: getduration("STORE_PING_TIMEOUT", 2*time.Second),

		RedisAddr:          getenv("REDIS_ADDR", ""),
		RedisPassword:      getenv("REDIS_PASSWORD", ""),
		RateLimitPerMinute: getint("RATE_LIMIT_PER_MINUTE", 20),

		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "account-plans"),
		MinioRegion:    getenv("MINIO_REGION", ""),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getlist(key string, fallback []string) []string {
	raw := getenv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
