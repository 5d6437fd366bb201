package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment         string
	Domains             []string
	CertCacheDir        string
	HTTPPort            string
	HTTPSPort           string
	LogDir              string
	ProjectID           string
	VertexLocation      string
	GeminiModel         string
	StorageBucket       string
	SignedURLTTL        time.Duration
	MaxUploadBytes      int64
	RenderTimeout       time.Duration
	FetchTimeout        time.Duration
	MaxCombinedDocChars int
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		Domains:             []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:        getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
		HTTPPort:            getEnv("HTTP_PORT", "8086"),
		HTTPSPort:           getEnv("HTTPS_PORT", "443"),
		LogDir:              getEnv("LOG_DIR", "logs"),
		ProjectID:           getEnv("GCP_PROJECT_ID", ""),
		VertexLocation:      getEnv("VERTEX_LOCATION", "us-central1"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		StorageBucket:       getEnv("STORAGE_BUCKET", ""),
		SignedURLTTL:        time.Duration(getEnvAsInt("SIGNED_URL_TTL_MINUTES", 60)) * time.Minute,
		MaxUploadBytes:      int64(getEnvAsInt("MAX_UPLOAD_MB", 40)) << 20,
		RenderTimeout:       time.Duration(getEnvAsInt("RENDER_TIMEOUT_SECONDS", 300)) * time.Second,
		FetchTimeout:        time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 300)) * time.Second,
		MaxCombinedDocChars: getEnvAsInt("MAX_COMBINED_DOC_CHARS", 200_000),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
