package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultUploadsSubDir = "uploads"
	DefaultChartsSubDir  = "charts"
)

const (
	defaultMaxUploadBytes  = 25 << 20 // per file
	defaultMaxInlineDim    = 1024     // longest side sent inline to the model
	defaultInlineQuality   = 85
	defaultGeminiTimeoutS  = 90
	defaultJWTExpiryHours  = 24
	defaultGeminiModelName = "gemini-2.5-flash"
	defaultGeminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
)

type Config struct {
	// externally visible base URL used to build image/chart links
	PublicBaseURL string

	// database path (users only; analysis records are in-memory)
	DatabasePath string

	// storage configuration
	StoragePath string // primary root for uploads and generated charts
	UploadsPath string // full-calculated path for uploaded imagery
	ChartsPath  string // full-calculated path for rendered charts

	// inline image settings for inference payloads
	MaxUploadBytes int
	MaxInlineDim   int
	InlineQuality  int

	// Gemini settings
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout int // seconds

	// auth settings
	JWTSecret      string
	JWTExpiryHours int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	storage := getEnvOrDefault("STORAGE_PATH", filepath.Join(".", "storage"))
	absStorage, err := filepath.Abs(storage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for storage '%s': %w", storage, err)
	}

	uploadsSubDir := getEnvOrDefault("UPLOADS_SUBDIR", DefaultUploadsSubDir)
	absUploadsPath := filepath.Join(absStorage, uploadsSubDir)

	chartsSubDir := getEnvOrDefault("CHARTS_SUBDIR", DefaultChartsSubDir)
	absChartsPath := filepath.Join(absStorage, chartsSubDir)

	dbPath := getEnvOrDefault("DATABASE_PATH", "users.db")

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		log.Printf("Warning: GEMINI_API_KEY is not set; inference calls will fail")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Printf("Warning: JWT_SECRET is not set; using an insecure development secret")
		jwtSecret = "satellisense-dev-secret"
	}

	cfg := Config{
		PublicBaseURL:  strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		DatabasePath:   dbPath,
		StoragePath:    absStorage,
		UploadsPath:    absUploadsPath,
		ChartsPath:     absChartsPath,
		MaxUploadBytes: getEnvIntOrDefault("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		MaxInlineDim:   getEnvIntOrDefault("MAX_INLINE_DIM", defaultMaxInlineDim),
		InlineQuality:  getEnvIntOrDefault("INLINE_JPEG_QUALITY", defaultInlineQuality),
		GeminiAPIKey:   apiKey,
		GeminiModel:    getEnvOrDefault("GEMINI_MODEL_FLASH", defaultGeminiModelName),
		GeminiBaseURL:  strings.TrimRight(getEnvOrDefault("GEMINI_API_BASE", defaultGeminiBaseURL), "/"),
		GeminiTimeout:  getEnvIntOrDefault("GEMINI_TIMEOUT_SECONDS", defaultGeminiTimeoutS),
		JWTSecret:      jwtSecret,
		JWTExpiryHours: getEnvIntOrDefault("JWT_EXPIRY_HOURS", defaultJWTExpiryHours),
	}

	return cfg, nil
}
