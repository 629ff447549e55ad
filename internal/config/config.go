package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Upload limits
	MaxFileSize    int64
	AllowedTypes   []string
	FileStorageDir string

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Gemini API
	GeminiAPIKey    string
	GenerationModel string
	EmbeddingsModel string

	// Ingestion pipeline
	MaxChunkSize    int
	ChunkOverlap    int
	MinCharsPerPage int
	EmbedBatchSize  int

	// OCR Service Configuration
	OCRServiceURL     string
	OCRServiceEnabled bool
	OCRTimeout        int

	// Vector index
	VectorDimensions int
	IndexRetryMax    int

	// Retrieval
	RetrievalTopK int
	MinSimilarity float64

	// Field matching
	MatchThreshold     float64
	FieldMinSimilarity float64
	FieldTimeout       int
	FieldWorkers       int

	// Background maintenance
	StuckProcessingMins int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/autofill"),
		DBName:      getEnv("DB_NAME", "autofill"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 20971520), // 20MB
		AllowedTypes:   strings.Split(getEnv("ALLOWED_FILE_TYPES", "application/pdf,image/png,image/jpeg,image/tiff,text/plain,text/csv,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"), ","),
		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GenerationModel: getEnv("GENERATION_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),

		MaxChunkSize:    getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		MinCharsPerPage: getEnvInt("MIN_CHARS_PER_PAGE", 100),
		EmbedBatchSize:  getEnvInt("EMBED_BATCH_SIZE", 16),

		OCRServiceURL:     getEnv("OCR_SERVICE_URL", "http://localhost:8001"),
		OCRServiceEnabled: getEnvBool("OCR_SERVICE_ENABLED", true),
		OCRTimeout:        getEnvInt("OCR_TIMEOUT", 300), // 5 minutes

		VectorDimensions: getEnvInt("VECTOR_DIM", 768),
		IndexRetryMax:    getEnvInt("INDEX_RETRY_MAX", 3),

		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 5),
		MinSimilarity: getEnvFloat64("MIN_SIMILARITY", 0.7),

		MatchThreshold:     getEnvFloat64("MATCH_THRESHOLD", 0.3),
		FieldMinSimilarity: getEnvFloat64("FIELD_MIN_SIMILARITY", 0.3),
		FieldTimeout:       getEnvInt("FIELD_TIMEOUT_SECONDS", 10),
		FieldWorkers:       getEnvInt("FIELD_WORKERS", 4),

		StuckProcessingMins: getEnvInt("STUCK_PROCESSING_MINUTES", 30),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than MAX_CHUNK_SIZE")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
