package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	SslCertPath string

	AIAPIKey    string
	EmbedModel  string
	EmbedDim    int
	GenModel    string
	VisionModel string

	// Optional S3 archival of the raw uploaded files. Disabled when
	// ArchiveBucket is empty.
	AwsAccessKey  string
	AwsSecretKey  string
	AwsRegion     string
	ArchiveBucket string

	// External converter binaries used by the extractor.
	SofficePath  string
	AntiwordPath string
	PdftoppmPath string

	UnidocLicenseKey string

	ChunkSize    int
	ChunkOverlap int
	RenderDPI    int
	ImageFormat  string
	OCRWorkers   int
	OCRMaxTokens int

	Port string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SslCertPath: getEnv("SSL_CERT_PATH", ""),

		AIAPIKey:    getEnv("GEMINI_API_KEY", ""),
		EmbedModel:  getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:    getEnvInt("EMBED_DIM", 1536),
		GenModel:    getEnv("GEN_MODEL", "gemini-1.5-flash"),
		VisionModel: getEnv("VISION_MODEL", "gemini-1.5-flash"),

		AwsAccessKey:  getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:  getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:     getEnv("AWS_REGION", "us-east-2"),
		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		SofficePath:  getEnv("SOFFICE_PATH", "soffice"),
		AntiwordPath: getEnv("ANTIWORD_PATH", "antiword"),
		PdftoppmPath: getEnv("PDFTOPPM_PATH", "pdftoppm"),

		UnidocLicenseKey: getEnv("UNIDOC_LICENSE_KEY", ""),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 2000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		RenderDPI:    getEnvInt("RENDER_DPI", 200),
		ImageFormat:  getEnv("IMAGE_FORMAT", "png"),
		OCRWorkers:   getEnvInt("OCR_WORKERS", 10),
		OCRMaxTokens: getEnvInt("OCR_MAX_TOKENS", 1000),

		Port: getEnv("PORT", "8080"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
