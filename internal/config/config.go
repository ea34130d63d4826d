package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported persistence drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Search   SearchConfig
	Upload   UploadConfig
	Tracing  TracingConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
}

type DatabaseConfig struct {
	Driver string // mongo, postgres or memory

	MongoURI      string
	MongoDatabase string

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Supported image store drivers.
const (
	StorageS3     = "s3"
	StorageMemory = "memory"
)

// StorageConfig describes the S3-compatible bucket used as image store.
type StorageConfig struct {
	Driver        string // s3 or memory
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	UsePathStyle  bool
	PublicBaseURL string // base used to build secure_url, defaults to endpoint/bucket
	RootFolder    string
}

type AuthConfig struct {
	// EnforceOwnership restricts offer and user mutations to their owner.
	EnforceOwnership bool
}

type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

type UploadConfig struct {
	MaxMemory int64 // bytes kept in memory while parsing multipart bodies
}

type TracingConfig struct {
	OTLPEndpoint string // tracing is disabled when empty
	ServiceName  string
}

// Load reads configuration from environment variables
// Call godotenv.Load() before this if using .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "3000"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:        strings.ToLower(getEnv("DB_DRIVER", DriverMongo)),
			MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDatabase: getEnv("MONGODB_DATABASE", "vinted"),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", "postgres"),
			DBName:        getEnv("DB_NAME", "vinted"),
			SSLMode:       getEnv("DB_SSLMODE", "disable"),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("IMAGE_STORE_DRIVER", StorageS3)),
			Endpoint:      getEnv("S3_ENDPOINT", "http://localhost:9000"),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Bucket:        getEnv("S3_BUCKET", "marketplace"),
			AccessKey:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
			UsePathStyle:  getBoolEnv("S3_USE_PATH_STYLE", true),
			PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", ""),
			RootFolder:    getEnv("IMAGE_ROOT_FOLDER", "vinted"),
		},
		Auth: AuthConfig{
			EnforceOwnership: getBoolEnv("AUTH_ENFORCE_OWNERSHIP", false),
		},
		Search: SearchConfig{
			DefaultLimit: getIntEnv("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:     getIntEnv("SEARCH_MAX_LIMIT", 100),
		},
		Upload: UploadConfig{
			MaxMemory: int64(getIntEnv("UPLOAD_MAX_MEMORY_MB", 10)) << 20,
		},
		Tracing: TracingConfig{
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "marketplace-api"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be one of %q, %q or %q, got %q",
			DriverMongo, DriverPostgres, DriverMemory, c.Database.Driver)
	}

	if c.Search.DefaultLimit < 1 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be positive, got %d", c.Search.DefaultLimit)
	}
	if c.Search.MaxLimit < c.Search.DefaultLimit {
		return fmt.Errorf("SEARCH_MAX_LIMIT (%d) must not be lower than SEARCH_DEFAULT_LIMIT (%d)",
			c.Search.MaxLimit, c.Search.DefaultLimit)
	}

	switch c.Storage.Driver {
	case StorageS3, StorageMemory:
	default:
		return fmt.Errorf("IMAGE_STORE_DRIVER must be %q or %q, got %q", StorageS3, StorageMemory, c.Storage.Driver)
	}

	if c.Storage.Driver == StorageS3 && c.Storage.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required")
	}
	if strings.Trim(c.Storage.RootFolder, "/") == "" {
		return fmt.Errorf("IMAGE_ROOT_FOLDER must not be empty")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// PublicURL returns the base URL objects are served from.
func (c *StorageConfig) PublicURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return strings.TrimRight(c.Endpoint, "/") + "/" + c.Bucket
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
