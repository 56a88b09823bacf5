package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"echochats/utils"

	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	ImageStoreLocal      = "local"
	ImageStoreGridFS     = "gridfs"
	ImageStoreCloudinary = "cloudinary"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	Storage  string
	MongoURI string
	DBName   string

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	ImageStore    string
	UploadDir     string
	CloudinaryURL string

	HeaderText    string
	CORSOrigins   []string
	AuthRateLimit int
}

// LoadEnv loads a .env file into the process environment if one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		utils.LogInfo(".env file not found, using process environment")
	}
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	LoadEnv()
	return FromEnv()
}

// FromEnv builds a Config from the current environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Storage:       getEnv("STORAGE", StorageMongo),
		MongoURI:      getEnv("MONGODB_URI", ""),
		DBName:        getEnv("DB_NAME", "EchoChats"),
		SessionSecret: getEnv("SESSION_SECRET", os.Getenv("secretKey")),
		CookieSecure:  getBool("COOKIE_SECURE", false),
		ImageStore:    getEnv("IMAGE_STORE", ImageStoreLocal),
		UploadDir:     getEnv("UPLOAD_DIR", "static/uploads"),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
		HeaderText:    getEnv("HEADER_TEXT", "Nexus Learn"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:8080,http://127.0.0.1:8080")),
	}

	ttlHours, err := getInt("SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.SessionTTL = time.Duration(ttlHours) * time.Hour

	if cfg.AuthRateLimit, err = getInt("AUTH_RATE_LIMIT", 20); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}
	if c.AuthRateLimit <= 0 {
		return errors.New("AUTH_RATE_LIMIT must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGINS must list at least one origin")
	}

	switch c.Storage {
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI must be set when STORAGE=mongo")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}

	switch c.ImageStore {
	case ImageStoreLocal:
	case ImageStoreGridFS:
		if c.Storage != StorageMongo {
			return errors.New("IMAGE_STORE=gridfs requires STORAGE=mongo")
		}
	case ImageStoreCloudinary:
		if c.CloudinaryURL == "" {
			return errors.New("CLOUDINARY_URL must be set when IMAGE_STORE=cloudinary")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
