package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLitePath  string

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool

	UploadsDir        string
	StorageBackend    string // "local" or "gcs"
	GCSBucket         string
	MaxImageDimension int

	RedisAddr     string
	RedisPassword string

	FirebaseCredentialsJSON string
	FirebaseProjectID       string

	AdminEmail    string
	AdminPassword string

	BackupDir       string
	BackupRetention time.Duration
	BackupHour      int

	CORSOrigins        []string
	LoginRatePerMinute int
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),

		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      os.Getenv("DB_HOST"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		SQLitePath:  getEnv("SQLITE_PATH", "storefront.db"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		SessionTTL:   time.Duration(getInt("SESSION_TTL_HOURS", 30*24)) * time.Hour,
		CookieSecure: getBool("COOKIE_SECURE", true),

		UploadsDir:        getEnv("UPLOADS_DIR", "uploads/images"),
		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
		GCSBucket:         os.Getenv("GCS_BUCKET"),
		MaxImageDimension: getInt("MAX_IMAGE_DIMENSION", 2048),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		FirebaseCredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		BackupDir:       os.Getenv("BACKUP_DIR"),
		BackupRetention: time.Duration(getInt("BACKUP_RETENTION_DAYS", 4)) * 24 * time.Hour,
		BackupHour:      getInt("BACKUP_HOUR", 2),

		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "*")),
		LoginRatePerMinute: getInt("LOGIN_RATE_PER_MINUTE", 10),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" && c.DBHost == "" {
			errs = append(errs, errors.New("DATABASE_URL or DB_HOST must be set for postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	switch c.StorageBackend {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET must be set when STORAGE_BACKEND=gcs"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}
	if c.FirebaseCredentialsJSON != "" && c.FirebaseProjectID == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID must be set with FIREBASE_CREDENTIALS_JSON"))
	}
	if c.BackupHour < 0 || c.BackupHour > 23 {
		errs = append(errs, fmt.Errorf("BACKUP_HOUR out of range: %d", c.BackupHour))
	}
	return errors.Join(errs...)
}

// PostgresDSN builds a DSN from the DB_* variables when DATABASE_URL is empty.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
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
