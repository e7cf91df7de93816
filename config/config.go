package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Mode            string
	TempDir         string
	MaxUploadBytes  int64
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	Database DatabaseConfig
	OCR      OCRConfig
}

type DatabaseConfig struct {
	User            string
	Password        string
	Name            string
	Host            string
	Port            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

type OCRConfig struct {
	TesseractDataPath string
	Language          string
	Timeout           time.Duration
	Concurrency       int
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8000"),
		Mode:            getEnv("APP_MODE", "dev"),
		TempDir:         getEnv("TEMP_DIR", "temp"),
		MaxUploadBytes:  getEnvAsInt64("MAX_UPLOAD_BYTES", 32<<20),
		AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Database: DatabaseConfig{
			User:            os.Getenv("DB_USER"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            os.Getenv("DB_NAME"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 5*time.Second),
		},
		OCR: OCRConfig{
			TesseractDataPath: os.Getenv("TESSDATA_PREFIX"),
			Language:          getEnv("OCR_LANGUAGE", "eng"),
			Timeout:           getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
			Concurrency:       getEnvAsInt("OCR_CONCURRENCY", runtime.NumCPU()),
		},
	}
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.OCR.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("OCR_CONCURRENCY must be positive, got %d", c.OCR.Concurrency))
	}
	if c.TempDir == "" {
		errs = append(errs, errors.New("TEMP_DIR must not be empty"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_MODE selects release behaviour.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Mode, "prod")
}

// DSN builds a postgres URL; credentials are escaped so any password works.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := url.Values{}
	if d.SSLMode != "" {
		q.Set("sslmode", d.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
