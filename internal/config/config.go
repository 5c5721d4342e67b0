package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Ollama OllamaConfig
	Intake IntakeConfig
	Queue  QueueConfig
	JWT    JWTConfig
	Upload UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for uploaded documents.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// OllamaConfig holds inference service settings. Immutable after load; the
// gateway validates it with IsConfigured rather than failing at startup, so
// the rest of the application can run while the operator fixes it.
type OllamaConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	Model        string  `mapstructure:"model"`
	TimeoutSecs  int     `mapstructure:"timeout_secs"`
	MaxImages    int     `mapstructure:"max_images"`
	MaxPayloadMB int64   `mapstructure:"max_payload_mb"`
	Temperature  float64 `mapstructure:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	MinTextLen   int     `mapstructure:"min_text_len"`
}

// IntakeConfig holds document processing settings.
type IntakeConfig struct {
	DPI      int    `mapstructure:"dpi"`
	MaxPages int    `mapstructure:"max_pages"`
	WorkDir  string `mapstructure:"work_dir"`
}

// QueueConfig holds analysis queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
	RunTimeoutSecs   int `mapstructure:"run_timeout_secs"`
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// UploadConfig holds file upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// Load reads configuration from environment variables with the WORKWISE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("WORKWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "workwise")
	v.SetDefault("db.password", "workwise_secret")
	v.SetDefault("db.name", "workwise_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "workwise-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Ollama defaults
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "qwen3-vl:4b-instruct")
	v.SetDefault("ollama.timeout_secs", 300)
	v.SetDefault("ollama.max_images", 10)
	v.SetDefault("ollama.max_payload_mb", 50)
	v.SetDefault("ollama.temperature", 0.1)
	v.SetDefault("ollama.max_tokens", 8000)
	v.SetDefault("ollama.min_text_len", 100)

	// Intake defaults
	v.SetDefault("intake.dpi", 150)
	v.SetDefault("intake.max_pages", 30)
	v.SetDefault("intake.work_dir", os.TempDir())

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.concurrency", 3)
	v.SetDefault("queue.run_timeout_secs", 900)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "24h")
	v.SetDefault("jwt.issuer", "workwise")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "WORKWISE_SERVER_PORT",
		"server.read_timeout":     "WORKWISE_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "WORKWISE_SERVER_WRITE_TIMEOUT",
		"server.environment":      "WORKWISE_SERVER_ENVIRONMENT",
		"db.host":                 "WORKWISE_DB_HOST",
		"db.port":                 "WORKWISE_DB_PORT",
		"db.user":                 "WORKWISE_DB_USER",
		"db.password":             "WORKWISE_DB_PASSWORD",
		"db.name":                 "WORKWISE_DB_NAME",
		"db.sslmode":              "WORKWISE_DB_SSLMODE",
		"db.max_open":             "WORKWISE_DB_MAX_OPEN",
		"db.max_idle":             "WORKWISE_DB_MAX_IDLE",
		"s3.region":               "WORKWISE_S3_REGION",
		"s3.bucket":               "WORKWISE_S3_BUCKET",
		"s3.endpoint":             "WORKWISE_S3_ENDPOINT",
		"s3.access_key":           "WORKWISE_S3_ACCESS_KEY",
		"s3.secret_key":           "WORKWISE_S3_SECRET_KEY",
		"s3.presign_expiry":       "WORKWISE_S3_PRESIGN_EXPIRY",
		"ollama.base_url":         "WORKWISE_OLLAMA_BASE_URL",
		"ollama.model":            "WORKWISE_OLLAMA_MODEL",
		"ollama.timeout_secs":     "WORKWISE_OLLAMA_TIMEOUT_SECS",
		"ollama.max_images":       "WORKWISE_OLLAMA_MAX_IMAGES",
		"ollama.max_payload_mb":   "WORKWISE_OLLAMA_MAX_PAYLOAD_MB",
		"ollama.temperature":      "WORKWISE_OLLAMA_TEMPERATURE",
		"ollama.max_tokens":       "WORKWISE_OLLAMA_MAX_TOKENS",
		"ollama.min_text_len":     "WORKWISE_OLLAMA_MIN_TEXT_LEN",
		"intake.dpi":              "WORKWISE_INTAKE_DPI",
		"intake.max_pages":        "WORKWISE_INTAKE_MAX_PAGES",
		"intake.work_dir":         "WORKWISE_INTAKE_WORK_DIR",
		"queue.poll_interval_secs": "WORKWISE_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":        "WORKWISE_QUEUE_CONCURRENCY",
		"queue.run_timeout_secs":   "WORKWISE_QUEUE_RUN_TIMEOUT_SECS",
		"jwt.secret":               "WORKWISE_JWT_SECRET",
		"jwt.access_expiry":        "WORKWISE_JWT_ACCESS_EXPIRY",
		"jwt.issuer":               "WORKWISE_JWT_ISSUER",
		"upload.max_file_size_mb":  "WORKWISE_UPLOAD_MAX_FILE_SIZE_MB",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
