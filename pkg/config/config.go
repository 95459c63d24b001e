package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	DatabaseURL string `mapstructure:"DATABASE_URL" validate:"required,url|uri"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Upload policy. MaxUploadMB caps each uploaded file; the original system
	// allowed 100 MB per file. MaxRequestBodyMB caps the whole multipart body
	// and must leave room for several per-file-limit files in one submission.
	UploadDir        string `mapstructure:"UPLOAD_DIR" validate:"required"`
	MaxUploadMB      int64  `mapstructure:"MAX_UPLOAD_MB" validate:"gte=1"`
	MaxRequestBodyMB int64  `mapstructure:"MAX_REQUEST_BODY_MB" validate:"gte=1,gtefield=MaxUploadMB"`

	// GitHub integration. RemoteFileMaxBytes caps how much of a remote file is
	// fetched for inline display (1 MiB by default).
	GitHubToken        string        `mapstructure:"GITHUB_TOKEN"`
	GitHubOwner        string        `mapstructure:"GITHUB_OWNER" validate:"required"`
	GitHubBaseBranch   string        `mapstructure:"GITHUB_BASE_BRANCH" validate:"required"`
	GitHubTimeout      time.Duration `mapstructure:"GITHUB_TIMEOUT" validate:"required"`
	RemoteFileMaxBytes int64         `mapstructure:"REMOTE_FILE_MAX_BYTES" validate:"gte=1"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_MB", 100)
	v.SetDefault("MAX_REQUEST_BODY_MB", 512)
	v.SetDefault("GITHUB_BASE_BRANCH", "main")
	v.SetDefault("GITHUB_TIMEOUT", "30s")
	v.SetDefault("REMOTE_FILE_MAX_BYTES", 1<<20)
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	// Bind env without prefix for convenience
	keys := []string{
		"APP_ENV",
		"HTTP_ADDR",
		"SHUTDOWN_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DATABASE_URL",
		"JWT_SECRET",
		"UPLOAD_DIR",
		"MAX_UPLOAD_MB",
		"MAX_REQUEST_BODY_MB",
		"GITHUB_TOKEN",
		"GITHUB_OWNER",
		"GITHUB_BASE_BRANCH",
		"GITHUB_TIMEOUT",
		"REMOTE_FILE_MAX_BYTES",
		"GOMAXPROCS",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Parse duration types that may come as string
	if s := v.GetString("SHUTDOWN_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		c.ShutdownTimeout = d
	}
	if s := v.GetString("GITHUB_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid GITHUB_TIMEOUT: %w", err)
		}
		c.GitHubTimeout = d
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}
