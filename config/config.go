package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	AdminUsername string
	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	UploadDir   string
	MaxUploadMB int64

	SeedFile  string
	ExcelFile string
	MetaFile  string

	ImportTimeout     time.Duration
	ImportConcurrency int

	MongoURI string
	DBName   string

	S3Bucket      string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AdminEmail   string
}

const defaultJWTSecret = "change-me-in-production"

var logWriter io.Writer = os.Stderr

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "5000")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("admin_username", "12345678")
	v.SetDefault("admin_password", "sandhya")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("token_ttl", "12h")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_upload_mb", 50)
	v.SetDefault("seed_file", "ebooks.json")
	v.SetDefault("excel_file", "")
	v.SetDefault("meta_file", "")
	v.SetDefault("import_timeout", "30s")
	v.SetDefault("import_concurrency", 4)
	v.SetDefault("mongodb_uri", "")
	v.SetDefault("mongodb_db", "digilib")
	v.SetDefault("aws_s3_bucket", "")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("aws_access_key_id", "")
	v.SetDefault("aws_secret_access_key", "")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_from", "")
	v.SetDefault("admin_email", "")
}

// Load reads .env (if present), then the environment, then an optional YAML
// file. Environment variables use the upper-case key names, e.g. PORT or
// MONGODB_URI.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		Port:              v.GetString("port"),
		LogLevel:          v.GetString("log_level"),
		LogFormat:         v.GetString("log_format"),
		AdminUsername:     v.GetString("admin_username"),
		AdminPassword:     v.GetString("admin_password"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		UploadDir:         v.GetString("upload_dir"),
		MaxUploadMB:       v.GetInt64("max_upload_mb"),
		SeedFile:          v.GetString("seed_file"),
		ExcelFile:         v.GetString("excel_file"),
		MetaFile:          v.GetString("meta_file"),
		ImportTimeout:     v.GetDuration("import_timeout"),
		ImportConcurrency: v.GetInt("import_concurrency"),
		MongoURI:          v.GetString("mongodb_uri"),
		DBName:            v.GetString("mongodb_db"),
		S3Bucket:          v.GetString("aws_s3_bucket"),
		S3Region:          v.GetString("aws_region"),
		S3AccessKeyID:     v.GetString("aws_access_key_id"),
		S3SecretKey:       v.GetString("aws_secret_access_key"),
		SMTPHost:          v.GetString("smtp_host"),
		SMTPPort:          v.GetInt("smtp_port"),
		SMTPUsername:      v.GetString("smtp_username"),
		SMTPPassword:      v.GetString("smtp_password"),
		SMTPFrom:          v.GetString("smtp_from"),
		AdminEmail:        v.GetString("admin_email"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server can't run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD are required"))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB))
	}
	if c.ImportTimeout <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_TIMEOUT must be positive, got %s", c.ImportTimeout))
	}
	if c.ImportConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("IMPORT_CONCURRENCY must be positive, got %d", c.ImportConcurrency))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	return errors.Join(errs...)
}

func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB * 1024 * 1024 }

func (c *Config) MongoEnabled() bool { return c.MongoURI != "" }

func (c *Config) SMTPEnabled() bool { return c.SMTPHost != "" && c.AdminEmail != "" }

// LogWarnings reports settings that work but should not reach production.
func (c *Config) LogWarnings(logger *slog.Logger) {
	if c.JWTSecret == defaultJWTSecret {
		logger.Warn("JWT_SECRET is the built-in default; set a strong secret")
	}
	if c.S3Bucket == "" {
		logger.Info("AWS_S3_BUCKET not set; uploads are stored on disk", "dir", c.UploadDir)
	}
	if !c.SMTPEnabled() {
		logger.Info("SMTP not configured; pre-booking notifications are logged only")
	}
	if !c.MongoEnabled() {
		logger.Info("MONGODB_URI not set; catalog snapshots are disabled")
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		h = slog.NewJSONHandler(logWriter, opts)
	} else {
		h = slog.NewTextHandler(logWriter, opts)
	}
	return slog.New(h)
}
