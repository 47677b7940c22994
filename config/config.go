package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Email         EmailConfig
	ResumeStorage ResumeStorageConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL                 string
	MaxConns            int32
	MinConns            int32
	ConnectRetries      int
	MigrationsPath      string
	ConnectRetryDelayMs int
	CACertPath          string
	TLSServerName       string
}

// EmailConfig configures acknowledgement emails. Transport is either a
// well-known Service name or an explicit Host/Port pair; Host wins when both are set.
type EmailConfig struct {
	Enabled        bool
	Service        string
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	NotifyAddress  string
	TimeoutSeconds int
}

// ResumeStorageConfig configures the optional S3-compatible resume archive
type ResumeStorageConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
}

// Enabled reports whether a bucket has been configured for resume archiving
func (r ResumeStorageConfig) Enabled() bool {
	return r.BucketName != ""
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "4000")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_CONNECT_RETRIES", 5)
	v.SetDefault("DB_CONNECT_RETRY_DELAY_MS", 500)
	v.SetDefault("DB_MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("EMAIL_ENABLED", true)
	v.SetDefault("EMAIL_SERVICE", "gmail")
	v.SetDefault("EMAIL_TIMEOUT_SECONDS", 15)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_BE_SERVICE_NAME", "vrise-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "vrise")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "vrise-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: splitList(v.GetString("CLIENT_ORIGIN")),
		},
		Database: DatabaseConfig{
			URL:                 v.GetString("DATABASE_URL"),
			MaxConns:            v.GetInt32("DB_MAX_CONNS"),
			MinConns:            v.GetInt32("DB_MIN_CONNS"),
			ConnectRetries:      v.GetInt("DB_CONNECT_RETRIES"),
			ConnectRetryDelayMs: v.GetInt("DB_CONNECT_RETRY_DELAY_MS"),
			MigrationsPath:      v.GetString("DB_MIGRATIONS_PATH"),
			CACertPath:          v.GetString("DATABASE_CA_CERT_PATH"),
			TLSServerName:       v.GetString("DATABASE_TLS_SERVER_NAME"),
		},
		Email: EmailConfig{
			Enabled:        v.GetBool("EMAIL_ENABLED"),
			Service:        strings.ToLower(strings.TrimSpace(v.GetString("EMAIL_SERVICE"))),
			Host:           strings.TrimSpace(v.GetString("EMAIL_HOST")),
			Port:           v.GetInt("EMAIL_PORT"),
			Username:       v.GetString("EMAIL_USER"),
			Password:       v.GetString("EMAIL_PASSWORD"),
			From:           v.GetString("EMAIL_FROM"),
			NotifyAddress:  v.GetString("NOTIFY_EMAIL"),
			TimeoutSeconds: v.GetInt("EMAIL_TIMEOUT_SECONDS"),
		},
		ResumeStorage: ResumeStorageConfig{
			AccessKeyID:     v.GetString("RESUME_STORAGE_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("RESUME_STORAGE_SECRET_ACCESS_KEY"),
			BucketName:      v.GetString("RESUME_STORAGE_BUCKET_NAME"),
			Endpoint:        v.GetString("RESUME_STORAGE_ENDPOINT"),
			Region:          v.GetString("RESUME_STORAGE_REGION"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks
func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Database configuration
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("CLIENT_ORIGIN is required")
	}

	// Email configuration is only required when delivery is switched on
	if c.Email.Enabled {
		if c.Email.Service == "" && c.Email.Host == "" {
			return fmt.Errorf("EMAIL_SERVICE or EMAIL_HOST is required when email is enabled")
		}
		if c.Email.Username == "" || c.Email.Password == "" || c.Email.From == "" || c.Email.NotifyAddress == "" {
			return fmt.Errorf("missing email configuration (EMAIL_USER, EMAIL_PASSWORD, EMAIL_FROM, NOTIFY_EMAIL)")
		}
	}

	if c.ResumeStorage.Enabled() && (c.ResumeStorage.AccessKeyID == "" || c.ResumeStorage.SecretAccessKey == "") {
		return fmt.Errorf("RESUME_STORAGE_ACCESS_KEY_ID and RESUME_STORAGE_SECRET_ACCESS_KEY are required when RESUME_STORAGE_BUCKET_NAME is set")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
