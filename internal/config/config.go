package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	DynamoDB      DynamoDBConfig      `envconfig:"DYNAMODB"`
	JWT           JWTConfig           `envconfig:"JWT"`
	Google        GoogleConfig        `envconfig:"GOOGLE"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	RateLimit     RateLimitConfig     `envconfig:"RATE_LIMIT"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	Log           LogConfig           `envconfig:"LOG"`
	AWS           AWSConfig           `envconfig:"AWS"`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"5000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type DynamoDBConfig struct {
	UsersTableName       string `envconfig:"USERS_TABLE_NAME" default:"bidsim-users"`
	SubmissionsTableName string `envconfig:"SUBMISSIONS_TABLE_NAME" default:"bidsim-submissions"`
	Region               string `envconfig:"REGION" default:"ap-northeast-2"`
}

type JWTConfig struct {
	// Secret signs self-issued session tokens. Fixed for the process lifetime.
	Secret string `envconfig:"SECRET" default:"dev_secret_change_me"`
	// TTL is the session token lifetime. Tokens cannot be revoked early.
	TTL time.Duration `envconfig:"TTL" default:"168h"`
}

type GoogleConfig struct {
	ClientID     string `envconfig:"CLIENT_ID" default:""`
	ClientSecret string `envconfig:"CLIENT_SECRET" default:""`
	RedirectURL  string `envconfig:"REDIRECT_URL" default:"http://localhost:5000/auth/google/callback"`
	// FrontendURL receives the session token on the redirect login path.
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
}

type RedisConfig struct {
	Address             string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password            string        `envconfig:"PASSWORD" default:""`
	Database            int           `envconfig:"DATABASE" default:"0"`
	MaxRetries          int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize            int           `envconfig:"POOL_SIZE" default:"100"`
	PoolTimeout         time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	TLSEnabled          bool          `envconfig:"TLS_ENABLED" default:"false"`
	PasswordFromSecrets bool          `envconfig:"PASSWORD_FROM_SECRETS" default:"false"`
}

type RateLimitConfig struct {
	RPS         int           `envconfig:"RPS" default:"50"`
	Burst       int           `envconfig:"BURST" default:"100"`
	WindowSize  time.Duration `envconfig:"WINDOW_SIZE" default:"1s"`
	Enabled     bool          `envconfig:"ENABLED" default:"true"`
	ExemptPaths []string      `envconfig:"EXEMPT_PATHS" default:"/healthz,/readyz,/metrics"`
}

type CORSConfig struct {
	// FrontendOrigins are exact origins always allowed to call the API.
	FrontendOrigins []string `envconfig:"FRONTEND_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000"`
	// TrustedSuffix allows any origin under the hosting provider's domain.
	TrustedSuffix string `envconfig:"TRUSTED_SUFFIX" default:".onrender.com"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"`
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"false"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

type AWSConfig struct {
	Region     string `envconfig:"REGION" default:"ap-northeast-2"`
	Profile    string `envconfig:"PROFILE" default:""`
	SecretName string `envconfig:"SECRET_NAME" default:""`
}

func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Additional processing for slice fields that envconfig doesn't handle well
	if origins := os.Getenv("CORS_FRONTEND_ORIGINS"); origins != "" {
		cfg.CORS.FrontendOrigins = splitAndTrim(origins)
	}
	if exemptPaths := os.Getenv("RATE_LIMIT_EXEMPT_PATHS"); exemptPaths != "" {
		cfg.RateLimit.ExemptPaths = splitAndTrim(exemptPaths)
	}

	// Validate required fields
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func validateConfig(cfg *Config) error {
	// Validate port
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT secret must not be empty")
	}

	if cfg.JWT.TTL <= 0 {
		return fmt.Errorf("invalid JWT TTL: %s", cfg.JWT.TTL)
	}

	// Validate sample rate
	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	return nil
}
