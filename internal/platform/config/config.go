// Package config loads process configuration from the environment once at
// startup. Everything here is read-only after main constructs it.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full application configuration.
type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	JWT      JWT
	Mail     Mail
	OTP      OTP
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Database holds the Postgres connection string. Empty means the service
// runs on in-memory stores (dev and tests).
type Database struct {
	DSN string
}

// Redis holds connection settings for the token revocation list. Empty URL
// means the in-memory revocation list is used instead.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// JWT configures the token issuer.
type JWT struct {
	SigningKey      string
	Issuer          string
	Audience        string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// Mail configures the outbound notification dispatcher.
type Mail struct {
	Region    string
	AccessKey string
	SecretKey string
	Sender    string
}

// OTP configures one-time code issuance.
type OTP struct {
	Length   int
	Validity time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envOr("CLINIC_ADDR", ":8080"),
			AllowedOrigins:  []string{envOr("CLINIC_CORS_ORIGIN", "*")},
			RequestTimeout:  envDuration("CLINIC_REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: envDuration("CLINIC_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: Database{
			DSN: os.Getenv("CLINIC_DATABASE_DSN"),
		},
		Redis: Redis{
			URL:          os.Getenv("CLINIC_REDIS_URL"),
			PoolSize:     envInt("CLINIC_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CLINIC_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("CLINIC_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("CLINIC_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("CLINIC_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWT: JWT{
			// Default is for development only; override in production.
			SigningKey:      envOr("CLINIC_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:          envOr("CLINIC_JWT_ISSUER", "lawclinic"),
			Audience:        envOr("CLINIC_JWT_AUDIENCE", "lawclinic-web"),
			AccessTokenTTL:  envDuration("CLINIC_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL: envDuration("CLINIC_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		Mail: Mail{
			Region:    envOr("CLINIC_SES_REGION", "us-east-1"),
			AccessKey: os.Getenv("CLINIC_SES_ACCESS_KEY"),
			SecretKey: os.Getenv("CLINIC_SES_SECRET_KEY"),
			Sender:    envOr("CLINIC_MAIL_SENDER", "no-reply@lawclinic.example.org"),
		},
		OTP: OTP{
			Length:   envInt("CLINIC_OTP_LENGTH", 6),
			Validity: envDuration("CLINIC_OTP_VALIDITY", 10*time.Minute),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
