package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
	// AppName is reported to the server as application_name.
	AppName string
	// StatementTimeout caps every statement server-side; zero leaves the server default.
	StatementTimeout time.Duration
	// ConnectAttempts bounds the startup ping retries while the database comes up.
	ConnectAttempts int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	// PublicEndpoint is the host:port clients reach the bucket through when it
	// differs from Endpoint, e.g. behind a CDN or outside the compose network.
	PublicEndpoint string
	// PresignExpiry bounds the lifetime of image URLs handed to clients.
	PresignExpiry time.Duration
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSigningKey     string
	TokenTTL          time.Duration
	// ReferralCookieTTL is how long a ?ref= link keeps crediting its referrer.
	ReferralCookieTTL time.Duration
}

// GraphConfig holds Facebook/Instagram Graph API credentials used for auto-posting.
type GraphConfig struct {
	BaseURL            string
	Version            string
	PageID             string
	PageAccessToken    string
	InstagramAccountID string
	Timeout            time.Duration
}

// Enabled reports whether enough credentials are present to post anywhere.
func (g GraphConfig) Enabled() bool {
	return g.PageAccessToken != "" && (g.PageID != "" || g.InstagramAccountID != "")
}

// SMTPConfig holds outgoing mail settings. An empty Host disables mail.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// WorkerConfig holds background job settings.
type WorkerConfig struct {
	AuctionCloseInterval time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	AppScheme   string
	Port        string
	Environment string
	Timezone    string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	Auth        AuthConfig
	Graph       GraphConfig
	SMTP        SMTPConfig
	Worker      WorkerConfig
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		AppScheme:   getEnv("APP_SCHEME", "http"),
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("APP_ENV", "production"),
		Timezone:    getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
			AppName:            getEnv("DB_APPLICATION_NAME", "artmarket"),
			StatementTimeout:   getEnvDuration("DB_STATEMENT_TIMEOUT", 30*time.Second),
			ConnectAttempts:    getEnvInt("DB_CONNECT_ATTEMPTS", 5),
		},
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", ""),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			Bucket:         getEnv("MINIO_BUCKET", ""),
			UseSSL:         getEnvBool("MINIO_USE_SSL", false),
			Region:         getEnv("MINIO_REGION", "us-east-1"),
			PublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", ""),
			PresignExpiry:  getEnvDuration("MINIO_PRESIGN_EXPIRY", time.Hour),
		},
		Auth: AuthConfig{
			JWTSigningKey:     getEnv("JWT_SIGNING_KEY", ""),
			TokenTTL:          getEnvDuration("JWT_TOKEN_TTL", 72*time.Hour),
			ReferralCookieTTL: getEnvDuration("REFERRAL_COOKIE_TTL", 30*24*time.Hour),
		},
		Graph: GraphConfig{
			BaseURL:            getEnv("GRAPH_API_BASE_URL", "https://graph.facebook.com"),
			Version:            getEnv("GRAPH_API_VERSION", "v19.0"),
			PageID:             getEnv("FACEBOOK_PAGE_ID", ""),
			PageAccessToken:    getEnv("FACEBOOK_PAGE_ACCESS_TOKEN", ""),
			InstagramAccountID: getEnv("INSTAGRAM_ACCOUNT_ID", ""),
			Timeout:            getEnvDuration("GRAPH_API_TIMEOUT", 15*time.Second),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@artmarket.local"),
		},
		Worker: WorkerConfig{
			AuctionCloseInterval: getEnvDuration("AUCTION_CLOSE_INTERVAL", 15*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}
