package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zycare/auth-api/internal/domain"
)

// Pending-verification store backends.
const (
	StoreMemory = "memory"
	StoreDynamo = "dynamo"
	StoreRedis  = "redis"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppName string
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// OTP lifecycle knobs. Defaults follow the product behavior: 10-minute
	// codes, 5 guesses, 1-minute sweep cadence, 15s delivery bound.
	OTPCodeTTL      time.Duration
	OTPMaxAttempts  int
	OTPSendTimeout  time.Duration
	OTPSweepEvery   time.Duration
	OTPStoreBackend string // memory | dynamo | redis

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTPrivateKeyPath  string
	JWTPublicKeyPath   string
	JWTExpiry          time.Duration
	RefreshTokenExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Identities           string
	Sessions             string
	PendingVerifications string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppName: getEnv("APP_NAME", "ZYCARE"),
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Identities:           getEnv("DYNAMO_TABLE_IDENTITIES", "identities"),
			Sessions:             getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			PendingVerifications: getEnv("DYNAMO_TABLE_PENDING_VERIFICATIONS", "pending_verifications"),
		},

		OTPCodeTTL:      getEnvDur("OTP_CODE_TTL", domain.CodeTTL),
		OTPMaxAttempts:  getEnvInt("OTP_MAX_ATTEMPTS", domain.MaxAttempts),
		OTPSendTimeout:  getEnvDur("OTP_SEND_TIMEOUT", 15*time.Second),
		OTPSweepEvery:   getEnvDur("OTP_SWEEP_EVERY", time.Minute),
		OTPStoreBackend: getEnv("OTP_STORE_BACKEND", StoreMemory),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTPrivateKeyPath:  getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:   getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:          getEnvDur("JWT_EXPIRY", 7*24*time.Hour),
		RefreshTokenExpiry: getEnvDur("REFRESH_TOKEN_EXPIRY", 30*24*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@zycare.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
