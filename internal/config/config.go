package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Push relay backends selectable through PUSH_RELAY.
const (
	PushRelayFCM  = "fcm"
	PushRelaySNS  = "sns"
	PushRelayNone = "none"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	PushRelay                 string
	PushTimeout               time.Duration
	FirebaseCredentialsPath   string
	SNSRegion                 string
	SNSPlatformApplicationARN string

	BulkMaxConcurrency int
	BulkWaveBudget     time.Duration
	AllowedOrigins     []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                 string
	Sessions              string
	Notifications         string
	NotificationLogs      string
	NotificationTemplates string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                 getEnv("DYNAMO_TABLE_USERS", "users"),
			Sessions:              getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Notifications:         getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			NotificationLogs:      getEnv("DYNAMO_TABLE_NOTIFICATION_LOGS", "notification_logs"),
			NotificationTemplates: getEnv("DYNAMO_TABLE_NOTIFICATION_TEMPLATES", "notification_templates"),
		},
		JWTPrivateKeyPath:         getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:          getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:                 time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		PushRelay:                 strings.ToLower(getEnv("PUSH_RELAY", PushRelayNone)),
		PushTimeout:               getEnvDuration("PUSH_TIMEOUT", 10*time.Second),
		FirebaseCredentialsPath:   getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		SNSRegion:                 getEnv("SNS_REGION", "us-east-1"),
		SNSPlatformApplicationARN: getEnv("SNS_PLATFORM_APPLICATION_ARN", ""),
		BulkMaxConcurrency:        getEnvInt("BULK_MAX_CONCURRENCY", 16),
		BulkWaveBudget:            getEnvDuration("BULK_WAVE_BUDGET", 3*time.Second),
		AllowedOrigins:            strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// AgentConfig configures the device-side push agent.
type AgentConfig struct {
	APIURL            string
	StorePath         string
	ReconcileSchedule string // cron schedule used by "watch"
}

// LoadAgent reads the push agent configuration from environment variables.
func LoadAgent() *AgentConfig {
	return &AgentConfig{
		APIURL:            getEnv("AGENT_API_URL", "http://localhost:3000"),
		StorePath:         getEnv("AGENT_STORE_PATH", "./pushagent.db"),
		ReconcileSchedule: getEnv("AGENT_RECONCILE_SCHEDULE", "@every 1m"),
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

// getEnvDuration accepts Go duration strings ("15s", "2m").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
