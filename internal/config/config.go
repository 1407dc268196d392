package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "EVENTS"

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds settings for the wizard session store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds broker settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// JWTConfig holds token settings.
type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// StripeConfig selects and configures the payment gateway.
type StripeConfig struct {
	Gateway       string
	SecretKey     string
	PaymentMethod string
}

// S3Config configures the event image bucket. Endpoint is only set for
// S3-compatible stores such as MinIO.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	Enabled       bool
	CollectorAddr string
	SampleRatio   float64
}

// WizardConfig holds event-creation workflow settings.
type WizardConfig struct {
	SessionStore  string
	SessionTTL    time.Duration
	Timezone      string
	Currency      string
	MaxImageBytes int64
}

// ServiceConfig holds all configuration for the event-creation service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	Version         string
	AllowedOrigins  []string
	DBConfig        DatabaseConfig
	RedisConfig     RedisConfig
	KafkaConfig     KafkaConfig
	JWTConfig       JWTConfig
	StripeConfig    StripeConfig
	S3Config        S3Config
	TelemetryConfig TelemetryConfig
	WizardConfig    WizardConfig
}

// Load reads configuration from the environment, after loading a .env file if present.
func Load() (*ServiceConfig, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:           ":" + strings.TrimPrefix(v.GetString("SERVICE_PORT"), ":"),
		AppEnv:         v.GetString("APP_ENV"),
		Version:        v.GetString("APP_VERSION"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		DBConfig: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		JWTConfig: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		StripeConfig: StripeConfig{
			Gateway:       v.GetString("PAYMENT_GATEWAY"),
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			PaymentMethod: v.GetString("STRIPE_PAYMENT_METHOD"),
		},
		S3Config: S3Config{
			Bucket:          v.GetString("S3_BUCKET"),
			Region:          v.GetString("S3_REGION"),
			Endpoint:        v.GetString("S3_ENDPOINT"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},
		TelemetryConfig: TelemetryConfig{
			Enabled:       v.GetBool("OTEL_ENABLED"),
			CollectorAddr: v.GetString("OTEL_COLLECTOR_ADDR"),
			SampleRatio:   v.GetFloat64("OTEL_SAMPLE_RATIO"),
		},
		WizardConfig: WizardConfig{
			SessionStore:  v.GetString("WIZARD_SESSION_STORE"),
			SessionTTL:    v.GetDuration("WIZARD_SESSION_TTL"),
			Timezone:      v.GetString("WIZARD_TIMEZONE"),
			Currency:      v.GetString("WIZARD_CURRENCY"),
			MaxImageBytes: v.GetInt64("WIZARD_MAX_IMAGE_BYTES"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ALLOWED_ORIGINS", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "event_creation")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "eventra-")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")

	v.SetDefault("PAYMENT_GATEWAY", "mock")
	v.SetDefault("STRIPE_PAYMENT_METHOD", "pm_card_visa")

	v.SetDefault("S3_BUCKET", "event-images")
	v.SetDefault("S3_REGION", "ap-south-1")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	v.SetDefault("WIZARD_SESSION_STORE", "redis")
	v.SetDefault("WIZARD_SESSION_TTL", "2h")
	v.SetDefault("WIZARD_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("WIZARD_CURRENCY", "INR")
	v.SetDefault("WIZARD_MAX_IMAGE_BYTES", 5<<20)
}

// Validate rejects configurations the service cannot start with.
func (c *ServiceConfig) Validate() error {
	var errs []error
	if c.JWTConfig.Secret == "" {
		errs = append(errs, errors.New("JWT secret is required"))
	}
	if len(c.KafkaConfig.Brokers) == 0 {
		errs = append(errs, errors.New("at least one Kafka broker is required"))
	}
	if c.StripeConfig.Gateway == "stripe" && c.StripeConfig.SecretKey == "" {
		errs = append(errs, errors.New("stripe secret key is required when the stripe gateway is selected"))
	}
	switch c.WizardConfig.SessionStore {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q", c.WizardConfig.SessionStore))
	}
	if _, err := time.LoadLocation(c.WizardConfig.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid wizard timezone: %w", err))
	}
	if c.WizardConfig.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("max image size must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Location returns the time zone in which wizard dates and times are interpreted.
func (c WizardConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
