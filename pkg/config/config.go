package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "IAP"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv       = "IAP_APP_ENV"
	EnvPort         = "IAP_APP_PORT"
	EnvDBPath       = "IAP_DB_PATH"
	EnvSharedSecret = "IAP_SHARED_SECRET"
	EnvWebhookURL   = "IAP_WEBHOOK_URL"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Notifications NotificationsConfig
	Webhook       WebhookConfig
	Receipts      ReceiptsConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"IAP_APP_ENV" required:"true"`
	Port         string `envconfig:"IAP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"IAP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IAP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path            string        `envconfig:"IAP_DB_PATH" default:"iapserver.db"`
	BusyTimeout     time.Duration `envconfig:"IAP_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns    int           `envconfig:"IAP_DB_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int           `envconfig:"IAP_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"IAP_DB_CONN_MAX_LIFETIME" default:"1h"`
}

type NotificationsConfig struct {
	SharedSecret string `envconfig:"IAP_SHARED_SECRET" required:"true"`
}

type WebhookConfig struct {
	TargetURL string        `envconfig:"IAP_WEBHOOK_URL"`
	Timeout   time.Duration `envconfig:"IAP_WEBHOOK_TIMEOUT" default:"5s"`
	Workers   int           `envconfig:"IAP_WEBHOOK_WORKERS" default:"4"`
	QueueSize int           `envconfig:"IAP_WEBHOOK_QUEUE_SIZE" default:"64"`
}

// Enabled reports whether a downstream webhook target is configured.
func (w WebhookConfig) Enabled() bool {
	return strings.TrimSpace(w.TargetURL) != ""
}

type ReceiptsConfig struct {
	ValidationURL string        `envconfig:"IAP_RECEIPT_VALIDATION_URL" default:"https://buy.itunes.apple.com/verifyReceipt"`
	Timeout       time.Duration `envconfig:"IAP_RECEIPT_VALIDATION_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"IAP_AUTO_MIGRATE" default:"false"`
}
