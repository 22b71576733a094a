package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App        AppConfig
	Redis      RedisConfig
	Gemini     GeminiConfig
	Completion CompletionConfig
	Reconcile  ReconcileConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TROLLEY_APP_ENV" default:"dev"`
	Port         string `envconfig:"TROLLEY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"TROLLEY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TROLLEY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"TROLLEY_REDIS_URL"`
	Address      string        `envconfig:"TROLLEY_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"TROLLEY_REDIS_PASSWORD"`
	DB           int           `envconfig:"TROLLEY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TROLLEY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TROLLEY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TROLLEY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TROLLEY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TROLLEY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"TROLLEY_GEMINI_API_KEY"`
	Model  string `envconfig:"TROLLEY_GEMINI_MODEL" default:"gemini-2.0-flash"`
	// Prompt tuning. ContextTerms holds household shorthand as
	// term:meaning pairs ("the usual bread:Hovis Soft White Medium").
	UseUKEnglish       bool              `envconfig:"TROLLEY_ENRICH_UK_ENGLISH" default:"true"`
	CustomInstructions string            `envconfig:"TROLLEY_ENRICH_CUSTOM_INSTRUCTIONS"`
	ContextTerms       map[string]string `envconfig:"TROLLEY_ENRICH_CONTEXT_TERMS"`
}

// CompletionConfig tunes the shop-completion delete loop and the
// completion lease.
type CompletionConfig struct {
	DeleteRetries   int           `envconfig:"TROLLEY_COMPLETE_DELETE_RETRIES" default:"3"`
	DeleteBackoff   time.Duration `envconfig:"TROLLEY_COMPLETE_DELETE_BACKOFF" default:"100ms"`
	LeaseTTL        time.Duration `envconfig:"TROLLEY_COMPLETE_LEASE_TTL" default:"30s"`
	BulkCallTimeout time.Duration `envconfig:"TROLLEY_BULK_CALL_TIMEOUT" default:"10m"`
}

// ReconcileConfig tunes the archive reconciliation worker.
type ReconcileConfig struct {
	Interval time.Duration `envconfig:"TROLLEY_RECONCILE_INTERVAL" default:"10m"`
	Window   time.Duration `envconfig:"TROLLEY_RECONCILE_WINDOW" default:"48h"`
	LockTTL  time.Duration `envconfig:"TROLLEY_RECONCILE_LOCK_TTL" default:"9m"`
}
