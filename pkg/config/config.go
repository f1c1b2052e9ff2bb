package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Leaderboard  LeaderboardConfig
	Awards       AwardsConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Eventing     EventingConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ENGAGE_APP_ENV" required:"true"`
	Port         string `envconfig:"ENGAGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ENGAGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ENGAGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ENGAGE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ENGAGE_DB_DSN"`
	Driver string `envconfig:"ENGAGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ENGAGE_DB_HOST"`
	LegacyPort     int    `envconfig:"ENGAGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ENGAGE_DB_USER"`
	LegacyPassword string `envconfig:"ENGAGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ENGAGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ENGAGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ENGAGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ENGAGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ENGAGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ENGAGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ENGAGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ENGAGE_REDIS_ADDR"`
	Password     string        `envconfig:"ENGAGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ENGAGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ENGAGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ENGAGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ENGAGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ENGAGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ENGAGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ENGAGE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ENGAGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ENGAGE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshExpirationHours int    `envconfig:"ENGAGE_JWT_REFRESH_EXPIRATION_HOURS" default:"168"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshExpirationHours <= 0 {
		return 0
	}
	return time.Duration(j.RefreshExpirationHours) * time.Hour
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ENGAGE_AUTO_MIGRATE" default:"false"`
}

// LeaderboardConfig bounds the public rankings output.
type LeaderboardConfig struct {
	PublicCap    int `envconfig:"ENGAGE_LEADERBOARD_PUBLIC_CAP" default:"100"`
	NearbyRadius int `envconfig:"ENGAGE_LEADERBOARD_NEARBY_RADIUS" default:"2"`
}

// AwardsConfig toggles system-side award behavior.
type AwardsConfig struct {
	LevelDivisor int `envconfig:"ENGAGE_AWARDS_LEVEL_DIVISOR" default:"100"`
}

type CronConfig struct {
	Interval                  time.Duration `envconfig:"ENGAGE_CRON_INTERVAL" default:"1h"`
	NotificationRetentionDays int           `envconfig:"ENGAGE_CRON_NOTIFICATION_RETENTION_DAYS" default:"30"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ENGAGE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ENGAGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ENGAGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EngagementTopic           string `envconfig:"ENGAGE_PUBSUB_ENGAGEMENT_TOPIC" required:"true"`
	AnalyticsSubscription     string `envconfig:"ENGAGE_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
	NotificationsSubscription string `envconfig:"ENGAGE_PUBSUB_NOTIFICATIONS_SUBSCRIPTION"`
}

type BigQueryConfig struct {
	Dataset               string `envconfig:"ENGAGE_BIGQUERY_DATASET" default:"engage"`
	EngagementEventsTable string `envconfig:"ENGAGE_BIGQUERY_ENGAGEMENT_TABLE" default:"engagement_events"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"ENGAGE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ENGAGE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ENGAGE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ENGAGE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
