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
	Identity     IdentityConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Storage      StorageConfig
	Mail         MailConfig
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
	Env          string `envconfig:"ASSETLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"ASSETLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ASSETLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ASSETLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ASSETLINE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ASSETLINE_DB_DSN"`
	Driver string `envconfig:"ASSETLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ASSETLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"ASSETLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ASSETLINE_DB_USER"`
	LegacyPassword string `envconfig:"ASSETLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ASSETLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ASSETLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ASSETLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ASSETLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ASSETLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ASSETLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ASSETLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ASSETLINE_REDIS_ADDR"`
	Password     string        `envconfig:"ASSETLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ASSETLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ASSETLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ASSETLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ASSETLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ASSETLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ASSETLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ASSETLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ASSETLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ASSETLINE_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type IdentityConfig struct {
	BaseURL string        `envconfig:"ASSETLINE_IDENTITY_BASE_URL"`
	Timeout time.Duration `envconfig:"ASSETLINE_IDENTITY_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ASSETLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ASSETLINE_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"ASSETLINE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ASSETLINE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ASSETLINE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ASSETLINE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"ASSETLINE_PUBSUB_NOTIFICATION_TOPIC" default:"al-notification-events"`
	NotificationSubscription string `envconfig:"ASSETLINE_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type StorageConfig struct {
	UploadsDir  string `envconfig:"ASSETLINE_UPLOADS_DIR" default:"./uploads"`
	MaxUploadMB int    `envconfig:"ASSETLINE_MAX_UPLOAD_MB" default:"10"`
}

type MailConfig struct {
	Host        string        `envconfig:"ASSETLINE_SMTP_HOST"`
	Port        int           `envconfig:"ASSETLINE_SMTP_PORT" default:"587"`
	Username    string        `envconfig:"ASSETLINE_SMTP_USERNAME"`
	Password    string        `envconfig:"ASSETLINE_SMTP_PASSWORD"`
	DefaultFrom string        `envconfig:"ASSETLINE_SMTP_FROM_EMAIL"`
	AdminEmail  string        `envconfig:"ASSETLINE_ADMIN_EMAIL"`
	SendTimeout time.Duration `envconfig:"ASSETLINE_SMTP_SEND_TIMEOUT" default:"15s"`
	MaxRetries  int           `envconfig:"ASSETLINE_SMTP_MAX_RETRIES" default:"3"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ASSETLINE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ASSETLINE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ASSETLINE_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
