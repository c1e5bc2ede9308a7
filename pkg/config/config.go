package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Shipping     ShippingConfig
	Mail         MailConfig
	Frontend     FrontendConfig
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
	Env          string `envconfig:"CASSPEA_APP_ENV" required:"true"`
	Port         string `envconfig:"CASSPEA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CASSPEA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CASSPEA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CASSPEA_DB_DSN"`
	Driver string `envconfig:"CASSPEA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CASSPEA_DB_HOST"`
	LegacyPort     int    `envconfig:"CASSPEA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CASSPEA_DB_USER"`
	LegacyPassword string `envconfig:"CASSPEA_DB_PASSWORD"`
	LegacyName     string `envconfig:"CASSPEA_DB_NAME"`
	LegacySSLMode  string `envconfig:"CASSPEA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CASSPEA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CASSPEA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CASSPEA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CASSPEA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CASSPEA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CASSPEA_REDIS_ADDR"`
	Password     string        `envconfig:"CASSPEA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CASSPEA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CASSPEA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CASSPEA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CASSPEA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CASSPEA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CASSPEA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls the anonymous browser session cookie.
type SessionConfig struct {
	CookieName string        `envconfig:"CASSPEA_SESSION_COOKIE" default:"casspea_session"`
	TTL        time.Duration `envconfig:"CASSPEA_SESSION_TTL" default:"336h"`
	Secure     bool          `envconfig:"CASSPEA_SESSION_SECURE" default:"true"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CASSPEA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CASSPEA_JWT_ISSUER" default:"casspea"`
	ExpirationMinutes int    `envconfig:"CASSPEA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CASSPEA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CASSPEA_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"CASSPEA_STRIPE_API_KEY"`
	Secret        string        `envconfig:"CASSPEA_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"CASSPEA_STRIPE_ENV" default:"test"`
	SessionExpiry time.Duration `envconfig:"CASSPEA_STRIPE_SESSION_EXPIRY" default:"30m"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// ShippingConfig holds the free-shipping policy knobs.
type ShippingConfig struct {
	Currency              string `envconfig:"CASSPEA_SHIPPING_CURRENCY" default:"GBP"`
	FreeShippingThreshold string `envconfig:"CASSPEA_FREE_SHIPPING_THRESHOLD" default:"45"`
}

// FreeThreshold parses the configured free-shipping threshold in major units.
func (s ShippingConfig) FreeThreshold() (decimal.Decimal, error) {
	raw := strings.TrimSpace(s.FreeShippingThreshold)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing free shipping threshold %q: %w", raw, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("free shipping threshold cannot be negative")
	}
	return value, nil
}

type MailConfig struct {
	FromEmail string `envconfig:"CASSPEA_MAIL_FROM" default:"hello@casspea.co.uk"`
	SMTPHost  string `envconfig:"CASSPEA_SMTP_HOST"`
	SMTPPort  int    `envconfig:"CASSPEA_SMTP_PORT" default:"587"`
	SMTPUser  string `envconfig:"CASSPEA_SMTP_USER"`
	SMTPPass  string `envconfig:"CASSPEA_SMTP_PASSWORD"`
}

type FrontendConfig struct {
	BaseURL string `envconfig:"CASSPEA_FRONTEND_URL" default:"https://new.casspea.co.uk"`
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
