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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Geo          GeoConfig
	Payment      PaymentConfig
	Sendgrid     SendgridConfig
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
	Env          string `envconfig:"RENTKART_APP_ENV" required:"true"`
	Port         string `envconfig:"RENTKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RENTKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RENTKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RENTKART_DB_DSN"`
	Driver string `envconfig:"RENTKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RENTKART_DB_HOST"`
	LegacyPort     int    `envconfig:"RENTKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RENTKART_DB_USER"`
	LegacyPassword string `envconfig:"RENTKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"RENTKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"RENTKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENTKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENTKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENTKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RENTKART_REDIS_ADDR"`
	Password     string        `envconfig:"RENTKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENTKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RENTKART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RENTKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RENTKART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RENTKART_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RENTKART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RENTKART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RENTKART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RENTKART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RENTKART_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RENTKART_AUTO_MIGRATE" default:"false"`
}

// GeoConfig points at the geocoding and routing services used for
// delivery distance lookups.
type GeoConfig struct {
	GeocodeBaseURL string        `envconfig:"RENTKART_GEO_GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	RoutingBaseURL string        `envconfig:"RENTKART_GEO_ROUTING_BASE_URL" default:"https://router.project-osrm.org"`
	Timeout        time.Duration `envconfig:"RENTKART_GEO_TIMEOUT" default:"10s"`
}

type PaymentConfig struct {
	WebhookSecret string `envconfig:"RENTKART_PAYMENT_WEBHOOK_SECRET"`
}

type SendgridConfig struct {
	APIKey    string `envconfig:"RENTKART_SENDGRID_API_KEY"`
	FromEmail string `envconfig:"RENTKART_SENDGRID_FROM_EMAIL"`
	FromName  string `envconfig:"RENTKART_SENDGRID_FROM_NAME" default:"RentKart"`
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
