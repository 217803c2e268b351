package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Orders OrdersConfig
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
	Env          string `envconfig:"DESKLINO_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"DESKLINO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DESKLINO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DESKLINO_DB_DSN"`

	LegacyHost     string `envconfig:"DESKLINO_DB_HOST"`
	LegacyPort     int    `envconfig:"DESKLINO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DESKLINO_DB_USER"`
	LegacyPassword string `envconfig:"DESKLINO_DB_PASSWORD"`
	LegacyName     string `envconfig:"DESKLINO_DB_NAME"`
	LegacySSLMode  string `envconfig:"DESKLINO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DESKLINO_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DESKLINO_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DESKLINO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DESKLINO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type OrdersConfig struct {
	// StrictItems turns an unmatched order item name into a validation
	// error instead of silently dropping the item.
	StrictItems bool `envconfig:"DESKLINO_ORDERS_STRICT_ITEMS" default:"false"`
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
