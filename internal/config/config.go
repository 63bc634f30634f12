package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const productionEnv = "production"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string        `env:"SERVER_PORT,default=8080"`
	AppEnv         string        `env:"APP_ENV,default=development"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
	SwaggerHost    string        `env:"SWAGGER_HOST"`
	ResetDB        bool          `env:"RESET_DB,default=false"`

	MySQLDSN          string        `env:"MYSQL_DSN,default=user:password@tcp(localhost:3306)/gamehub?charset=utf8mb4&parseTime=True&loc=UTC&timeout=5s&readTimeout=10s&writeTimeout=10s"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisDB   int    `env:"REDIS_DB,default=0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret      string `env:"JWT_SECRET,required"`
	JWTExpireHours int    `env:"JWT_EXPIRE_HOURS,default=24"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT,default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM,default=no-reply@gamehub.local"`
	// LogOTPCodes writes issued codes to the log. Development only.
	LogOTPCodes bool `env:"LOG_OTP_CODES,default=false"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE,default=20"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST,default=10"`
}

// Load builds Config from the process environment.
func Load() (*Config, error) {
	return LoadFrom(context.Background(), envconfig.OsLookuper())
}

// LoadFrom builds Config from the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, lookuper); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTExpireHours <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRE_HOURS must be a positive number of hours, got %d", c.JWTExpireHours))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE and RATE_LIMIT_BURST must be positive"))
	}
	if c.IsProduction() {
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required in production"))
		}
		if c.LogOTPCodes {
			errs = append(errs, errors.New("LOG_OTP_CODES must not be enabled in production"))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether cookies and notifications run in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == productionEnv
}

// SessionTTL is the lifetime of a session token and its cookie.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWTExpireHours) * time.Hour
}
