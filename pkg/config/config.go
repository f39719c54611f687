package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "standupstrip"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Gemini        GeminiConfig
	SMTP          SMTPConfig
	Mailer        MailerConfig
	Frontend      FrontendConfig
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
	Env          string `envconfig:"STANDUPSTRIP_APP_ENV" required:"true"`
	Port         string `envconfig:"STANDUPSTRIP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STANDUPSTRIP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STANDUPSTRIP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STANDUPSTRIP_DB_DSN"`
	Driver string `envconfig:"STANDUPSTRIP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STANDUPSTRIP_DB_HOST"`
	Port     int    `envconfig:"STANDUPSTRIP_DB_PORT" default:"5432"`
	User     string `envconfig:"STANDUPSTRIP_DB_USER"`
	Password string `envconfig:"STANDUPSTRIP_DB_PASSWORD"`
	Name     string `envconfig:"STANDUPSTRIP_DB_NAME"`
	SSLMode  string `envconfig:"STANDUPSTRIP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STANDUPSTRIP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STANDUPSTRIP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STANDUPSTRIP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STANDUPSTRIP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	if db.Host == "" {
		missing = append(missing, "STANDUPSTRIP_DB_HOST")
	}
	if db.User == "" {
		missing = append(missing, "STANDUPSTRIP_DB_USER")
	}
	if db.Name == "" {
		missing = append(missing, "STANDUPSTRIP_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("database config incomplete: set STANDUPSTRIP_DB_DSN or %s", strings.Join(missing, ", "))
	}

	db.DSN = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
	return nil
}

type RedisConfig struct {
	Address      string        `envconfig:"STANDUPSTRIP_REDIS_ADDR"`
	Password     string        `envconfig:"STANDUPSTRIP_REDIS_PASSWORD"`
	DB           int           `envconfig:"STANDUPSTRIP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STANDUPSTRIP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STANDUPSTRIP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STANDUPSTRIP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STANDUPSTRIP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STANDUPSTRIP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Rate limiting is
// skipped when it is absent.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STANDUPSTRIP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STANDUPSTRIP_JWT_ISSUER" default:"standupstrip"`
	ExpirationMinutes int    `envconfig:"STANDUPSTRIP_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STANDUPSTRIP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STANDUPSTRIP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STANDUPSTRIP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STANDUPSTRIP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STANDUPSTRIP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STANDUPSTRIP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"STANDUPSTRIP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"STANDUPSTRIP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"STANDUPSTRIP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"STANDUPSTRIP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"STANDUPSTRIP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite            bool `envconfig:"STANDUPSTRIP_USE_SQLITE" default:"false"`
	AutoMigrate          bool `envconfig:"STANDUPSTRIP_AUTO_MIGRATE" default:"false"`
	RequireVerifiedEmail bool `envconfig:"STANDUPSTRIP_REQUIRE_VERIFIED_EMAIL" default:"false"`
}

type GeminiConfig struct {
	APIKey  string        `envconfig:"STANDUPSTRIP_GEMINI_API_KEY"`
	APIURL  string        `envconfig:"STANDUPSTRIP_GEMINI_API_URL" default:"https://generativelanguage.googleapis.com/v1beta"`
	Model   string        `envconfig:"STANDUPSTRIP_GEMINI_MODEL" default:"gemini-2.0-flash"`
	Timeout time.Duration `envconfig:"STANDUPSTRIP_GEMINI_TIMEOUT" default:"30s"`
}

// Configured reports whether the AI summary path can be attempted at all.
func (g GeminiConfig) Configured() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

type SMTPConfig struct {
	Host           string        `envconfig:"STANDUPSTRIP_SMTP_HOST"`
	Port           int           `envconfig:"STANDUPSTRIP_SMTP_PORT" default:"587"`
	Username       string        `envconfig:"STANDUPSTRIP_SMTP_USERNAME"`
	Password       string        `envconfig:"STANDUPSTRIP_SMTP_PASSWORD"`
	From           string        `envconfig:"STANDUPSTRIP_SMTP_FROM"`
	SkipTLSVerify  bool          `envconfig:"STANDUPSTRIP_SMTP_SKIP_TLS_VERIFY" default:"false"`
	ConnectTimeout time.Duration `envconfig:"STANDUPSTRIP_SMTP_CONNECT_TIMEOUT" default:"10s"`
	SendTimeout    time.Duration `envconfig:"STANDUPSTRIP_SMTP_SEND_TIMEOUT" default:"10s"`
}

// Configured reports whether outbound mail can be attempted.
func (s SMTPConfig) Configured() bool {
	return strings.TrimSpace(s.Host) != "" && strings.TrimSpace(s.From) != ""
}

type MailerConfig struct {
	Workers   int `envconfig:"STANDUPSTRIP_MAILER_WORKERS" default:"4"`
	QueueSize int `envconfig:"STANDUPSTRIP_MAILER_QUEUE_SIZE" default:"64"`
}

type FrontendConfig struct {
	BaseURL string `envconfig:"STANDUPSTRIP_FRONTEND_URL" default:"http://localhost:3000"`
}
