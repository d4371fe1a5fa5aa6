package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BaseURL is the public origin used in verification links.
	BaseURL string `env:"BASE_URL, required"`

	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	SMTP   SMTPConfig
	Avatar AvatarConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=23h"`
	// ResendCooldown is the minimum gap between verification resends for one
	// address. Zero disables it.
	ResendCooldown time.Duration `env:"VERIFY_RESEND_COOLDOWN, default=1m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=phonebook"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST,     default=localhost"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM,     default=noreply@phonebook.local"`
	// Delivery is "strict" or "best_effort".
	Delivery string `env:"MAIL_DELIVERY, default=strict"`
	Workers  int    `env:"MAIL_WORKERS,  default=4"`
}

type AvatarConfig struct {
	PublicDir string `env:"AVATAR_PUBLIC_DIR, default=public"`
	TmpDir    string `env:"AVATAR_TMP_DIR,    default=tmp"`
	MaxBytes  int64  `env:"AVATAR_MAX_BYTES,  default=5242880"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the cross-field rules envconfig tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("BASE_URL must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.Auth.ResendCooldown < 0 {
		errs = append(errs, errors.New("VERIFY_RESEND_COOLDOWN must not be negative"))
	}
	switch c.SMTP.Delivery {
	case "strict", "best_effort":
	default:
		errs = append(errs, fmt.Errorf("MAIL_DELIVERY must be strict or best_effort, got %q", c.SMTP.Delivery))
	}
	if c.SMTP.Workers <= 0 {
		errs = append(errs, errors.New("MAIL_WORKERS must be positive"))
	}
	if c.Avatar.MaxBytes <= 0 {
		errs = append(errs, errors.New("AVATAR_MAX_BYTES must be positive"))
	}
	if c.Avatar.PublicDir == "" || c.Avatar.TmpDir == "" {
		errs = append(errs, errors.New("AVATAR_PUBLIC_DIR and AVATAR_TMP_DIR must be set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
