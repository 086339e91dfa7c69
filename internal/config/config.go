package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`

	Database  Database  `envPrefix:"DATABASE_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	Paypal    Paypal    `envPrefix:"PAYPAL_"`
	BrainTree Braintree `envPrefix:"BRAINTREE_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Chat      Chat      `envPrefix:"CHAT_"`
	Supabase  Supabase  `envPrefix:"SUPABASE_"`
	Credit    Credit    `envPrefix:"PLAN_CREDITING_"`
}

type Database struct {
	Driver string `env:"DRIVER" envDefault:"postgres"` // postgres, mysql, sqlite
	URL    string `env:"URL"`
}

type Auth struct {
	// Supabase signs access tokens with the project's JWT secret (HS256).
	JWTSecret string `env:"JWT_SECRET"`
}

type Paypal struct {
	BaseApiURL   string `env:"BASE_API_URL" envDefault:"https://api-m.sandbox.paypal.com"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
	BrandName    string `env:"BRAND_NAME" envDefault:"ReviewProMax"`
}

type Braintree struct {
	Environment string `env:"ENVIRONMENT" envDefault:"sandbox"`
	MerchantID  string `env:"MERCHANT_ID"`
	PublicKey   string `env:"PUBLIC_KEY"`
	PrivateKey  string `env:"PRIVATE_KEY"`
}

// Enabled reports whether card checkout can be offered.
func (b Braintree) Enabled() bool {
	return b.MerchantID != "" && b.PublicKey != "" && b.PrivateKey != ""
}

type Redis struct {
	URL          string        `env:"URL"`
	SweepLockTTL time.Duration `env:"SWEEP_LOCK_TTL" envDefault:"2m"`
}

type Chat struct {
	APIKey       string  `env:"API_KEY"`
	BaseURL      string  `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model        string  `env:"MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens    int     `env:"MAX_TOKENS" envDefault:"500"`
	Temperature  float64 `env:"TEMPERATURE" envDefault:"0.7"`
	RatePerMin   float64 `env:"RATE_PER_MIN" envDefault:"20"`
	SystemPrompt string  `env:"SYSTEM_PROMPT"`
}

type Supabase struct {
	URL            string `env:"URL"`
	ServiceRoleKey string `env:"SERVICE_ROLE_KEY"`
}

type Credit struct {
	Mode string `env:"MODE" envDefault:"app"` // app, procedure
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (h HTTPServer) Address() string {
	return h.Host + ":" + h.Port
}

// Validate checks the settings the service cannot start without. PayPal
// credentials are deliberately not checked here: a missing credential only
// fails the requests that need it.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	switch c.Credit.Mode {
	case "app":
	case "procedure":
		if c.Database.Driver != "postgres" {
			return errors.New("procedure crediting requires the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported plan crediting mode %q", c.Credit.Mode)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}
