// Package config loads service settings from an optional YAML file, a .env
// file and PAYMENTS_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "PAYMENTS"

var Drivers = []string{"memory", "sqlite", "mysql", "postgres", "mongo"}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	PayPal   PayPalConfig   `mapstructure:"paypal"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Redirect RedirectConfig `mapstructure:"redirect"`
	SQS      SQSConfig      `mapstructure:"sqs"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// Database is the MongoDB database name.
	Database string `mapstructure:"database"`
}

type PayPalConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Mode         string `mapstructure:"mode"`
	APIBase      string `mapstructure:"api_base"`
	BrandName    string `mapstructure:"brand_name"`
}

type PaymentConfig struct {
	Currency      string `mapstructure:"currency"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type RedirectConfig struct {
	Scheme string `mapstructure:"scheme"`
}

type SQSConfig struct {
	QueueURL  string `mapstructure:"queue_url"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "payments.db")
	v.SetDefault("store.database", "payments")
	v.SetDefault("paypal.client_id", "")
	v.SetDefault("paypal.client_secret", "")
	v.SetDefault("paypal.mode", "sandbox")
	v.SetDefault("paypal.api_base", "")
	v.SetDefault("paypal.brand_name", "Storefront")
	v.SetDefault("payment.currency", "USD")
	v.SetDefault("payment.public_base_url", "http://localhost:5000")
	v.SetDefault("redirect.scheme", "flutter")
	v.SetDefault("sqs.queue_url", "")
	v.SetDefault("sqs.region", "us-east-1")
	v.SetDefault("sqs.access_key", "")
	v.SetDefault("sqs.secret_key", "")
	v.SetDefault("sqs.endpoint", "")
}

// Load reads configuration. configFile may be empty. A missing envFile is not
// an error.
func Load(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unprefixed names kept for existing deployments.
	_ = v.BindEnv("paypal.client_id", EnvPrefix+"_PAYPAL_CLIENT_ID", "PAYPAL_CLIENT_ID")
	_ = v.BindEnv("paypal.client_secret", EnvPrefix+"_PAYPAL_CLIENT_SECRET", "PAYPAL_CLIENT_SECRET")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Payment.Currency = strings.ToUpper(strings.TrimSpace(cfg.Payment.Currency))
	cfg.Payment.PublicBaseURL = strings.TrimRight(cfg.Payment.PublicBaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !slices.Contains(Drivers, c.Store.Driver) {
		return fmt.Errorf("store.driver %q: must be one of %s", c.Store.Driver, strings.Join(Drivers, ", "))
	}
	if c.Store.Driver != "memory" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for driver %s", c.Store.Driver)
	}
	if len(c.Payment.Currency) != 3 {
		return fmt.Errorf("payment.currency %q: must be an ISO 4217 code", c.Payment.Currency)
	}
	if _, err := url.ParseRequestURI(c.Payment.PublicBaseURL); err != nil {
		return fmt.Errorf("payment.public_base_url: %w", err)
	}
	if c.Redirect.Scheme == "" {
		return errors.New("redirect.scheme is required")
	}
	return nil
}

// PayPalEnabled reports whether provider credentials are configured.
func (c *Config) PayPalEnabled() bool {
	return c.PayPal.ClientID != "" && c.PayPal.ClientSecret != ""
}

func (c *Config) ReturnURL() string {
	return c.Payment.PublicBaseURL + "/payment/success"
}

func (c *Config) CancelURL() string {
	return c.Payment.PublicBaseURL + "/payment/cancel"
}
