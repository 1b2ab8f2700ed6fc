package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host           string
	Port           int
	RequestTimeout time.Duration
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type PaymentConfig struct {
	SecretKey       string
	Currency        string
	MinorUnitFactor int64
	Timeout         time.Duration
}

type MailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	Timeout        time.Duration
}

type TicketConfig struct {
	Prefix        string
	CurrencyLabel string
}

type Config struct {
	Environment string
	Location    *time.Location
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Payment     PaymentConfig
	Mail        MailConfig
	Ticket      TicketConfig
}

// Load reads the full service configuration.
func Load() (*Config, error) {
	return load(validate)
}

// LoadTooling reads the configuration for operator commands, which only
// need the database.
func LoadTooling() (*Config, error) {
	return load(validateDB)
}

func load(check func(*Config) error) (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return fromViper(v, check)
}

func fromViper(v *viper.Viper, check func(*Config) error) (*Config, error) {
	setDefaults(v)

	loc, err := time.LoadLocation(v.GetString("APP_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		Location:    loc,
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			RequestTimeout: v.GetDuration("HTTP_REQUEST_TIMEOUT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			QueryTimeout:    v.GetDuration("DB_QUERY_TIMEOUT"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		},
		Payment: PaymentConfig{
			SecretKey:       v.GetString("STRIPE_SECRET_KEY"),
			Currency:        v.GetString("PAYMENT_CURRENCY"),
			MinorUnitFactor: v.GetInt64("PAYMENT_MINOR_UNIT_FACTOR"),
			Timeout:         v.GetDuration("PAYMENT_TIMEOUT"),
		},
		Mail: MailConfig{
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			FromEmail:      v.GetString("MAIL_FROM_EMAIL"),
			FromName:       v.GetString("MAIL_FROM_NAME"),
			Timeout:        v.GetDuration("MAIL_TIMEOUT"),
		},
		Ticket: TicketConfig{
			Prefix:        v.GetString("TICKET_PREFIX"),
			CurrencyLabel: v.GetString("CURRENCY_LABEL"),
		},
	}

	if err := check(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Local")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("HTTP_REQUEST_TIMEOUT", 10*time.Second)
	v.SetDefault("DB_QUERY_TIMEOUT", 5*time.Second)
	v.SetDefault("JWT_ACCESS_TTL", 12*time.Hour)
	v.SetDefault("PAYMENT_CURRENCY", "mwk")
	v.SetDefault("PAYMENT_MINOR_UNIT_FACTOR", 100)
	v.SetDefault("PAYMENT_TIMEOUT", 20*time.Second)
	v.SetDefault("MAIL_FROM_NAME", "Traffic Police")
	v.SetDefault("MAIL_TIMEOUT", 10*time.Second)
	v.SetDefault("TICKET_PREFIX", "TK")
	v.SetDefault("CURRENCY_LABEL", "MWK")
}

func validateDB(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	return nil
}

func validate(cfg *Config) error {
	if err := validateDB(cfg); err != nil {
		return err
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Payment.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.Mail.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is required")
	}
	if cfg.Mail.FromEmail == "" {
		return fmt.Errorf("MAIL_FROM_EMAIL is required")
	}
	if cfg.Payment.MinorUnitFactor <= 0 {
		return fmt.Errorf("PAYMENT_MINOR_UNIT_FACTOR must be positive")
	}
	if cfg.HTTP.Port <= 0 {
		return fmt.Errorf("HTTP_PORT must be positive")
	}
	return nil
}
