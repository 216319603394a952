package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"farmshare-backend/internal/domain"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	JWT           JWTConfig           `yaml:"jwt"`
	Log           LogConfig           `yaml:"log"`
	Booking       BookingConfig       `yaml:"booking"`
	Wallet        WalletConfig        `yaml:"wallet"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"` // health and reflection only
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains booking engine policy
type BookingConfig struct {
	PlatformFeeRate string `yaml:"platform_fee_rate"` // decimal string, e.g. "0.15"
	OTPLength       int    `yaml:"otp_length"`
	// ExposeOTPs lets the renter read OTPs through the API.
	ExposeOTPs bool `yaml:"expose_otps"`
}

// WalletConfig contains top-up limits in minor units (paise)
type WalletConfig struct {
	MinTopUp               int64 `yaml:"min_top_up"`
	MaxTopUp               int64 `yaml:"max_top_up"`
	PendingTopUpTTLMinutes int   `yaml:"pending_top_up_ttl_minutes"`
}

// GatewayConfig selects the payment gateway
type GatewayConfig struct {
	Mode            string `yaml:"mode"` // "test" or "stripe"
	StripeSecretKey string `yaml:"stripe_secret_key"`
	Currency        string `yaml:"currency"`
}

// NotificationsConfig contains status-change notifier settings
type NotificationsConfig struct {
	LogSMS   bool           `yaml:"log_sms"`
	Inbox    bool           `yaml:"inbox"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
	NSQ      NSQConfig      `yaml:"nsq"`
}

type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

type NSQConfig struct {
	Address string `yaml:"address"`
	Topic   string `yaml:"topic"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RetryEscrowSettlements string `yaml:"retry_escrow_settlements"`
	ExpireStaleTopUps      string `yaml:"expire_stale_top_ups"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated configuration from YAML bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Booking
	if val := os.Getenv("PLATFORM_FEE_RATE"); val != "" {
		c.Booking.PlatformFeeRate = val
	}

	// Gateway
	if val := os.Getenv("PAYMENT_GATEWAY_MODE"); val != "" {
		c.Gateway.Mode = val
	}
	if val := os.Getenv("STRIPE_SECRET_KEY"); val != "" {
		c.Gateway.StripeSecretKey = val
	}

	// Notifications
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Notifications.SendGrid.APIKey = val
	}
	if val := os.Getenv("NSQ_ADDRESS"); val != "" {
		c.Notifications.NSQ.Address = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = c.Server.Port + 1
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry == 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Booking defaults
	if c.Booking.PlatformFeeRate == "" {
		c.Booking.PlatformFeeRate = "0.15"
	}
	if c.Booking.OTPLength == 0 {
		c.Booking.OTPLength = 4
	}
	if _, err := c.Policy(); err != nil {
		return err
	}

	// Wallet defaults: ₹100 to ₹50,000 per top-up
	if c.Wallet.MinTopUp == 0 {
		c.Wallet.MinTopUp = 10000
	}
	if c.Wallet.MaxTopUp == 0 {
		c.Wallet.MaxTopUp = 5000000
	}
	if c.Wallet.MinTopUp > c.Wallet.MaxTopUp {
		return fmt.Errorf("wallet min top-up %d exceeds max %d", c.Wallet.MinTopUp, c.Wallet.MaxTopUp)
	}
	if c.Wallet.PendingTopUpTTLMinutes == 0 {
		c.Wallet.PendingTopUpTTLMinutes = 30
	}

	// Gateway validation
	c.Gateway.Mode = strings.ToLower(c.Gateway.Mode)
	switch c.Gateway.Mode {
	case "":
		c.Gateway.Mode = "test"
	case "test":
	case "stripe":
		if c.Gateway.StripeSecretKey == "" {
			return fmt.Errorf("stripe secret key is required in stripe mode")
		}
	default:
		return fmt.Errorf("unknown payment gateway mode: %s", c.Gateway.Mode)
	}
	if c.Gateway.Currency == "" {
		c.Gateway.Currency = "inr"
	}

	if c.Notifications.NSQ.Address != "" && c.Notifications.NSQ.Topic == "" {
		c.Notifications.NSQ.Topic = "booking_status_changed"
	}

	// Scheduler defaults
	if c.Scheduler.RetryEscrowSettlements == "" {
		c.Scheduler.RetryEscrowSettlements = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.ExpireStaleTopUps == "" {
		c.Scheduler.ExpireStaleTopUps = "0 */15 * * * *" // every 15 minutes
	}

	return nil
}

// Policy returns the booking policy described by the configuration
func (c *Config) Policy() (domain.Policy, error) {
	rate, err := decimal.NewFromString(c.Booking.PlatformFeeRate)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("invalid platform fee rate %q: %w", c.Booking.PlatformFeeRate, err)
	}
	p := domain.Policy{FeeRate: rate, OTPLength: c.Booking.OTPLength}
	if err := p.Validate(); err != nil {
		return domain.Policy{}, err
	}
	return p, nil
}

// PendingTopUpTTL is how long an unverified top-up stays pending
func (c *Config) PendingTopUpTTL() time.Duration {
	return time.Duration(c.Wallet.PendingTopUpTTLMinutes) * time.Minute
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health server address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}
