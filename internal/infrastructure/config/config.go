package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/turnex-app/turnex/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Payment      sharedConfig.PaymentConfig      `mapstructure:"payment"`
	Booking      sharedConfig.BookingConfig      `mapstructure:"booking"`
	Subscription sharedConfig.SubscriptionConfig `mapstructure:"subscription"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables
func Load(env string) (*Config, error) {
	// Load single config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")

	// Set environment variable prefix and replacer
	viper.SetEnvPrefix("TURNEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// validate rejects configurations the process cannot run safely with.
// The vault key has no default on purpose: a generated or placeholder key
// would silently make every stored credential unreadable after a restart.
func validate(cfg *Config) error {
	if cfg.Payment.VaultKey == "" {
		return fmt.Errorf("payment.vault_key is required (TURNEX_PAYMENT_VAULT_KEY)")
	}
	key, err := hex.DecodeString(cfg.Payment.VaultKey)
	if err != nil {
		return fmt.Errorf("payment.vault_key must be hex-encoded: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("payment.vault_key must decode to 32 bytes, got %d", len(key))
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("server.timezone", "America/Argentina/Buenos_Aires")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "turnex_dev")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Payment defaults (credentials must be configured, vault key has no default)
	viper.SetDefault("payment.app_id", "")
	viper.SetDefault("payment.app_secret", "")
	viper.SetDefault("payment.redirect_url", "http://localhost:8080/api/v1/gateway/callback")
	viper.SetDefault("payment.webhook_url", "http://localhost:8080/api/v1/webhooks/mercadopago")
	viper.SetDefault("payment.checkout_back_url", "http://localhost:8080/billing")

	// Booking defaults
	viper.SetDefault("booking.deposit_ttl_minutes", 20)
	viper.SetDefault("booking.sweep_interval_minutes", 5)

	// Subscription defaults
	viper.SetDefault("subscription.trial_warning_days", 3)
	viper.SetDefault("subscription.free_plan_slug", "gratis")
}
