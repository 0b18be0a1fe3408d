package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PaymentConfig holds the MercadoPago integration settings.
// VaultKey is the hex-encoded 32-byte key used to encrypt gateway
// credentials at rest. It has no default: startup fails without it.
type PaymentConfig struct {
	VaultKey     string `mapstructure:"vault_key"`
	AppID        string `mapstructure:"app_id"`
	AppSecret    string `mapstructure:"app_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	WebhookURL   string `mapstructure:"webhook_url"`
	CheckoutBack string `mapstructure:"checkout_back_url"`
}

// BookingConfig holds deposit hold settings. DepositTTLMinutes is applied
// when a deposit-backed booking is created; the sweeper only reads the
// per-row due timestamps that resulted from it.
type BookingConfig struct {
	DepositTTLMinutes   int `mapstructure:"deposit_ttl_minutes"`
	SweepIntervalMinute int `mapstructure:"sweep_interval_minutes"`
}

type SubscriptionConfig struct {
	TrialWarningDays int    `mapstructure:"trial_warning_days"`
	FreePlanSlug     string `mapstructure:"free_plan_slug"`
}
