package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OSS      OSSConfig      `mapstructure:"oss"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Email    EmailConfig    `mapstructure:"email"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Trial    TrialConfig    `mapstructure:"trial"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type OAuthConfig struct {
	Google GoogleOAuthConfig `mapstructure:"google"`
}

type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type QueueConfig struct {
	ReminderQueue string `mapstructure:"reminder_queue"`
	MaxWorkers    int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// BillingConfig drives entitlement resolution and the plan catalog.
type BillingConfig struct {
	GraceDays          int          `mapstructure:"grace_days"`
	PremiumThreshold   float64      `mapstructure:"premium_threshold"`
	ProThreshold       float64      `mapstructure:"pro_threshold"`
	StripeSecretKey    string       `mapstructure:"stripe_secret_key"`
	StripeWebhookKey   string       `mapstructure:"stripe_webhook_key"`
	CheckoutSuccessURL string       `mapstructure:"checkout_success_url"`
	CheckoutCancelURL  string       `mapstructure:"checkout_cancel_url"`
	Plans              []PlanConfig `mapstructure:"plans"`
}

type PlanConfig struct {
	ID            string  `mapstructure:"id"`
	Name          string  `mapstructure:"name"`
	Tier          string  `mapstructure:"tier"` // basic, pro, premium
	Amount        float64 `mapstructure:"amount"`
	Currency      string  `mapstructure:"currency"`
	StripePriceID string  `mapstructure:"stripe_price_id"`
}

type TrialConfig struct {
	Days int `mapstructure:"days"`
}

// CalendarConfig describes the fixed time grid the mobile client renders.
type CalendarConfig struct {
	WindowStartHour int `mapstructure:"window_start_hour"`
	WindowEndHour   int `mapstructure:"window_end_hour"`
	SlotMinutes     int `mapstructure:"slot_minutes"`
	UnitHeightPx    int `mapstructure:"unit_height_px"`
	ScrollLeadInPx  int `mapstructure:"scroll_lead_in_px"`
}

type ReminderConfig struct {
	OffsetsMinutes []int `mapstructure:"offsets_minutes"` // minutes before appointment start
	RetentionDays  int   `mapstructure:"retention_days"`
}

func Load(configPath string) (*Config, error) {
	// Prefer config.local.yaml when present (real credentials, not committed).
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Trial.Days <= 0 {
		c.Trial.Days = 7
	}
	if c.Billing.GraceDays <= 0 {
		c.Billing.GraceDays = 5
	}
	if c.Billing.PremiumThreshold <= 0 {
		c.Billing.PremiumThreshold = 99
	}
	if c.Billing.ProThreshold <= 0 {
		c.Billing.ProThreshold = 79
	}
	if c.Calendar.WindowStartHour <= 0 {
		c.Calendar.WindowStartHour = 7
	}
	if c.Calendar.WindowEndHour <= 0 {
		c.Calendar.WindowEndHour = 24
	}
	if c.Calendar.SlotMinutes <= 0 {
		c.Calendar.SlotMinutes = 15
	}
	if c.Calendar.UnitHeightPx <= 0 {
		c.Calendar.UnitHeightPx = 40
	}
	if c.Calendar.ScrollLeadInPx <= 0 {
		c.Calendar.ScrollLeadInPx = 40
	}
	if len(c.Reminder.OffsetsMinutes) == 0 {
		c.Reminder.OffsetsMinutes = []int{24 * 60, 60}
	}
	if c.Reminder.RetentionDays <= 0 {
		c.Reminder.RetentionDays = 30
	}
	if c.Queue.ReminderQueue == "" {
		c.Queue.ReminderQueue = "reminder_dispatch"
	}
	if c.Queue.MaxWorkers <= 0 {
		c.Queue.MaxWorkers = 4
	}
}
