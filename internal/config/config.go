package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	AmazonPay AmazonPayConfig
	Proxy     ProxyConfig
	Log       LogConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Schedule  ScheduleConfig
	Login     LoginConfig
}

type ServerConfig struct {
	Port int    `validate:"min=1,max=65535"`
	Env  string // "development", "production"
}

type AmazonPayConfig struct {
	MerchantID         string `validate:"required"`
	AccessKey          string `validate:"required"`
	SecretKey          string `validate:"required"`
	Region             string `validate:"oneof=jp uk de eu us na"`
	Sandbox            bool
	CurrencyCode       string `validate:"len=3"`
	PlatformID         string
	MWSAuthToken       string
	DisableThrottle    bool
	ApplicationName    string
	ApplicationVersion string

	// LogEnabled logs sanitized request and response bodies.
	LogEnabled bool
}

type ProxyConfig struct {
	Addr string
	Port int
	User string
	Pass string
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	File  string
}

type RedisConfig struct {
	Addr     string
	Pass     string
	DB       int
	DedupTTL time.Duration
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type TelegramConfig struct {
	Token   string
	AdminID string
}

type ScheduleConfig struct {
	// StatusProbe is a six-field cron spec; empty disables the probe.
	StatusProbe string
}

type LoginConfig struct {
	ClientID string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("AMAZON_PAY_REGION", "na")
	viper.SetDefault("AMAZON_PAY_CURRENCY_CODE", "USD")
	viper.SetDefault("AMAZON_PAY_SANDBOX", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DEDUP_TTL", "24h")
	viper.SetDefault("SCHEDULE_STATUS_PROBE", "0 */5 * * * *")

	ttl, err := time.ParseDuration(viper.GetString("REDIS_DEDUP_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DEDUP_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		AmazonPay: AmazonPayConfig{
			MerchantID:         viper.GetString("AMAZON_PAY_MERCHANT_ID"),
			AccessKey:          viper.GetString("AMAZON_PAY_ACCESS_KEY"),
			SecretKey:          viper.GetString("AMAZON_PAY_SECRET_KEY"),
			Region:             strings.ToLower(viper.GetString("AMAZON_PAY_REGION")),
			Sandbox:            viper.GetBool("AMAZON_PAY_SANDBOX"),
			CurrencyCode:       strings.ToUpper(viper.GetString("AMAZON_PAY_CURRENCY_CODE")),
			PlatformID:         viper.GetString("AMAZON_PAY_PLATFORM_ID"),
			MWSAuthToken:       viper.GetString("AMAZON_PAY_MWS_AUTH_TOKEN"),
			DisableThrottle:    viper.GetBool("AMAZON_PAY_DISABLE_THROTTLE"),
			ApplicationName:    viper.GetString("AMAZON_PAY_APPLICATION_NAME"),
			ApplicationVersion: viper.GetString("AMAZON_PAY_APPLICATION_VERSION"),
			LogEnabled:         viper.GetBool("AMAZON_PAY_LOG_ENABLED"),
		},
		Proxy: ProxyConfig{
			Addr: viper.GetString("PROXY_ADDR"),
			Port: viper.GetInt("PROXY_PORT"),
			User: viper.GetString("PROXY_USER"),
			Pass: viper.GetString("PROXY_PASS"),
		},
		Log: LogConfig{
			Level: strings.ToLower(viper.GetString("LOG_LEVEL")),
			File:  viper.GetString("LOG_FILE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Pass:     viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
			DedupTTL: ttl,
		},
		Database: DatabaseConfig{
			Host:    viper.GetString("DB_HOST"),
			Port:    viper.GetString("DB_PORT"),
			Name:    viper.GetString("DB_NAME"),
			User:    viper.GetString("DB_USER"),
			Pass:    viper.GetString("DB_PASS"),
			Charset: viper.GetString("DB_CHARSET"),
		},
		Telegram: TelegramConfig{
			Token:   viper.GetString("TELEGRAM_TOKEN"),
			AdminID: viper.GetString("TELEGRAM_ADMIN_ID"),
		},
		Schedule: ScheduleConfig{
			StatusProbe: viper.GetString("SCHEDULE_STATUS_PROBE"),
		},
		Login: LoginConfig{
			ClientID: viper.GetString("LOGIN_CLIENT_ID"),
		},
	}

	// Request bodies are logged at debug level.
	if cfg.AmazonPay.LogEnabled && os.Getenv("LOG_LEVEL") == "" {
		cfg.Log.Level = "debug"
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set, notifications will not be stored")
	}

	return cfg, nil
}

// Validate checks the whole configuration, including the Amazon Pay
// credentials.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
