package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Notifier  NotifierConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Stripe    StripeConfig
	AMQP      AMQPConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string

	// Timezone is the studio's local zone; "today" for booking validation is computed in it.
	Timezone       string
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

type NotifierConfig struct {
	Channel string
}

type CacheConfig struct {
	OccupancyTTL time.Duration
	ResyncSpec   string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	// TrustedProxies lists IPs or CIDRs whose X-Forwarded-For header is believed
	TrustedProxies    []string
}

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
	Currency   string
}

// AMQPConfig is optional; an empty URL disables integration events.
type AMQPConfig struct {
	URL      string
	Exchange string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	setDefaults()

	// .env is optional; plain environment variables are enough in containers
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	occupancyTTL, err := time.ParseDuration(viper.GetString("CACHE_OCCUPANCY_TTL"))
	if err != nil {
		occupancyTTL = 24 * time.Hour
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			Timezone:       viper.GetString("APP_TIMEZONE"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Notifier: NotifierConfig{
			Channel: viper.GetString("NOTIFIER_CHANNEL"),
		},
		Cache: CacheConfig{
			OccupancyTTL: occupancyTTL,
			ResyncSpec:   viper.GetString("CACHE_RESYNC_SPEC"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
			TrustedProxies:    splitList(viper.GetString("RATE_LIMIT_TRUSTED_PROXIES")),
		},
		Stripe: StripeConfig{
			SecretKey:  viper.GetString("STRIPE_SECRET_KEY"),
			SuccessURL: viper.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:  viper.GetString("STRIPE_CANCEL_URL"),
			Currency:   viper.GetString("STRIPE_CURRENCY"),
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: viper.GetString("AMQP_EXCHANGE"),
		},
	}

	return config, nil
}

// Location returns the configured studio timezone, falling back to the process local zone.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("NOTIFIER_CHANNEL", "bookings-changes")
	viper.SetDefault("CACHE_RESYNC_SPEC", "@every 10m")
	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 30)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("STRIPE_SUCCESS_URL", "https://yourdomain.com/success")
	viper.SetDefault("STRIPE_CANCEL_URL", "https://yourdomain.com/cancel")
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("AMQP_EXCHANGE", "massage.bookings")
}
