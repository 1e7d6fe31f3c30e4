package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Node     NodeConfig     `mapstructure:"node"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Fees     FeeConfig      `mapstructure:"fees"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Rates    RatesConfig    `mapstructure:"rates"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Mode          string `mapstructure:"mode"`            // debug, release, test
	PublicBaseURL string `mapstructure:"public_base_url"` // used to build LNURL callback URLs
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// NodeConfig locates the external Lightning payment node's REST API.
type NodeConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AuthToken   string        `mapstructure:"auth_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"` // long-poll window for the event stream
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type AdminConfig struct {
	// Token is the static bearer credential for the admin API surface.
	Token string `mapstructure:"token"`
}

// FeeConfig parameterizes outgoing-payment pricing:
// fee = amount/fee_ppm + base_fee_msat, in integer millisatoshis.
type FeeConfig struct {
	FeePPM      int64 `mapstructure:"fee_ppm"`
	BaseFeeMsat int64 `mapstructure:"base_fee_msat"`
}

// FeeMsat computes the fee charged for sending amountMsat.
func (f FeeConfig) FeeMsat(amountMsat int64) int64 {
	return amountMsat/f.FeePPM + f.BaseFeeMsat
}

// LimitsConfig holds the admission-control ceilings.
type LimitsConfig struct {
	MinAmountSat      int64 `mapstructure:"min_amount_sat"`
	MaxAmountSat      int64 `mapstructure:"max_amount_sat"`
	MaxPendingPerUser int64 `mapstructure:"max_pending_per_user"`
	MaxDailyNewUsers  int64 `mapstructure:"max_daily_new_users"`
	InvoiceExpirySecs int64 `mapstructure:"invoice_expiry_secs"`
}

// MinAmountMsat returns the lower amount bound in millisatoshis.
func (l LimitsConfig) MinAmountMsat() int64 { return l.MinAmountSat * 1000 }

// MaxAmountMsat returns the upper amount bound in millisatoshis.
func (l LimitsConfig) MaxAmountMsat() int64 { return l.MaxAmountSat * 1000 }

// RatesConfig controls the best-effort fiat rate feed cache.
type RatesConfig struct {
	FeedURL     string        `mapstructure:"feed_url"`
	FeedTimeout time.Duration `mapstructure:"feed_timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: LNL.
// Nested keys use underscore: LNL_DATABASE_HOST, LNL_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.public_base_url", "http://localhost:8080")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "lnledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("node.base_url", "http://localhost:9737")
	v.SetDefault("node.auth_token", "")
	v.SetDefault("node.timeout", "30s")
	v.SetDefault("node.poll_timeout", "55s")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "720h")
	v.SetDefault("jwt.issuer", "lnledger")
	v.SetDefault("admin.token", "")
	v.SetDefault("fees.fee_ppm", 10000)
	v.SetDefault("fees.base_fee_msat", 50000)
	v.SetDefault("limits.min_amount_sat", 1)
	v.SetDefault("limits.max_amount_sat", 100000)
	v.SetDefault("limits.max_pending_per_user", 10)
	v.SetDefault("limits.max_daily_new_users", 20)
	v.SetDefault("limits.invoice_expiry_secs", 3600)
	v.SetDefault("rates.feed_url", "")
	v.SetDefault("rates.feed_timeout", "10s")
	v.SetDefault("rates.cache_ttl", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: LNL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("LNL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Fees.FeePPM <= 0 {
		return nil, fmt.Errorf("fees.fee_ppm must be positive, got %d", cfg.Fees.FeePPM)
	}
	if cfg.Limits.MinAmountSat > cfg.Limits.MaxAmountSat {
		return nil, fmt.Errorf("limits.min_amount_sat exceeds limits.max_amount_sat")
	}

	return &cfg, nil
}
