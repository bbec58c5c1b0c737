package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Sync     SyncConfig
	Print    PrintConfig
	Notify   NotifyConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the notification bridge
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
}

// SyncConfig holds feed sync settings
type SyncConfig struct {
	Enabled      bool
	Interval     time.Duration
	FetchTimeout time.Duration
}

// PrintConfig holds print transport settings
type PrintConfig struct {
	Timeout        time.Duration
	DefaultPrinter string
	// SimulateLatency and SimulateFailure configure the built-in
	// transport used when no real printer driver is wired in
	SimulateLatency time.Duration
	SimulateFailure bool
}

// NotifyConfig holds notification hub settings
type NotifyConfig struct {
	SubscriberBuffer int
	Heartbeat        time.Duration
	MaxSubscribers   int
	// RedisEnabled turns on the cross-instance redis bridge
	RedisEnabled bool
	RedisChannel string
}

// Load reads configuration from config.toml and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ORDERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		},
		Sync: SyncConfig{
			Enabled:      v.GetBool("sync.enabled"),
			Interval:     v.GetDuration("sync.interval"),
			FetchTimeout: v.GetDuration("sync.fetch_timeout"),
		},
		Print: PrintConfig{
			Timeout:         v.GetDuration("print.timeout"),
			DefaultPrinter:  v.GetString("print.default_printer"),
			SimulateLatency: v.GetDuration("print.simulate_latency"),
			SimulateFailure: v.GetBool("print.simulate_failure"),
		},
		Notify: NotifyConfig{
			SubscriberBuffer: v.GetInt("notify.subscriber_buffer"),
			Heartbeat:        v.GetDuration("notify.heartbeat"),
			MaxSubscribers:   v.GetInt("notify.max_subscribers"),
			RedisEnabled:     v.GetBool("notify.redis_enabled"),
			RedisChannel:     v.GetString("notify.redis_channel"),
		},
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults fills in zero values with sensible defaults
func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "orderdesk"
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.Port == "" {
		c.App.Port = "8080"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = 10
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		if c.App.Env == "production" {
			c.Log.Format = "json"
		} else {
			c.Log.Format = "console"
		}
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		// The SSE stream writes for the lifetime of the connection;
		// a non-zero write timeout here would sever subscribers.
		c.HTTP.WriteTimeout = 0
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Sync.Interval == 0 {
		c.Sync.Interval = 30 * time.Second
	}
	if c.Sync.FetchTimeout == 0 {
		c.Sync.FetchTimeout = 15 * time.Second
	}
	if c.Print.Timeout == 0 {
		c.Print.Timeout = 30 * time.Second
	}
	if c.Print.DefaultPrinter == "" {
		c.Print.DefaultPrinter = "Default Printer"
	}
	if c.Print.SimulateLatency == 0 {
		c.Print.SimulateLatency = 2 * time.Second
	}
	if c.Notify.SubscriberBuffer == 0 {
		c.Notify.SubscriberBuffer = 100
	}
	if c.Notify.Heartbeat == 0 {
		c.Notify.Heartbeat = 30 * time.Second
	}
	if c.Notify.MaxSubscribers == 0 {
		c.Notify.MaxSubscribers = 1000
	}
	if c.Notify.RedisChannel == "" {
		c.Notify.RedisChannel = "orderdesk:notifications"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.Sync.Interval < time.Second {
		return fmt.Errorf("sync.interval must be at least one second")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the redis host:port address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
