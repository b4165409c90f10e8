package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не проходит валидацию
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Tracing   TracingConfig   `toml:"tracing"`
	Storage   StorageConfig   `toml:"storage"`
	Schedule  ScheduleConfig  `toml:"schedule"`
	Events    EventsConfig    `toml:"events"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Admin     AdminConfig     `toml:"admin"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type TracingConfig struct {
	Enabled      bool    `toml:"enabled"`
	OTLPEndpoint string  `toml:"otlp_endpoint"`
	SampleRatio  float64 `toml:"sample_ratio"`
}

type StorageConfig struct {
	Driver       string `toml:"driver"`        // postgres | memory
	StoreTimeout int    `toml:"store_timeout"` // миллисекунды, дедлайн на операцию с хранилищем
}

// ScheduleConfig календарь слотов
type ScheduleConfig struct {
	SlotTimes               []string `toml:"slot_times"`
	Capacity                int      `toml:"capacity"`
	TimeZone                string   `toml:"time_zone"`
	AdvanceBookingDays      int      `toml:"advance_booking_days"`
	MinBookingNoticeMinutes int      `toml:"min_booking_notice_minutes"`
	ClosedDates             []string `toml:"closed_dates"` // YYYY-MM-DD
}

type EventsConfig struct {
	Enabled bool   `toml:"enabled"`
	Brokers string `toml:"brokers"` // через запятую
	Topic   string `toml:"topic"`
}

type RateLimitConfig struct {
	Enabled    bool `toml:"enabled"`
	Requests   int  `toml:"requests"` // запросов на создание записи за окно
	Window     int  `toml:"window"`   // секунды
	FailOpen   bool `toml:"fail_open"`
	TrustProxy bool `toml:"trust_proxy"` // IP из X-Forwarded-For, только за своим балансировщиком
}

type AdminConfig struct {
	// TokenHash bcrypt-хеш токена администратора. Пусто - админские маршруты открыты.
	TokenHash string `toml:"token_hash"`
}

// StoreTimeoutDuration дедлайн на одну операцию с хранилищем
func (c StorageConfig) StoreTimeoutDuration() time.Duration {
	return time.Duration(c.StoreTimeout) * time.Millisecond
}

// Load читает TOML файл, применяет .env и переменные окружения, затем дефолты и валидацию
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	// .env не обязателен
	_ = godotenv.Load()

	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv переопределяет секреты и адреса переменными окружения
func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DATABASE_HOST")
	setInt(&cfg.Database.Port, "DATABASE_PORT")
	setString(&cfg.Database.User, "DATABASE_USER")
	setString(&cfg.Database.Password, "DATABASE_PASSWORD")
	setString(&cfg.Database.DBName, "DATABASE_NAME")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Events.Brokers, "KAFKA_BROKERS")
	setString(&cfg.Tracing.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Admin.TokenHash, "ADMIN_TOKEN_HASH")
	setString(&cfg.Storage.Driver, "STORAGE_DRIVER")
	setInt(&cfg.Server.HTTPPort, "HTTP_PORT")
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "detailing_booking"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverPostgres
	}
	if cfg.Storage.StoreTimeout == 0 {
		cfg.Storage.StoreTimeout = 3000
	}
	if len(cfg.Schedule.SlotTimes) == 0 {
		cfg.Schedule.SlotTimes = []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
	}
	if cfg.Schedule.Capacity == 0 {
		cfg.Schedule.Capacity = 3
	}
	if cfg.Schedule.TimeZone == "" {
		cfg.Schedule.TimeZone = "America/Sao_Paulo"
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "detailing.appointments"
	}
	if cfg.RateLimit.Requests == 0 {
		cfg.RateLimit.Requests = 10
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = 60
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Storage.Driver != StorageDriverPostgres && c.Storage.Driver != StorageDriverMemory {
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}
	if c.Storage.Driver == StorageDriverPostgres && (c.Database.Host == "" || c.Database.DBName == "") {
		return fmt.Errorf("%w: database host and dbname are required for postgres storage", ErrInvalidConfig)
	}
	if c.Schedule.Capacity < 1 {
		return fmt.Errorf("%w: schedule capacity must be positive", ErrInvalidConfig)
	}
	if c.Schedule.AdvanceBookingDays < 0 || c.Schedule.MinBookingNoticeMinutes < 0 {
		return fmt.Errorf("%w: schedule limits must not be negative", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Schedule.TimeZone); err != nil {
		return fmt.Errorf("%w: time zone %q: %v", ErrInvalidConfig, c.Schedule.TimeZone, err)
	}
	if c.Events.Enabled && c.Events.Brokers == "" {
		return fmt.Errorf("%w: events enabled without kafka brokers", ErrInvalidConfig)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("%w: redis enabled without address", ErrInvalidConfig)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
