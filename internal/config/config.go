package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// Способы отправки напоминаний
const (
	SenderSMTP   = "smtp"
	SenderOutbox = "outbox"
	SenderLog    = "log"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server   ServerConfig   // Настройки HTTP сервера
	Database DatabaseConfig // Настройки подключения к БД
	Storage  StorageConfig  // Выбор хранилища
	JWT      JWTConfig      // Настройки JWT авторизации
	Redis    RedisConfig    // Настройки Redis (отзыв токенов, дедупликация, outbox)
	Reminder ReminderConfig // Настройки ежедневных напоминаний
	SMTP     SMTPConfig     // Настройки почтового сервера
	Breaker  BreakerConfig  // Настройки circuit breaker для почты
	Log      LogConfig      // Настройки логирования
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port string `envconfig:"SERVER_PORT" default:"8080"`
	Host string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"tracker"`
	Password string `envconfig:"DB_PASSWORD" default:"tracker_pass"`
	Name     string `envconfig:"DB_NAME" default:"tracker"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
}

// StorageConfig определяет, где хранятся данные: postgres или memory
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
}

// JWTConfig содержит настройки JWT авторизации
type JWTConfig struct {
	Secret          string `envconfig:"JWT_SECRET" required:"true"`
	ExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
}

// RedisConfig содержит настройки Redis. Пустой адрес отключает Redis
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ReminderConfig содержит настройки напоминаний о сроках задач
type ReminderConfig struct {
	Enabled   bool          `envconfig:"REMINDER_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"REMINDER_INTERVAL" default:"24h"`
	Sender    string        `envconfig:"REMINDER_SENDER" default:"log"`
	From      string        `envconfig:"REMINDER_FROM" default:"noreply@tracker.local"`
	OutboxKey string        `envconfig:"REMINDER_OUTBOX_KEY" default:"mail:outbox"`
	DedupTTL  time.Duration `envconfig:"REMINDER_DEDUP_TTL" default:"20h"`
}

// SMTPConfig содержит настройки почтового сервера
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"25"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
}

// BreakerConfig содержит настройки circuit breaker
type BreakerConfig struct {
	MaxFailures int           `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	OpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"1m"`
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// GetExpiration возвращает срок действия токена как time.Duration
func (j JWTConfig) GetExpiration() time.Duration {
	return time.Duration(j.ExpirationHours) * time.Hour
}

// DSN возвращает строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Enabled сообщает, настроен ли Redis
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Reminder.Sender {
	case SenderSMTP, SenderLog:
	case SenderOutbox:
		if !c.Redis.Enabled() {
			return fmt.Errorf("reminder sender %q requires REDIS_ADDR", SenderOutbox)
		}
	default:
		return fmt.Errorf("unknown reminder sender %q", c.Reminder.Sender)
	}

	if c.Reminder.Enabled && c.Reminder.Interval <= 0 {
		return fmt.Errorf("reminder interval must be positive")
	}

	return nil
}

// Load читает конфигурацию из переменных окружения
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
