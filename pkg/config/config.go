// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Postgres, Ingestion, Kafka, Redis, Logging, Metrics,
// Tracing).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" env:"HIRING_SERVER_PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"HIRING_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"HIRING_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"requestTimeout" env:"HIRING_SERVER_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"HIRING_SERVER_SHUTDOWN_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes" env:"HIRING_SERVER_MAX_UPLOAD_BYTES" validate:"min=1"`
	CORSOrigins     []string      `yaml:"corsOrigins" env:"HIRING_SERVER_CORS_ORIGINS" envSeparator:","`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host" env:"HIRING_POSTGRES_HOST" validate:"required"`
	Port            int           `yaml:"port" env:"HIRING_POSTGRES_PORT" validate:"min=1,max=65535"`
	Database        string        `yaml:"database" env:"HIRING_POSTGRES_DATABASE" validate:"required"`
	User            string        `yaml:"user" env:"HIRING_POSTGRES_USER" validate:"required"`
	Password        string        `yaml:"password" env:"HIRING_POSTGRES_PASSWORD"`
	SSLMode         string        `yaml:"sslMode" env:"HIRING_POSTGRES_SSLMODE"`
	MaxOpenConns    int           `yaml:"maxOpenConns" env:"HIRING_POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"maxIdleConns" env:"HIRING_POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" env:"HIRING_POSTGRES_CONN_MAX_LIFETIME"`
	ConnectAttempts int           `yaml:"connectAttempts" env:"HIRING_POSTGRES_CONNECT_ATTEMPTS"`
}

// DSN returns a lib/pq key=value data source name. Values are single-quoted
// so empty values and values with spaces or quotes survive parsing.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dsnQuote(p.Host), p.Port, dsnQuote(p.User), dsnQuote(p.Password), dsnQuote(p.Database), dsnQuote(p.SSLMode),
	)
}

var dsnEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func dsnQuote(v string) string {
	return "'" + dsnEscaper.Replace(v) + "'"
}

// IngestionConfig bounds a single upload.
type IngestionConfig struct {
	MaxLines  int    `yaml:"maxLines" env:"HIRING_INGESTION_MAX_LINES" validate:"min=1"`
	Delimiter string `yaml:"delimiter" env:"HIRING_INGESTION_DELIMITER" validate:"required"`
}

// DelimiterRune returns the configured field delimiter as a rune.
func (i IngestionConfig) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(i.Delimiter)
	return r
}

// KafkaConfig holds Kafka broker and topic settings. Publishing is skipped
// entirely when Enabled is false.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" env:"HIRING_KAFKA_ENABLED"`
	Brokers []string `yaml:"brokers" env:"HIRING_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `yaml:"topic" env:"HIRING_KAFKA_TOPIC"`
	// PublishTimeout bounds one best-effort publish.
	PublishTimeout time.Duration `yaml:"publishTimeout" env:"HIRING_KAFKA_PUBLISH_TIMEOUT"`
}

// RedisConfig holds Redis connection and aggregate caching parameters.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"HIRING_REDIS_ENABLED"`
	Addr     string        `yaml:"addr" env:"HIRING_REDIS_ADDR"`
	Password string        `yaml:"password" env:"HIRING_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"HIRING_REDIS_DB"`
	PoolSize int           `yaml:"poolSize" env:"HIRING_REDIS_POOL_SIZE"`
	CacheTTL time.Duration `yaml:"cacheTTL" env:"HIRING_REDIS_CACHE_TTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"HIRING_LOGGING_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" env:"HIRING_LOGGING_FORMAT" validate:"omitempty,oneof=json text"`
}

// MetricsConfig controls the Prometheus metrics endpoint. A zero Port serves
// /metrics on the main server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"HIRING_METRICS_ENABLED"`
	Port    int  `yaml:"port" env:"HIRING_METRICS_PORT"`
}

// TracingConfig controls OpenTelemetry span export. Exporter "log" writes
// finished spans to the structured logger; "otlp" ships them to a collector
// over gRPC.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" env:"HIRING_TRACING_ENABLED"`
	Exporter     string  `yaml:"exporter" env:"HIRING_TRACING_EXPORTER" validate:"omitempty,oneof=log otlp"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" env:"HIRING_TRACING_OTLP_ENDPOINT"`
	OTLPInsecure bool    `yaml:"otlpInsecure" env:"HIRING_TRACING_OTLP_INSECURE"`
	SampleRatio  float64 `yaml:"sampleRatio" env:"HIRING_TRACING_SAMPLE_RATIO" validate:"min=0,max=1"`
	ServiceName  string  `yaml:"serviceName" env:"HIRING_TRACING_SERVICE_NAME"`
}

// Load reads a YAML config file (if provided and present) and applies
// environment-variable overrides. Missing values fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment,
// skipping the ones that do not exist. It returns how many were loaded.
func LoadDotEnv(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Validate checks struct constraints on the loaded configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if utf8.RuneCountInString(c.Ingestion.Delimiter) != 1 {
		return fmt.Errorf("invalid configuration: delimiter must be a single character, got %q", c.Ingestion.Delimiter)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("invalid configuration: kafka enabled without brokers or topic")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("invalid configuration: redis enabled without addr")
	}
	if c.Tracing.Enabled && c.Tracing.Exporter == "otlp" && c.Tracing.OTLPEndpoint == "" {
		return errors.New("invalid configuration: otlp tracing enabled without endpoint")
	}
	return nil
}

// defaultConfig returns a Config with defaults suitable for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  20 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  10 << 20,
			CORSOrigins:     []string{"*"},
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "database",
			User:            "hiring",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectAttempts: 5,
		},
		Ingestion: IngestionConfig{
			MaxLines:  1000,
			Delimiter: ",",
		},
		Kafka: KafkaConfig{
			Brokers:        []string{"localhost:9092"},
			Topic:          "hiring.ingestion",
			PublishTimeout: 2 * time.Second,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Tracing: TracingConfig{
			Exporter:    "log",
			SampleRatio: 1,
			ServiceName: "hiring-analytics",
		},
	}
}
