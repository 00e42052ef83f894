// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Snapshot, Indexer, Postgres, Kafka, Redis, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Snapshot backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// SnapshotConfig selects where the index snapshot lives between runs.
type SnapshotConfig struct {
	Backend     string        `yaml:"backend"`
	Path        string        `yaml:"path"`
	Compression string        `yaml:"compression"`
	RedisKey    string        `yaml:"redisKey"`
	Name        string        `yaml:"name"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
}

// IndexerConfig controls how input files are read.
type IndexerConfig struct {
	ReadConcurrency int `yaml:"readConcurrency"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Enabled bool        `yaml:"enabled"`
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	FileIndexed string `yaml:"fileIndexed"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls pushing run metrics to a Prometheus Pushgateway.
// Nothing is pushed when PushURL is empty.
type MetricsConfig struct {
	PushURL string `yaml:"pushUrl"`
	Job     string `yaml:"job"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with defaults for any missing
// values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration values the program cannot run with.
func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case BackendFile:
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot.path is required for the %s backend", BackendFile)
		}
	case BackendRedis:
		if c.Snapshot.RedisKey == "" {
			return fmt.Errorf("snapshot.redisKey is required for the %s backend", BackendRedis)
		}
	case BackendPostgres:
		if c.Snapshot.Name == "" {
			return fmt.Errorf("snapshot.name is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}
	switch c.Snapshot.Compression {
	case "none", "snappy", "lz4":
	default:
		return fmt.Errorf("unknown snapshot compression %q", c.Snapshot.Compression)
	}
	if c.Indexer.ReadConcurrency < 1 {
		return fmt.Errorf("indexer.readConcurrency must be at least 1, got %d", c.Indexer.ReadConcurrency)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// defaultConfig returns a Config that keeps the snapshot in a local file and
// talks to no external service.
func defaultConfig() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			Backend:     BackendFile,
			Path:        "repository.wtrk",
			Compression: "snappy",
			RedisKey:    "wordtracker:snapshot",
			Name:        "default",
			Timeout:     10 * time.Second,
			Retries:     3,
		},
		Indexer: IndexerConfig{
			ReadConcurrency: 4,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "wordtracker",
			User:            "wordtracker",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Enabled: false,
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				FileIndexed: "wordtracker.file-indexed",
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 4,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Job: "wordtracker",
		},
	}
}

// applyEnvOverrides reads WT_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WT_SNAPSHOT_BACKEND"); v != "" {
		cfg.Snapshot.Backend = v
	}
	if v := os.Getenv("WT_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("WT_SNAPSHOT_COMPRESSION"); v != "" {
		cfg.Snapshot.Compression = v
	}
	if v := os.Getenv("WT_INDEXER_READ_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.ReadConcurrency = n
		}
	}
	if v := os.Getenv("WT_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("WT_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("WT_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("WT_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("WT_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("WT_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("WT_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("WT_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("WT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("WT_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("WT_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WT_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("WT_METRICS_PUSH_URL"); v != "" {
		cfg.Metrics.PushURL = v
	}
}
