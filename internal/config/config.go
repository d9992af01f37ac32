package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the home-security binaries.
type Config struct {
	// ServerAddress is the gRPC server address for security service connections.
	ServerAddress string `yaml:"server_addr" env:"SERVER_ADDR"`
	// HTTPAddress is the listen address of the HTTP status API; empty disables it.
	HTTPAddress string `yaml:"http_addr" env:"HTTP_ADDR"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// LogLevel is the minimum level written by the server (debug, info, warn, error).
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// LogFormat selects the log encoder: console or json.
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT"`
	// Storage selects and configures the repository backend.
	Storage Storage `yaml:"storage" envPrefix:"STORAGE_"`
	// Image configures the image classification collaborator.
	Image Image `yaml:"image" envPrefix:"IMAGE_"`
	// MQTT configures the sensor event bridge.
	MQTT MQTT `yaml:"mqtt" envPrefix:"MQTT_"`
}

// Storage selects the repository backend.
type Storage struct {
	// Driver is one of memory, file, sqlite, postgres or redis.
	Driver string `yaml:"driver" env:"DRIVER"`
	// Path is the state file for the file driver or the database file for sqlite.
	Path string `yaml:"path" env:"PATH"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn" env:"DSN"`
	// RedisURL is the redis:// connection URL.
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
	// RedisPrefix namespaces every Redis key.
	RedisPrefix string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

// Image configures the image classification collaborator.
type Image struct {
	// ConfidenceThreshold is the minimal confidence, in percent, for a cat verdict.
	ConfidenceThreshold float32 `yaml:"confidence_threshold" env:"CONFIDENCE_THRESHOLD"`
	// ClassifierURL is the endpoint of a remote classifier; empty selects the built-in fake.
	ClassifierURL string `yaml:"classifier_url" env:"CLASSIFIER_URL"`
	// Retries is the number of extra attempts against the remote classifier.
	Retries uint64 `yaml:"retries" env:"RETRIES"`
}

// MQTT configures the sensor event bridge.
type MQTT struct {
	// Enabled turns the bridge on.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// BrokerURL is the broker address, e.g. tcp://127.0.0.1:1883.
	BrokerURL string `yaml:"broker_url" env:"BROKER_URL"`
	// Username authenticates against the broker.
	Username string `yaml:"username" env:"USERNAME"`
	// Password authenticates against the broker.
	Password string `yaml:"password" env:"PASSWORD"`
	// TopicPrefix is prepended to every topic, e.g. "home-security".
	TopicPrefix string `yaml:"topic_prefix" env:"TOPIC_PREFIX"`
	// InsecureSkipVerify disables broker certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" env:"INSECURE_SKIP_VERIFY"`
	// LogLevel caps the MQTT client library output, defaults to warn.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "home-security-settings.yaml"

	// DefaultStateFilename is the default filename for the file storage driver.
	DefaultStateFilename = "home-security-state.json"

	// DefaultDatabaseFilename is the default filename for the sqlite storage driver.
	DefaultDatabaseFilename = "home-security.db"

	// DefaultServerAddress is the gRPC address used when none is configured.
	DefaultServerAddress = "127.0.0.1:50051"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultConfidenceThreshold matches the usual "more likely than not" cut-off.
	DefaultConfidenceThreshold float32 = 50

	// DefaultImageRetries is the number of extra attempts against the remote classifier.
	DefaultImageRetries uint64 = 2

	// DefaultMQTTLogLevel caps the MQTT client library output.
	DefaultMQTTLogLevel = "warn"

	// DefaultTopicPrefix is the MQTT topic prefix used when none is configured.
	DefaultTopicPrefix = "home-security"

	// DefaultRedisPrefix is the Redis key prefix used when none is configured.
	DefaultRedisPrefix = "home-security/"

	// DefaultFilePermissions is the default file permission for config and state files.
	DefaultFilePermissions = 0o600

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HOME_SECURITY_"

	// maxConfidenceThreshold is the upper bound of a percentage.
	maxConfidenceThreshold = 100
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported storage driver.
	errUnknownDriver = errors.New("unknown storage driver")
	// errDSNRequired is returned when the postgres driver has no DSN.
	errDSNRequired = errors.New("postgres storage requires a dsn")
	// errRedisURLRequired is returned when the redis driver has no URL.
	errRedisURLRequired = errors.New("redis storage requires a redis_url")
	// errThresholdOutOfRange is returned for a threshold outside (0, 100].
	errThresholdOutOfRange = errors.New("confidence threshold must be between 0 and 100")
	// errBrokerRequired is returned when MQTT is enabled without a broker.
	errBrokerRequired = errors.New("mqtt broker_url must be provided when mqtt is enabled")
)

// Drivers lists the supported storage drivers.
func Drivers() []string {
	return []string{DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis}
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path, applies environment
// overrides and validates the result. A missing file at the default location
// is not an error: defaults and environment overrides are used instead.
func Load(path string) (*Config, error) {
	isDefaultPath := path == "" || path == DefaultConfigFilename
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && isDefaultPath:
		// Defaults and environment only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	if err = env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults and checks the provided settings for required fields and formatting.
//
//nolint:cyclop // A flat list of checks reads better than helpers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if _, err := net.ResolveTCPAddr("tcp", cfg.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if cfg.HTTPAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.HTTPAddress); err != nil {
			return fmt.Errorf("invalid http socket: %w", err)
		}
	}

	if !slices.Contains(Drivers(), cfg.Storage.Driver) {
		return fmt.Errorf("%q: %w", cfg.Storage.Driver, errUnknownDriver)
	}

	if cfg.Storage.Driver == DriverPostgres && cfg.Storage.DSN == "" {
		return errDSNRequired
	}

	if cfg.Storage.Driver == DriverRedis && cfg.Storage.RedisURL == "" {
		return errRedisURLRequired
	}

	if cfg.Image.ConfidenceThreshold < 0 || cfg.Image.ConfidenceThreshold > maxConfidenceThreshold {
		return errThresholdOutOfRange
	}

	if cfg.Image.ClassifierURL != "" {
		if _, err := url.ParseRequestURI(cfg.Image.ClassifierURL); err != nil {
			return fmt.Errorf("invalid classifier URI: %w", err)
		}
	}

	if cfg.MQTT.Enabled && cfg.MQTT.BrokerURL == "" {
		return errBrokerRequired
	}

	return nil
}

// applyDefaults fills every empty field that has a default.
func applyDefaults(cfg *Config) {
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverFile
	}

	if cfg.Storage.Path == "" {
		switch cfg.Storage.Driver {
		case DriverFile:
			cfg.Storage.Path = DefaultStateFilename
		case DriverSQLite:
			cfg.Storage.Path = DefaultDatabaseFilename
		}
	}

	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = DefaultRedisPrefix
	}

	if cfg.Image.ConfidenceThreshold == 0 {
		cfg.Image.ConfidenceThreshold = DefaultConfidenceThreshold
	}

	if cfg.Image.Retries == 0 {
		cfg.Image.Retries = DefaultImageRetries
	}

	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}

	if cfg.MQTT.LogLevel == "" {
		cfg.MQTT.LogLevel = DefaultMQTTLogLevel
	}
}
