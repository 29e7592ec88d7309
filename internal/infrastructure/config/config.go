package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "RUNDOWN_CONFIG"

// Rundown source kinds.
const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// Config is the root configuration structure for Rundown Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Station   StationConfig   `yaml:"station"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Rundown   RundownConfig   `yaml:"rundown"`
	Playout   PlayoutConfig   `yaml:"playout"`
	Security  SecurityConfig  `yaml:"security"`
}

// StationConfig identifies the studio this instance drives.
type StationConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// RundownConfig selects where the show comes from.
type RundownConfig struct {
	// Source is "file" or "database".
	Source string `yaml:"source"`
	// Path is the YAML or JSON rundown file for the file source.
	Path string `yaml:"path"`
	// ShowID selects the stored show for the database source.
	ShowID string `yaml:"show_id"`
	// Watch reloads the file source when it changes on disk.
	Watch bool `yaml:"watch"`
	// WatchDebounceMS coalesces bursts of file events.
	WatchDebounceMS int `yaml:"watch_debounce_ms"`
}

// PlayoutConfig contains session timing and actuator topic settings.
type PlayoutConfig struct {
	TickIntervalMS     int    `yaml:"tick_interval_ms"`
	CommandTopicPrefix string `yaml:"command_topic_prefix"`
	// ControlTopic is subscribed for control-surface actions; may contain
	// MQTT wildcards.
	ControlTopic string `yaml:"control_topic"`
	// DispatchQueue is the number of undelivered batches buffered before
	// new ones are dropped.
	DispatchQueue int `yaml:"dispatch_queue"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig contains rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: RUNDOWN_SECTION_KEY
// For example: RUNDOWN_DATABASE_PATH, RUNDOWN_API_PORT
//
// Parameters:
//   - path: YAML config file; use Default when there is none
//
// Returns:
//   - *Config: Merged and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the default configuration with environment overrides
// applied, for running without a config file.
func Default() (*Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Station: StationConfig{
			ID:       "studio-1",
			Name:     "Studio 1",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/rundown.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "rundown-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Rundown: RundownConfig{
			Source:          SourceFile,
			Path:            "./rundowns/current.yaml",
			Watch:           true,
			WatchDebounceMS: 500,
		},
		Playout: PlayoutConfig{
			TickIntervalMS:     100,
			CommandTopicPrefix: "rundown/command/audio",
			ControlTopic:       "rundown/control/+",
			DispatchQueue:      256,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 600,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: RUNDOWN_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("RUNDOWN_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("RUNDOWN_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("RUNDOWN_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("RUNDOWN_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("RUNDOWN_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("RUNDOWN_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("RUNDOWN_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Rundown source
	if v := os.Getenv("RUNDOWN_SOURCE"); v != "" {
		cfg.Rundown.Source = v
	}
	if v := os.Getenv("RUNDOWN_PATH"); v != "" {
		cfg.Rundown.Path = v
	}
	if v := os.Getenv("RUNDOWN_SHOW_ID"); v != "" {
		cfg.Rundown.ShowID = v
	}

	// Logging
	if v := os.Getenv("RUNDOWN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Station.ID == "" {
		errs = append(errs, "station.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	switch c.Rundown.Source {
	case SourceFile:
		if c.Rundown.Path == "" {
			errs = append(errs, "rundown.path is required for the file source")
		}
	case SourceDatabase:
		if c.Rundown.ShowID == "" {
			errs = append(errs, "rundown.show_id is required for the database source")
		}
	default:
		errs = append(errs, fmt.Sprintf("rundown.source must be %q or %q", SourceFile, SourceDatabase))
	}

	if c.Playout.TickIntervalMS < 10 || c.Playout.TickIntervalMS > 1000 {
		errs = append(errs, "playout.tick_interval_ms must be between 10 and 1000")
	}
	if strings.TrimSpace(c.Playout.CommandTopicPrefix) == "" {
		errs = append(errs, "playout.command_topic_prefix is required")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RequestsPerMinute < 1 {
		errs = append(errs, "security.rate_limit.requests_per_minute must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetTickInterval returns the playout tick interval as a Duration.
func (c *Config) GetTickInterval() time.Duration {
	return time.Duration(c.Playout.TickIntervalMS) * time.Millisecond
}

// GetWatchDebounce returns the rundown file watch debounce as a Duration.
func (c *Config) GetWatchDebounce() time.Duration {
	return time.Duration(c.Rundown.WatchDebounceMS) * time.Millisecond
}

// CommandTopic returns the MQTT topic for an audio command about itemID.
func (c *Config) CommandTopic(itemID string) string {
	return strings.TrimSuffix(c.Playout.CommandTopicPrefix, "/") + "/" + itemID
}
