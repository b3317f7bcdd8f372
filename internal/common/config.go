package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Appa019/Coleta-dados-faturas/constants"
)

// Config holds all application configuration
type Config struct {
	Extraction ExtractionConfig
	Decoder    DecoderConfig
	Database   DatabaseConfig
	Output     OutputConfig
	Daemon     DaemonConfig
	Log        LogConfig
}

// ExtractionConfig holds batch/extraction behaviour
type ExtractionConfig struct {
	ArchiveMarker string
	DedupPolicy   string
}

// DecoderConfig holds document decoder configuration
type DecoderConfig struct {
	Pdftotext string
	Passwords []string
	Timeout   time.Duration
}

// DatabaseConfig holds run-store configuration. DSN selects postgres; otherwise SQLitePath is used.
type DatabaseConfig struct {
	DSN             string
	SQLitePath      string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	Dir        string
	WriteJSON  bool
	ReportName string
}

// DaemonConfig holds watcher daemon configuration
type DaemonConfig struct {
	WatchDir string
	GRPCAddr string
	Debounce time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// fileConfig mirrors Config in the TOML overlay. Durations are seconds.
type fileConfig struct {
	Extraction struct {
		ArchiveMarker *string `toml:"archive_marker"`
		DedupPolicy   string  `toml:"dedup_policy"`
	} `toml:"extraction"`
	Decoder struct {
		Pdftotext      string   `toml:"pdftotext"`
		Passwords      []string `toml:"passwords"`
		TimeoutSeconds int      `toml:"timeout_seconds"`
	} `toml:"decoder"`
	Database struct {
		DSN        string `toml:"dsn"`
		SQLitePath string `toml:"sqlite_path"`
	} `toml:"database"`
	Output struct {
		Dir        string `toml:"dir"`
		WriteJSON  bool   `toml:"write_json"`
		ReportName string `toml:"report_name"`
	} `toml:"output"`
	Daemon struct {
		WatchDir        string `toml:"watch_dir"`
		GRPCAddr        string `toml:"grpc_addr"`
		DebounceSeconds int    `toml:"debounce_seconds"`
	} `toml:"daemon"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			ArchiveMarker: constants.DefaultArchiveMarker,
			DedupPolicy:   string(constants.DedupByItem),
		},
		Decoder: DecoderConfig{
			Pdftotext: "pdftotext",
			Passwords: constants.Passwords(),
			Timeout:   60 * time.Second,
		},
		Database: DatabaseConfig{
			SQLitePath:      "./faturas.db",
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Daemon: DaemonConfig{
			GRPCAddr: ":8080",
			Debounce: 2 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from the file named by FATURAS_CONFIG (if any), then environment variables.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(getEnv("FATURAS_CONFIG", ""))
}

// LoadConfigFile loads defaults, overlays the TOML file at path (when non-empty) and finally the environment.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
		var fc fileConfig
		if err := toml.Unmarshal(b, &fc); err != nil {
			return nil, NewAppError(CodeConfig, "parse config file", err)
		}
		cfg.overlay(fc)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) overlay(fc fileConfig) {
	if fc.Extraction.ArchiveMarker != nil {
		c.Extraction.ArchiveMarker = *fc.Extraction.ArchiveMarker
	}
	c.Extraction.DedupPolicy = orDefault(fc.Extraction.DedupPolicy, c.Extraction.DedupPolicy)
	c.Decoder.Pdftotext = orDefault(fc.Decoder.Pdftotext, c.Decoder.Pdftotext)
	if len(fc.Decoder.Passwords) > 0 {
		c.Decoder.Passwords = fc.Decoder.Passwords
	}
	if fc.Decoder.TimeoutSeconds > 0 {
		c.Decoder.Timeout = time.Duration(fc.Decoder.TimeoutSeconds) * time.Second
	}
	c.Database.DSN = orDefault(fc.Database.DSN, c.Database.DSN)
	c.Database.SQLitePath = orDefault(fc.Database.SQLitePath, c.Database.SQLitePath)
	c.Output.Dir = orDefault(fc.Output.Dir, c.Output.Dir)
	c.Output.WriteJSON = c.Output.WriteJSON || fc.Output.WriteJSON
	c.Output.ReportName = orDefault(fc.Output.ReportName, c.Output.ReportName)
	c.Daemon.WatchDir = orDefault(fc.Daemon.WatchDir, c.Daemon.WatchDir)
	c.Daemon.GRPCAddr = orDefault(fc.Daemon.GRPCAddr, c.Daemon.GRPCAddr)
	if fc.Daemon.DebounceSeconds > 0 {
		c.Daemon.Debounce = time.Duration(fc.Daemon.DebounceSeconds) * time.Second
	}
	c.Log.Level = orDefault(fc.Log.Level, c.Log.Level)
	c.Log.Format = orDefault(fc.Log.Format, c.Log.Format)
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("ARCHIVE_MARKER"); ok {
		c.Extraction.ArchiveMarker = v
	}
	c.Extraction.DedupPolicy = getEnv("DEDUP_POLICY", c.Extraction.DedupPolicy)
	c.Decoder.Pdftotext = getEnv("PDFTOTEXT_BIN", c.Decoder.Pdftotext)
	c.Decoder.Passwords = getEnvAsList("PDF_PASSWORDS", c.Decoder.Passwords)
	c.Decoder.Timeout = getEnvAsDuration("DECODE_TIMEOUT", c.Decoder.Timeout)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.SQLitePath = getEnv("SQLITE_PATH", c.Database.SQLitePath)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Output.Dir = getEnv("OUTPUT_DIR", c.Output.Dir)
	c.Output.WriteJSON = getEnvAsBool("OUTPUT_JSON", c.Output.WriteJSON)
	c.Daemon.WatchDir = getEnv("WATCH_DIR", c.Daemon.WatchDir)
	c.Daemon.GRPCAddr = getEnv("GRPC_ADDR", c.Daemon.GRPCAddr)
	c.Daemon.Debounce = getEnvAsDuration("WATCH_DEBOUNCE", c.Daemon.Debounce)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable. A leading comma yields the empty password.
func getEnvAsList(key string, defaultValue []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("decoder.pdftotext", c.Decoder.Pdftotext, Required).
		Field("decoder.passwords", c.Decoder.Passwords, NonEmptyList).
		Field("extraction.dedup_policy", c.Extraction.DedupPolicy, knownDedup).
		Field("log.format", c.Log.Format, OneOf("json", "text")).
		Field("log.level", c.Log.Level, OneOf("debug", "info", "warn", "error")).
		Field("output.dir", c.Output.Dir, Required)
	if c.Database.DSN == "" {
		v.Field("database.sqlite_path", c.Database.SQLitePath, Required)
	}
	if v.HasErrors() {
		return NewAppError(CodeConfig, v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

func knownDedup(fieldName string, value interface{}) *ValidationError {
	s, _ := value.(string)
	if _, ok := constants.CanonicalizeDedup(s); !ok {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be one of " + strings.Join(constants.DedupPolicies(), ", "),
		}
	}
	return nil
}

// Dedup returns the configured dedup policy.
func (c *Config) Dedup() constants.DedupPolicy {
	p, _ := constants.CanonicalizeDedup(c.Extraction.DedupPolicy)
	return p
}
