// Package config loads repairdb client settings from a YAML file, the
// environment and optional .env files, and watches the file for changes.
//
//	cfg, err := config.Load("repairdb.yaml")
//	db, err := client.Open(ctx, client.FromConfig(cfg))
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding file values.
const (
	EnvDatabaseURL = "REPAIRDB_DATABASE_URL"
	EnvAdapter     = "REPAIRDB_ADAPTER"
	EnvErrorFormat = "REPAIRDB_ERROR_FORMAT"
	EnvLog         = "REPAIRDB_LOG"
	EnvRedisAddr   = "REPAIRDB_REDIS_ADDR"
)

// Error formats.
const (
	FormatPretty    = "pretty"
	FormatColorless = "colorless"
	FormatMinimal   = "minimal"
)

// Log levels and emit targets.
const (
	LevelQuery = "query"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	EmitStdout = "stdout"
	EmitEvent  = "event"
)

// Config holds the client settings.
type Config struct {
	// Adapter selects the driver: sqlite, postgres, pgx or mysql.
	// Empty means derive it from the URL scheme.
	Adapter     string `yaml:"adapter"`
	DatabaseURL string `yaml:"databaseUrl"`
	ErrorFormat string `yaml:"errorFormat"`
	Log         []Log  `yaml:"log"`
	// Omit lists fields excluded from every result, per model.
	Omit        map[string][]string `yaml:"omit"`
	Transaction Transaction         `yaml:"transaction"`
	Cache       Cache               `yaml:"cache"`
	SlowQuery   Duration            `yaml:"slowQuery"`
}

// Log is a log definition. In YAML a bare level string means stdout.
type Log struct {
	Level string `yaml:"level"`
	Emit  string `yaml:"emit"`
}

// Transaction holds the interactive transaction defaults.
type Transaction struct {
	MaxWait        Duration `yaml:"maxWait"`
	Timeout        Duration `yaml:"timeout"`
	IsolationLevel string   `yaml:"isolationLevel"`
}

// Cache configures the read cache. An empty Redis address with Enabled
// selects the in-process cache.
type Cache struct {
	Enabled   bool     `yaml:"enabled"`
	RedisAddr string   `yaml:"redisAddr"`
	Namespace string   `yaml:"namespace"`
	TTL       Duration `yaml:"ttl"`
}

// Duration is a time.Duration read from strings like "2s".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: line %d: %w", n.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (l *Log) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		l.Emit = EmitStdout
		return n.Decode(&l.Level)
	}
	type plain Log
	if err := n.Decode((*plain)(l)); err != nil {
		return err
	}
	if l.Emit == "" {
		l.Emit = EmitStdout
	}
	return nil
}

// Default returns the defaults applied before loading.
func Default() *Config {
	return &Config{
		ErrorFormat: FormatColorless,
		Transaction: Transaction{
			MaxWait: Duration(2 * time.Second),
			Timeout: Duration(5 * time.Second),
		},
		SlowQuery: Duration(100 * time.Millisecond),
	}
}

// Load reads the YAML file at path, then applies the environment. A
// missing file is not an error when path is empty. .env in the working
// directory is loaded first if present; variables already set win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := Parse(b, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadEnvFile loads the variables of a .env style file into the process
// environment without overriding existing ones.
func LoadEnvFile(path string) error {
	return godotenv.Load(path)
}

// Parse decodes YAML into cfg, keeping values the document does not set.
func Parse(b []byte, cfg *Config) error {
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDatabaseURL); ok {
		c.DatabaseURL = v
	}
	if v, ok := lookup(EnvAdapter); ok {
		c.Adapter = v
	}
	if v, ok := lookup(EnvErrorFormat); ok {
		c.ErrorFormat = v
	}
	if v, ok := lookup(EnvRedisAddr); ok {
		c.Cache.RedisAddr = v
		c.Cache.Enabled = v != ""
	}
	if v, ok := lookup(EnvLog); ok {
		logs, err := ParseLog(v)
		if err != nil {
			return err
		}
		c.Log = logs
	}
	return nil
}

// ParseLog parses a comma separated list of levels, each optionally
// suffixed with ":stdout" or ":event", e.g. "query:event,warn".
func ParseLog(s string) ([]Log, error) {
	var logs []Log
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level, emit, ok := strings.Cut(part, ":")
		if !ok {
			emit = EmitStdout
		}
		l := Log{Level: level, Emit: emit}
		if err := l.validate(); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// Validate reports invalid enumerations and durations.
func (c *Config) Validate() error {
	var errs []error
	switch c.ErrorFormat {
	case "", FormatPretty, FormatColorless, FormatMinimal:
	default:
		errs = append(errs, fmt.Errorf("config: unknown errorFormat %q", c.ErrorFormat))
	}
	switch c.Adapter {
	case "", "sqlite", "postgres", "pgx", "mysql":
	default:
		errs = append(errs, fmt.Errorf("config: unknown adapter %q", c.Adapter))
	}
	for _, l := range c.Log {
		if err := l.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Transaction.MaxWait < 0 || c.Transaction.Timeout < 0 {
		errs = append(errs, errors.New("config: negative transaction duration"))
	}
	return errors.Join(errs...)
}

func (l Log) validate() error {
	switch l.Level {
	case LevelQuery, LevelInfo, LevelWarn, LevelError:
	default:
		return fmt.Errorf("config: unknown log level %q", l.Level)
	}
	switch l.Emit {
	case EmitStdout, EmitEvent:
	default:
		return fmt.Errorf("config: unknown log emit %q", l.Emit)
	}
	return nil
}
