// Package config loads GoStem settings from gostem.yaml, GOSTEM_* environment
// variables and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"GoStem/internal/analysis"
	"GoStem/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. GOSTEM_SERVER_ADDR.
const EnvPrefix = "GOSTEM"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Corpus   CorpusConfig   `mapstructure:"corpus" yaml:"corpus"`
	Index    IndexConfig    `mapstructure:"index" yaml:"index"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type AnalysisConfig struct {
	Analyzer  string `mapstructure:"analyzer" yaml:"analyzer"`
	StopWords bool   `mapstructure:"stopwords" yaml:"stopwords"`
	Normalize bool   `mapstructure:"normalize" yaml:"normalize"`
}

type CorpusConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type IndexConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Workers int    `mapstructure:"workers" yaml:"workers"`
	Verify  bool   `mapstructure:"verify" yaml:"verify"`
	// MemoryLimit bounds the in-memory term buffer, in bytes.
	MemoryLimit int64 `mapstructure:"memory_limit" yaml:"memory_limit"`
}

type SearchConfig struct {
	CacheSize     int           `mapstructure:"cache_size" yaml:"cache_size"`
	MaxResults    int           `mapstructure:"max_results" yaml:"max_results"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxExpansions int           `mapstructure:"max_expansions" yaml:"max_expansions"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	CORS            bool          `mapstructure:"cors" yaml:"cors"`
	Debug           bool          `mapstructure:"debug" yaml:"debug"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

var defaults = map[string]any{
	"log.level":               "info",
	"log.format":              logging.FormatJSON,
	"analysis.analyzer":       analysis.AnalyzerRussian,
	"analysis.stopwords":      false,
	"analysis.normalize":      false,
	"corpus.dir":              "corpus",
	"index.dir":               "index",
	"index.workers":           4,
	"index.verify":            false,
	"index.memory_limit":      512 << 20,
	"search.cache_size":       4096,
	"search.max_results":      50,
	"search.timeout":          "5s",
	"search.max_expansions":   1000,
	"server.addr":             "127.0.0.1:8080",
	"server.cors":             false,
	"server.debug":            false,
	"server.read_timeout":     "15s",
	"server.write_timeout":    "30s",
	"server.shutdown_timeout": "10s",
	"metrics.enabled":         true,
}

// NewViper returns a viper instance with defaults and environment
// overrides set up. Callers bind flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file and decodes the merged settings. An explicit
// path must exist; otherwise gostem.yaml is looked up in . and $HOME and
// may be absent.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gostem")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in settings without consulting files or the
// environment.
func Default() *Config {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(logging.ValidLevel(c.Log.Level), "log.level %q", c.Log.Level)
	check(c.Log.Format == logging.FormatJSON || c.Log.Format == logging.FormatText,
		"log.format %q (want json or text)", c.Log.Format)
	check(analysis.IsBuiltin(c.Analysis.Analyzer), "analysis.analyzer %q", c.Analysis.Analyzer)
	check(c.Index.Workers > 0, "index.workers must be positive, got %d", c.Index.Workers)
	check(c.Index.MemoryLimit > 0, "index.memory_limit must be positive, got %d", c.Index.MemoryLimit)
	check(c.Search.CacheSize >= 0, "search.cache_size must not be negative, got %d", c.Search.CacheSize)
	check(c.Search.MaxResults > 0, "search.max_results must be positive, got %d", c.Search.MaxResults)
	check(c.Search.MaxExpansions > 0, "search.max_expansions must be positive, got %d", c.Search.MaxExpansions)
	check(c.Search.Timeout >= 0, "search.timeout must not be negative")
	if _, _, err := c.Server.HostPort(); err != nil {
		errs = append(errs, fmt.Errorf("%w: server.addr: %w", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// HostPort splits Addr. An empty host means all interfaces.
func (s ServerConfig) HostPort() (string, int, error) {
	host, portStr, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("bad port %q", portStr)
	}
	return host, port, nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// MarshalYAML writes durations as strings like "5s".
func (s SearchConfig) MarshalYAML() (any, error) {
	return struct {
		CacheSize     int    `yaml:"cache_size"`
		MaxResults    int    `yaml:"max_results"`
		Timeout       string `yaml:"timeout"`
		MaxExpansions int    `yaml:"max_expansions"`
	}{s.CacheSize, s.MaxResults, s.Timeout.String(), s.MaxExpansions}, nil
}

// MarshalYAML writes durations as strings like "5s".
func (s ServerConfig) MarshalYAML() (any, error) {
	return struct {
		Addr            string `yaml:"addr"`
		CORS            bool   `yaml:"cors"`
		Debug           bool   `yaml:"debug"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	}{s.Addr, s.CORS, s.Debug, s.ReadTimeout.String(), s.WriteTimeout.String(), s.ShutdownTimeout.String()}, nil
}
