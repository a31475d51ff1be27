// Package config loads searchd configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	searcherrors "github.com/solosuccess/searchd/internal/errors"
)

// Config is the complete searchd configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Index   IndexConfig   `yaml:"index"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// Duration wraps time.Duration so YAML can carry values like "5s".
type Duration time.Duration

// UnmarshalYAML accepts either a duration string ("10s") or bare seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// IndexConfig configures the index store and query policy.
type IndexConfig struct {
	// Path is the SQLite database location. Empty means in-memory
	// (useful for tests; everything is lost on restart).
	Path string `yaml:"path"`

	// ResultLimit caps results per search.
	ResultLimit int `yaml:"result_limit"`

	// MinQueryLength is the shortest query that executes a search.
	MinQueryLength int `yaml:"min_query_length"`

	// SnippetLength is how many characters of content a snippet carries.
	SnippetLength int `yaml:"snippet_length"`
}

// AuthConfig configures identity resolution.
// Tokens maps bearer tokens to user IDs; the upstream gateway provisions
// them out of band. searchd never mints credentials.
type AuthConfig struct {
	Tokens map[string]string `yaml:"tokens"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// FilePath is the log file location. Empty means stderr only.
	FilePath string `yaml:"file_path"`
	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxFiles is the number of rotated files to keep.
	MaxFiles int `yaml:"max_files"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8790,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Index: IndexConfig{
			Path:           defaultIndexPath(),
			ResultLimit:    20,
			MinQueryLength: 2,
			SnippetLength:  150,
		},
		Auth: AuthConfig{
			Tokens: map[string]string{},
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// defaultIndexPath places the index under the user's home directory.
func defaultIndexPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "searchd.db"
	}
	return home + "/.searchd/index.db"
}

// Load reads configuration from path, falling back to defaults when path
// is empty or the file does not exist. Environment overrides apply last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, searcherrors.New(searcherrors.ErrCodeConfigNotFound,
					fmt.Sprintf("cannot read config %s", path), err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, searcherrors.New(searcherrors.ErrCodeConfigInvalid,
				fmt.Sprintf("cannot parse config %s", path), err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides lets deployments override file settings without
// editing it: SEARCHD_HOST, SEARCHD_PORT, SEARCHD_DB_PATH, SEARCHD_LOG_LEVEL.
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("SEARCHD_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SEARCHD_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = n
		}
	}
	if path := os.Getenv("SEARCHD_DB_PATH"); path != "" {
		cfg.Index.Path = path
	}
	if level := os.Getenv("SEARCHD_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return searcherrors.New(searcherrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid port %d", c.Server.Port), nil)
	}
	if c.Index.ResultLimit < 1 {
		return searcherrors.New(searcherrors.ErrCodeConfigInvalid,
			"result_limit must be at least 1", nil)
	}
	if c.Index.MinQueryLength < 1 {
		return searcherrors.New(searcherrors.ErrCodeConfigInvalid,
			"min_query_length must be at least 1", nil)
	}
	if c.Index.SnippetLength < 1 {
		return searcherrors.New(searcherrors.ErrCodeConfigInvalid,
			"snippet_length must be at least 1", nil)
	}
	return nil
}
