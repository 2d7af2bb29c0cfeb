package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/iov-one/daowallet/errors"
	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the configuration file inside of the home
// directory.
const ConfigFile = "config.yaml"

// Config holds the node settings. It is read from a YAML file and can be
// overwritten with environment variables.
type Config struct {
	// Home is the directory holding the database and the genesis file.
	Home string `yaml:"home"`
	// DBName is the name of the leveldb database inside of Home.
	DBName string `yaml:"db_name"`
	// Genesis is the genesis file path, relative to Home unless absolute.
	Genesis string `yaml:"genesis"`
	// LogLevel is one of debug, info, error or none.
	LogLevel string `yaml:"log_level"`
	// Debug enables full error messages, including stack traces.
	Debug bool `yaml:"debug"`
}

// fileConfig mirrors Config, with pointers where a zero value is a valid
// setting.
type fileConfig struct {
	Home     string `yaml:"home"`
	DBName   string `yaml:"db_name"`
	Genesis  string `yaml:"genesis"`
	LogLevel string `yaml:"log_level"`
	Debug    *bool  `yaml:"debug"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	home := ".daowallet"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".daowallet")
	}
	return Config{
		Home:     home,
		DBName:   "daowallet",
		Genesis:  "genesis.json",
		LogLevel: "info",
	}
}

// LoadConfig returns the default configuration merged with the content of
// given file and the environment. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, errors.Wrapf(errors.ErrInput, "read %s: %s", path, err)
		default:
			var parsed fileConfig
			if err := yaml.Unmarshal(data, &parsed); err != nil {
				return cfg, errors.Wrapf(errors.ErrInput, "parse %s: %s", path, err)
			}
			merge(&cfg, parsed)
		}
	}
	ApplyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

// merge copies all values set in src into dst.
func merge(dst *Config, src fileConfig) {
	if src.Home != "" {
		dst.Home = src.Home
	}
	if src.DBName != "" {
		dst.DBName = src.DBName
	}
	if src.Genesis != "" {
		dst.Genesis = src.Genesis
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.Debug != nil {
		dst.Debug = *src.Debug
	}
}

// ApplyEnvOverrides reads DAOWALLET_HOME, DAOWALLET_LOG_LEVEL and
// DAOWALLET_DEBUG.
func ApplyEnvOverrides(cfg *Config) {
	if home := strings.TrimSpace(os.Getenv("DAOWALLET_HOME")); home != "" {
		cfg.Home = home
	}
	if level := strings.TrimSpace(os.Getenv("DAOWALLET_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}
	raw := strings.TrimSpace(os.Getenv("DAOWALLET_DEBUG"))
	if raw == "" {
		return
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		cfg.Debug = v
	}
}

// Validate returns an error if the configuration cannot be used.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.Wrap(errors.ErrEmpty, "home")
	}
	if c.DBName == "" {
		return errors.Wrap(errors.ErrEmpty, "db name")
	}
	switch c.LogLevel {
	case "debug", "info", "error", "none":
	default:
		return errors.Wrapf(errors.ErrInput, "unknown log level %q", c.LogLevel)
	}
	return nil
}

// GenesisPath returns the absolute location of the genesis file.
func (c Config) GenesisPath() string {
	if filepath.IsAbs(c.Genesis) {
		return c.Genesis
	}
	return filepath.Join(c.Home, c.Genesis)
}
