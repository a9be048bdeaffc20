package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Prefix for every environment variable, e.g. CAPTCHA_ADDR.
const Prefix = "CAPTCHA"

// FileEnv names the optional YAML file read before the environment.
const FileEnv = "CAPTCHA_CONFIG"

type Config struct {
	Server `yaml:",inline"`
	Puzzle `yaml:",inline"`
	Store  `yaml:",inline"`
	Log    `yaml:",inline"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: defaultServer(),
		Puzzle: defaultPuzzle(),
		Store:  defaultStore(),
		Log:    defaultLog(),
	}
}

// Load applies, in order: defaults, the YAML file named by CAPTCHA_CONFIG,
// and CAPTCHA_* environment variables.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := envconfig.Process(Prefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance must not be negative, got %d", c.Tolerance)
	}
	switch c.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("sqlite store needs %s_SQLITE_PATH", Prefix)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Driver)
	}
	return nil
}
