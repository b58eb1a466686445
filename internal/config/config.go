// Package config loads settings for the resumectl CLI and the auth stub.
//
// Sources, highest priority first:
//  1. environment variables (a .env file is loaded into the environment first);
//  2. the YAML file given explicitly, by CONFIG_PATH, or ./config.yaml;
//  3. defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	configPathVar     = "CONFIG_PATH"
	defaultConfigFile = "config.yaml"
)

type Config interface {
	EnvConfig
	ClientConfig
	StorageConfig
	TokenConfig
}

type EnvConfig interface {
	GetEnv() string
	GetAppName() string
	GetBaseURL() string
	GetPort() string
}

type ClientConfig interface {
	GetHTTPTimeout() time.Duration
	GetVerifyInterval() time.Duration
	GetCookieMirror() bool
	GetRefreshSkew() time.Duration
}

type mainConfig struct {
	EnvVars `yaml:",inline"`
	Client  `yaml:"client"`
	Storage `yaml:"storage"`
	Tokens  `yaml:"tokens"`
}

var _ Config = mainConfig{}

// Load reads path (or CONFIG_PATH, or ./config.yaml when present) and
// overlays the environment. With no file at all the environment and
// defaults are used.
func Load(path string) (Config, error) {
	var cfg mainConfig

	if path == "" {
		path = os.Getenv(configPathVar)
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("[config Load] config file %q: %w", path, err)
		}
		// ReadConfig overlays the environment after parsing the file.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("[config Load] read %q: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("[config Load] read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("[config Load] %w", err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadDotEnv copies the given .env files (default ./.env) into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("[config LoadDotEnv] %s: %w", f, err)
		}
	}
	return nil
}

func (c mainConfig) validate() error {
	switch c.Storage.Kind {
	case StorageMemory, StorageFile, StorageRedis:
	default:
		return fmt.Errorf("unknown storage kind %q", c.Storage.Kind)
	}
	if c.Storage.Kind == StorageRedis && c.Storage.RedisAddr == "" {
		return fmt.Errorf("storage kind redis needs REDIS_ADDR")
	}
	if c.Storage.Kind == StorageFile && c.Storage.Path == "" {
		return fmt.Errorf("storage kind file needs STORAGE_PATH")
	}
	return nil
}
