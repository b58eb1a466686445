package config

import (
	"os"
	"strings"
)

// EnvVars are the process-wide settings.
type EnvVars struct {
	Env     string `yaml:"env" env:"ENV" env-default:"DEV"`
	AppName string `yaml:"app_name" env:"APP_NAME" env-default:"Smart Resume Matcher"`
	// BaseURL is the backend origin the client talks to.
	BaseURL string `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8000"`
	// Port is where the auth stub listens.
	Port string `yaml:"port" env:"PORT" env-default:"8000"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetBaseURL() string {
	return e.BaseURL
}

// GetPort returns the listen address, e.g. ":8000".
func (e EnvVars) GetPort() string {
	if strings.HasPrefix(e.Port, ":") {
		return e.Port
	}
	return ":" + e.Port
}

// GetEnv returns the environment variable or defaultValue when unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
