package config

import (
	"github.com/kelseyhightower/envconfig"
)

type (
	// Env holds the values of environment variable based configuration
	Env struct {
		Host           string `envconfig:"HOST" default:"127.0.0.1"`
		Port           int    `envconfig:"PORT" default:"4300"`
		MocksFilePath  string `envconfig:"APILY_MOCKS" default:"./apily.yaml"`
		FilesDir       string `envconfig:"APILY_FILES_DIR" default:"."`
		ConfigBasePath string `envconfig:"APILY_CONFIG_BASE_PATH" default:"/mockconfig"`
		LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	}
)

// New returns a new Env config, panicking when the environment cannot be parsed
func New() *Env {
	cfg := &Env{}

	envconfig.MustProcess("", cfg)

	return cfg
}

// Load is New with the parse error returned
func Load() (*Env, error) {
	cfg := &Env{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
