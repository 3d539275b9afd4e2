package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"lineup-sim/simulation"
)

// ServerConfig is the process-level configuration, populated from the
// environment. Simulation constants live in simulation.Config; a YAML
// constants file can override those defaults via CONSTANTS_FILE.
type ServerConfig struct {
	Port          string `env:"PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`
	DatabaseURL   string `env:"DATABASE_URL"`
	ConstantsFile string `env:"CONSTANTS_FILE"`
	Workers       int    `env:"WORKERS" envDefault:"1"`
	Simulations   int    `env:"SIMULATIONS" envDefault:"10000"`
}

// LoadServerConfig reads the environment into a ServerConfig.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// SimulationDefaults builds the base simulation config for this process:
// library defaults, then the constants file if configured, then the env
// worker and simulation-count overrides.
func (c *ServerConfig) SimulationDefaults() (simulation.Config, error) {
	var (
		cfg simulation.Config
		err error
	)
	if c.ConstantsFile != "" {
		cfg, err = simulation.LoadConfigFile(c.ConstantsFile)
		if err != nil {
			return simulation.Config{}, fmt.Errorf("constants file %s: %w", c.ConstantsFile, err)
		}
	} else {
		cfg = simulation.DefaultConfig()
	}

	cfg.Workers = c.Workers
	cfg.Simulations = c.Simulations
	if err := cfg.Validate(); err != nil {
		return simulation.Config{}, fmt.Errorf("simulation defaults: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger from the configured level and
// format.
func (c *ServerConfig) NewLogger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if c.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
