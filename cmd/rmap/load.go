package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/zulandar/roadmapper/internal/catalog"
	"github.com/zulandar/roadmapper/internal/config"
)

// defaultConfigPath is read when present and --config is not given.
const defaultConfigPath = "rmap.yaml"

// loadConfig loads the env file, the optional YAML file and the environment,
// in that order. It does not validate.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	var cfg *config.Config
	if path != "" {
		c, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	} else {
		d := config.Default()
		cfg = &d
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCatalog returns the built-in catalog, or the overlay named by the config.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog == "" {
		return catalog.Default(cfg.GitHub.Username, cfg.Features.ReposPrivate), nil
	}
	cat, err := catalog.Load(cfg.Catalog, cfg.GitHub.Username, cfg.Features.ReposPrivate)
	if err != nil {
		return nil, &config.ConfigurationError{Problems: []string{err.Error()}}
	}
	return cat, nil
}

// errRunFailed signals that at least one resource failed. The summary has
// already been printed, so there is nothing more to say.
var errRunFailed = errors.New("one or more resources failed")
