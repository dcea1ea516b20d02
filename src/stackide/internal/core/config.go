package core

import (
	"fmt"
	"os"
	"path/filepath"

	uber_config "go.uber.org/config"
	"go.uber.org/fx"
)

const (
	_envConfigDir     = "STACKIDE_CONFIG_DIR"
	_defaultConfigDir = "src/stackide/config"
	_metaFile         = "meta.yaml"
)

// ConfigModule provides the merged YAML configuration.
var ConfigModule = fx.Options(
	fx.Provide(NewConfig),
)

// Config wraps the merged provider so it can be named in logs and fx graphs.
type Config struct {
	provider uber_config.Provider
}

// Get returns the value at the given dotted path.
func (c Config) Get(path string) uber_config.Value {
	return c.provider.Get(path)
}

// Name of the provider.
func (c Config) Name() string {
	return "config"
}

// NewConfig loads the files listed in meta.yaml of the config directory, in order, with environment expansion.
func NewConfig() (uber_config.Provider, error) {
	return NewConfigFromDir(getConfigDir())
}

// NewConfigFromDir is NewConfig for an explicit directory.
func NewConfigFromDir(configDir string) (uber_config.Provider, error) {
	metaProvider, err := uber_config.NewYAML(
		uber_config.File(filepath.Join(configDir, _metaFile)),
		uber_config.Expand(os.LookupEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load meta configuration: %w", err)
	}

	var configFiles []string
	if err := metaProvider.Get("files").Populate(&configFiles); err != nil {
		return nil, fmt.Errorf("failed to read files list from %s: %w", _metaFile, err)
	}

	// Missing files are optional overlays.
	var options []uber_config.YAMLOption
	for _, file := range configFiles {
		fullPath := filepath.Join(configDir, file)
		if _, err := os.Stat(fullPath); err == nil {
			options = append(options, uber_config.File(fullPath))
		}
	}

	if len(options) == 0 {
		return nil, fmt.Errorf("no configuration files found in %s", configDir)
	}
	options = append(options, uber_config.Expand(os.LookupEnv))

	provider, err := uber_config.NewYAML(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return Config{provider: provider}, nil
}

func getConfigDir() string {
	if configDir := os.Getenv(_envConfigDir); configDir != "" {
		return configDir
	}

	// Assumes the binary is run from the workspace root.
	return _defaultConfigDir
}
