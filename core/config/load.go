package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// LoadFs loads the configuration from a directory in the filesystem. The
// event log is resolved relative to the same directory.
func LoadFs(base afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(base, filepath.Join(path, ConfigurationName))
	if err != nil {
		return nil, err
	}
	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ConfigurationName, err)
	}
	out.configFs = afero.NewBasePathFs(base, path)
	return &out, nil
}

// LoadOrDefault loads the configuration, falling back to the built in one
// if the directory hasn't been initialized.
func LoadOrDefault(base afero.Fs, path string) (*Configuration, error) {
	cfg, err := LoadFs(base, path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		cfg.configFs = afero.NewBasePathFs(base, path)
		return cfg, nil
	}
	return cfg, err
}

// Initialize writes the default configuration into dir, leaving an existing
// configuration alone.
func Initialize(base afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	if err := base.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(dir, ConfigurationName)
	switch exists, err := afero.Exists(base, configPath); {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("- %s already exists, skipping\n", configPath)
	default:
		logger.Printf("- Writing %s\n", configPath)
		if err := afero.WriteFile(base, configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	}

	return LoadFs(base, dir)
}
