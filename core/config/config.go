package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/chainsh/core/alias"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DefaultDirName    = ".chainsh"
)

type Configuration struct {
	configFs afero.Fs

	Prompt      string `json:"prompt"`
	ColorPrompt bool   `json:"color_prompt"`
	ShellName   string `json:"shell_name"`
	Path        string `json:"path" validate:"required"`

	Env     []Variable `json:"env" validate:"unique=Name,dive"`
	Aliases []Alias    `json:"aliases" validate:"unique=Name,dive"`

	EventLog string `json:"event_log"`
}

// Variable is an environment variable set when the shell starts.
type Variable struct {
	Name  string `json:"name" validate:"required,excludesall=="`
	Value string `json:"value"`
}

// Alias is an alias defined when the shell starts.
type Alias struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	if err := validate.Struct(c); err != nil {
		return err
	}

	for i, a := range c.Aliases {
		if err := alias.ValidateName(a.Name); err != nil {
			return fmt.Errorf("aliases[%d].name: %w", i, err)
		}
	}
	return nil
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewMemMapFs()
	}
	return c.configFs
}

// OpenEventLog opens the event log in an append only state. A nil file is
// returned if the event log is disabled.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, nil
	}
	return c.fs().OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if c.EventLog == "" {
		return nil, os.ErrNotExist
	}
	return c.fs().OpenFile(c.EventLog, os.O_RDONLY, 0600)
}

// DefaultDir returns the configuration directory used when none is given.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// Default returns the built in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
