package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "SFS"
	appName      = "sfs"

	defaultDisk = "disk.sfs"
	defaultSize = 16 << 20
)

type Config struct {
	Disk  string `envconfig:"SFS_DISK"  yaml:"disk"`
	Size  uint64 `envconfig:"SFS_SIZE"  yaml:"size"`
	Debug uint64 `envconfig:"SFS_DEBUG" yaml:"debug"`
	Stats bool   `envconfig:"SFS_STATS" yaml:"stats"`
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName+".yaml")
}

// LoadConfig reads the YAML file at path and then the SFS_* environment
// variables. If path is empty, SFS_CONFIG_FILE or the user's config
// directory is tried instead, and a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(envVarPrefix + "_CONFIG_FILE")
	}
	if path == "" {
		explicit = false
		path = defaultConfigFile()
	}

	c := Config{Disk: defaultDisk, Size: defaultSize}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file: %w", err)
		}
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Disk == "" {
		return fmt.Errorf("missing required configuration: disk / %s_DISK", envVarPrefix)
	}
	return nil
}
