package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log  Log    `koanf:"log"`
	Geth Geth   `koanf:"geth"`
	File string `koanf:"-"`
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(home, "geth-launch-config", "config.yml")
}

func New() *Config {
	return &Config{}
}

func NewFromConfigFile(path string) (*Config, error) {
	c := New()
	if err := c.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Log.ConfigureWithLevelString("", false)
	return c, nil
}

func (c *Config) LoadFromFile(path string) error {
	c.File = path

	k := koanf.New(".")

	defaults := map[string]any{
		"log.level":              "info",
		"log.format":             "text",
		"log.disable_timestamps": false,
		"geth.genesis_file":      "",
		"geth.init":              true,
		"geth.wait_ready":        true,
		"geth.ready_timeout":     "60s",
		"geth.stop_timeout":      "30s",
	}

	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Warn("config file not found, using defaults", "path", path)
		} else {
			return fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Unmarshal("", c); err != nil {
		return fmt.Errorf("unmarshalling config: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if err := c.Geth.Validate(); err != nil {
		return fmt.Errorf("geth config: %w", err)
	}
	return nil
}
