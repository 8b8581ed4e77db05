// Package config manages the process-global key/value config file
// (.dit/config), recognizing only the two keys spec.md §3 names:
// user.name and user.email.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/repo"
)

// Config is the .dit/config key/value store.
type Config struct {
	User UserConfig `toml:"user"`
}

// UserConfig holds authorship defaults, consulted when a commit's author
// isn't passed explicitly (spec.md §4.8).
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Load reads .dit/config, returning a zero-value Config if the file is
// empty (config is optional per spec.md §3).
func Load(r *repo.Repository) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(r.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, diterr.Wrap(diterr.KindFilesystem, "failed to read config", err)
	}
	if len(data) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, diterr.Wrap(diterr.KindSerialization, "failed to parse config", err)
	}
	return cfg, nil
}

// Save writes the config back to .dit/config.
func (c *Config) Save(r *repo.Repository) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return diterr.Wrap(diterr.KindSerialization, "failed to serialize config", err)
	}
	if err := os.WriteFile(r.ConfigPath(), data, 0o644); err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to write config", err)
	}
	return nil
}

// Get returns the value for a recognized key ("user.name" or
// "user.email") and whether the key is known.
func (c *Config) Get(key string) (string, bool) {
	switch key {
	case "user.name":
		return c.User.Name, true
	case "user.email":
		return c.User.Email, true
	default:
		return "", false
	}
}

// Set assigns a recognized key. Returns a diterr.KindConfig error for an
// unknown key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "user.name":
		c.User.Name = value
	case "user.email":
		c.User.Email = value
	default:
		return diterr.New(diterr.KindConfig, "unknown config key: "+key)
	}
	return nil
}
