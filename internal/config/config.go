// Package config loads the optional nqtv settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Theme holds the TUI colours, as lipgloss colour strings ("63", "#7D56F4").
type Theme struct {
	Accent string `toml:"accent"`
	Muted  string `toml:"muted"`
	Link   string `toml:"link"`
}

// Config is the settings file. Command-line flags override every field.
type Config struct {
	NixStore string `toml:"nix_store"`
	Sort     string `toml:"sort"`
	LogFile  string `toml:"log_file"`
	WebAddr  string `toml:"web_addr"`
	Theme    Theme  `toml:"theme"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		NixStore: "nix-store",
		Sort:     "store",
		WebAddr:  "localhost:8080",
		Theme: Theme{
			Accent: "63",
			Muted:  "245",
			Link:   "39",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/nqtv/config.toml or the platform
// equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config: %w", err)
	}
	return filepath.Join(dir, "nqtv", "config.toml"), nil
}

// Load reads the TOML file at path over the defaults. A missing file yields
// the defaults. Keys nqtv does not know are an error so typos do not pass
// silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("read config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.fill()
	return cfg, nil
}

// fill restores defaults for keys set to empty strings.
func (c *Config) fill() {
	def := Default()
	if strings.TrimSpace(c.NixStore) == "" {
		c.NixStore = def.NixStore
	}
	if strings.TrimSpace(c.Sort) == "" {
		c.Sort = def.Sort
	}
	if strings.TrimSpace(c.WebAddr) == "" {
		c.WebAddr = def.WebAddr
	}
	if c.Theme.Accent == "" {
		c.Theme.Accent = def.Theme.Accent
	}
	if c.Theme.Muted == "" {
		c.Theme.Muted = def.Theme.Muted
	}
	if c.Theme.Link == "" {
		c.Theme.Link = def.Theme.Link
	}
}
