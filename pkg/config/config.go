// Package config loads photowall settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/tstromberg/photowall/pkg/layout"
	"github.com/tstromberg/photowall/pkg/photo"
	"k8s.io/klog/v2"
)

const (
	defaultConfigPath = "~/.config/photowall/config.toml"
	defaultAddr       = "localhost:12800"
	envPrefix         = "PHOTOWALL_"
)

// Library says where photos come from and how they are grouped.
type Library struct {
	InDirs          []string `toml:"in_dirs" env:"IN_DIRS" envSeparator:","`
	OutDir          string   `toml:"out_dir" env:"OUT_DIR"`
	ProcessSidecars bool     `toml:"process_sidecars" env:"PROCESS_SIDECARS"`
	Group           string   `toml:"group" env:"GROUP"`
	Order           string   `toml:"order" env:"ORDER"`
}

// Serve configures the HTTP host.
type Serve struct {
	Addr  string `toml:"addr" env:"ADDR"`
	Title string `toml:"title" env:"TITLE"`
}

// Person adds what EXIF cannot say about someone tagged in photos.
type Person struct {
	Name      string `toml:"name"`
	BirthYear int    `toml:"birth_year"`
	Avatar    string `toml:"avatar"`
}

// Config is the full photowall configuration.
type Config struct {
	Layout  layout.Config `toml:"layout"`
	Library Library       `toml:"library"`
	Serve   Serve         `toml:"serve"`
	People  []Person      `toml:"people"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Layout:  layout.DefaultConfig(),
		Library: Library{Group: "month", Order: "desc"},
		Serve:   Serve{Addr: defaultAddr, Title: "photowall"},
	}
}

// Load reads path (or the default location), applies PHOTOWALL_* environment
// overrides, and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		klog.V(1).Infof("no config at %s, using defaults", resolved)
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		if err := decode(file, &cfg); err != nil {
			return Config{}, err
		}
		klog.V(1).Infof("loaded config from %s", resolved)
	}

	if err := parseEnv(&cfg); err != nil {
		return Config{}, err
	}

	for i, d := range cfg.Library.InDirs {
		cfg.Library.InDirs[i] = mustExpand(d)
	}
	if cfg.Library.OutDir != "" {
		cfg.Library.OutDir = mustExpand(cfg.Library.OutDir)
	}
	if strings.TrimSpace(cfg.Serve.Addr) == "" {
		cfg.Serve.Addr = defaultAddr
	}

	if err := cfg.Layout.Validate(); err != nil {
		return Config{}, fmt.Errorf("layout: %w", err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(bytes, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func parseEnv(cfg *Config) error {
	opts := env.Options{Prefix: envPrefix}
	for _, target := range []any{&cfg.Layout, &cfg.Library, &cfg.Serve} {
		if err := env.ParseWithOptions(target, opts); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// PeopleByName indexes People by lowercased name, in the form the library wants.
func (c Config) PeopleByName() map[string]photo.Person {
	m := make(map[string]photo.Person, len(c.People))
	for _, p := range c.People {
		m[strings.ToLower(strings.TrimSpace(p.Name))] = photo.Person{Name: p.Name, BirthYear: p.BirthYear, Avatar: p.Avatar}
	}
	return m
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
