// Package config holds the project descriptor and the environment-derived
// maintainer identity. Both are resolved once, up front, and passed into
// components as values so tests never have to mutate the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional per-project descriptor. When absent, the
// compiled-in defaults for kport apply.
const ConfigFile = "kdist.yaml"

// Maintainer identifies who the generated packaging is attributed to.
type Maintainer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

func (m Maintainer) String() string {
	return fmt.Sprintf("%s <%s>", m.Name, m.Email)
}

// Config describes the project being packaged.
type Config struct {
	// Package is the native package name.
	Package     string `yaml:"package"`
	Section     string `yaml:"section"`
	Description string `yaml:"description"`
	LongDesc    string `yaml:"long_description"`
	Homepage    string `yaml:"homepage"`

	// EntryPoint is the single executable script the package installs.
	EntryPoint  string `yaml:"entry_point"`
	InstallPath string `yaml:"install_path"`

	// RuntimeDeps are the package's Depends entries beyond ${misc:Depends}.
	RuntimeDeps []string `yaml:"runtime_deps"`

	// Exclude lists directory names left out of the isolated build copy,
	// in addition to any name ending in .egg-info.
	Exclude []string `yaml:"exclude"`

	// DistDir is where collected artifacts land, relative to the root.
	DistDir string `yaml:"dist_dir"`

	Maintainer Maintainer `yaml:"maintainer"`
}

// Defaults returns the descriptor for kport.
func Defaults() Config {
	return Config{
		Package:     "kport",
		Section:     "utils",
		Description: "Cross-platform port inspector and killer",
		LongDesc: "kport helps you list, inspect, and kill processes using ports.\n" +
			"It can also show Docker port mappings when Docker is installed.",
		Homepage:    "https://github.com/farman20ali/port-killer",
		EntryPoint:  "kport.py",
		InstallPath: "usr/bin/kport",
		RuntimeDeps: []string{"python3", "python3-psutil"},
		Exclude: []string{
			".git", "__pycache__", ".pytest_cache", ".mypy_cache",
			".venv", "venv", "dist", "build",
		},
		DistDir: "dist",
	}
}

// Load reads kdist.yaml under root when present and overlays it on the
// defaults. The maintainer identity is then resolved from the environment
// unless the descriptor pinned one.
func Load(root string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(filepath.Join(root, ConfigFile)) //nolint:gosec // G304: fixed filename under project root
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", ConfigFile, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	if cfg.Maintainer.Name == "" || cfg.Maintainer.Email == "" {
		id := MaintainerFromEnv(os.Getenv)
		if cfg.Maintainer.Name == "" {
			cfg.Maintainer.Name = id.Name
		}
		if cfg.Maintainer.Email == "" {
			cfg.Maintainer.Email = id.Email
		}
	}
	return cfg, nil
}

// MaintainerFromEnv derives the packaging identity from the environment,
// first-match-wins, with fixed fallbacks when nothing is set.
func MaintainerFromEnv(getenv func(string) string) Maintainer {
	name := getenv("DEBFULLNAME")
	if name == "" {
		name = getenv("NAME")
	}
	if name == "" {
		name = "kport builder"
	}
	email := getenv("DEBEMAIL")
	if email == "" {
		email = getenv("EMAIL")
	}
	if email == "" {
		email = "builder@localhost"
	}
	return Maintainer{Name: name, Email: email}
}
