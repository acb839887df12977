package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxRecent bounds the recent-universe list.
const maxRecent = 10

// UniversesConfig is the universe registry: which universe commands act on
// when no --universe flag is given, plus a most-recently-used list.
type UniversesConfig struct {
	Current string   `yaml:"current,omitempty"`
	Recent  []string `yaml:"recent,omitempty"`
}

// LoadUniverses loads the universe registry from the .chronicle directory.
// A missing file yields an empty registry.
func LoadUniverses(basePath string) (*UniversesConfig, error) {
	data, err := os.ReadFile(UniversesFilePath(basePath))
	if os.IsNotExist(err) {
		return &UniversesConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading universes file: %w", err)
	}

	var cfg UniversesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing universes file: %w", err)
	}
	return &cfg, nil
}

// Save writes the registry to the universes file.
func (u *UniversesConfig) Save(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling universes config: %w", err)
	}
	if err := os.WriteFile(UniversesFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing universes file: %w", err)
	}
	return nil
}

// Touch marks a universe as current and moves it to the front of the recent
// list.
func (u *UniversesConfig) Touch(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	u.Current = name

	recent := make([]string, 0, len(u.Recent)+1)
	recent = append(recent, name)
	for _, r := range u.Recent {
		if r != name {
			recent = append(recent, r)
		}
	}
	if len(recent) > maxRecent {
		recent = recent[:maxRecent]
	}
	u.Recent = recent
}

// Forget drops a universe from the registry, clearing Current if it pointed
// at it.
func (u *UniversesConfig) Forget(name string) {
	if u.Current == name {
		u.Current = ""
	}
	recent := u.Recent[:0]
	for _, r := range u.Recent {
		if r != name {
			recent = append(recent, r)
		}
	}
	u.Recent = recent
	if u.Current == "" && len(u.Recent) > 0 {
		u.Current = u.Recent[0]
	}
}
