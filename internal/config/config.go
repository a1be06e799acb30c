// Package config loads the tool's YAML settings file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mnemo-srs/mnemo/internal/srs"
)

// Settings is the on-disk configuration. Zero values fall back to defaults,
// so a partial file only overrides what it names.
type Settings struct {
	// Vault is the root directory of the markdown vault.
	Vault string `yaml:"vault"`
	// DataDir holds the review history and link index. Defaults to
	// <vault>/.mnemo.
	DataDir string `yaml:"dataDir"`

	Scheduler SchedulerSettings `yaml:"scheduler"`
}

// SchedulerSettings mirrors the tunable scheduling parameters.
type SchedulerSettings struct {
	BaseEase           int     `yaml:"baseEase"`
	EaseStep           int     `yaml:"easeStep"`
	MinEase            int     `yaml:"minEase"`
	EasyBonus          float64 `yaml:"easyBonus"`
	HardIntervalFactor float64 `yaml:"hardIntervalFactor"`
	LinkContribution   float64 `yaml:"linkContribution"`
	MaximumInterval    int     `yaml:"maximumInterval"`
}

// Default returns settings with the vault at ~/vault and everything else
// left to zero values, which the scheduler fills with its own defaults.
func Default() Settings {
	return Settings{Vault: "~/vault"}
}

// Load reads settings from path. A missing file is not an error and yields
// Default(); a present but malformed file is.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

// SchedulerConfig converts the settings into the scheduler's config type.
func (s Settings) SchedulerConfig() srs.Config {
	return srs.Config{
		BaseEase:           s.Scheduler.BaseEase,
		EaseStep:           s.Scheduler.EaseStep,
		MinEase:            s.Scheduler.MinEase,
		EasyBonus:          s.Scheduler.EasyBonus,
		HardIntervalFactor: s.Scheduler.HardIntervalFactor,
		LinkContribution:   s.Scheduler.LinkContribution,
		MaximumInterval:    s.Scheduler.MaximumInterval,
	}
}

func (s Settings) dataDir() string {
	if s.DataDir != "" {
		return s.DataDir
	}
	return filepath.Join(s.Vault, ".mnemo")
}

// HistoryPath is where the review history document lives.
func (s Settings) HistoryPath() string {
	return filepath.Join(s.dataDir(), "history.json")
}

// IndexPath is where the link index database lives.
func (s Settings) IndexPath() string {
	return filepath.Join(s.dataDir(), "index.db")
}
