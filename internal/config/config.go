// Package config loads and persists sketchdb's defaults: the sketching
// parameters new signatures get when a command doesn't override them,
// and the storage backend new indexes are built against.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds sketchdb's user-level and repository-level settings.
type Config struct {
	Sketch SketchConfig `json:"sketch"`
	Index  IndexConfig  `json:"index"`
	Color  ColorConfig  `json:"color"`
	Author AuthorConfig `json:"author"`
}

// SketchConfig holds the default MinHash parameters used when a
// command doesn't specify ksize/scaled/num/moltype explicitly.
type SketchConfig struct {
	Ksize      uint32 `json:"ksize"`
	Scaled     uint64 `json:"scaled"`
	Num        uint32 `json:"num"`
	Moltype    string `json:"moltype"`
	TrackAbund bool   `json:"track_abundance"`
}

// IndexConfig holds the default index shape used by `sketchdb index`.
type IndexConfig struct {
	Backend string `json:"backend"` // "sbt" or "linear"
	D       int    `json:"d"`       // SBT branching factor
	NStart  uint64 `json:"n_start"` // Nodegraph starting table size
	NTables int    `json:"n_tables"`
}

// ColorConfig holds terminal color settings.
type ColorConfig struct {
	UI bool `json:"ui"`
}

// AuthorConfig identifies the operator in signature metadata.
type AuthorConfig struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DefaultConfig returns a config with sensible defaults: ksize=21,
// scaled=1000 (the common default for whole-genome comparisons), DNA
// sketches, and a 4-ary SBT.
func DefaultConfig() *Config {
	return &Config{
		Sketch: SketchConfig{
			Ksize:   21,
			Scaled:  1000,
			Moltype: "DNA",
		},
		Index: IndexConfig{
			Backend: "sbt",
			D:       4,
			NStart:  100000,
			NTables: 4,
		},
		Color: ColorConfig{
			UI: true,
		},
	}
}

// globalConfigPath returns the path to the global config file.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sketchdbconfig"), nil
}

// repoConfigPath returns the path to the per-collection config file.
func repoConfigPath() string {
	return filepath.Join(".sketchdb", "config")
}

// LoadConfig loads configuration from both global and local config
// files; the local config takes precedence over the global one.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	globalPath, err := globalConfigPath()
	if err == nil {
		if data, err := os.ReadFile(globalPath); err == nil {
			var globalCfg Config
			if err := json.Unmarshal(data, &globalCfg); err == nil {
				mergeConfig(cfg, &globalCfg)
			}
		}
	}

	repoPath := repoConfigPath()
	if data, err := os.ReadFile(repoPath); err == nil {
		var repoCfg Config
		if err := json.Unmarshal(data, &repoCfg); err == nil {
			mergeConfig(cfg, &repoCfg)
		}
	}

	return cfg, nil
}

// SaveGlobalConfig saves configuration to the global config file.
func SaveGlobalConfig(cfg *Config) error {
	globalPath, err := globalConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(globalPath, data, 0644)
}

// SaveRepoConfig saves configuration to the local config file,
// creating its directory if needed.
func SaveRepoConfig(cfg *Config) error {
	repoPath := repoConfigPath()

	if err := os.MkdirAll(filepath.Dir(repoPath), 0755); err != nil {
		return fmt.Errorf("failed to create .sketchdb directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(repoPath, data, 0644)
}

// GetValue retrieves a configuration value by key (e.g. "sketch.ksize").
func GetValue(key string) (string, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid config key: %s (expected format: section.key)", key)
	}
	section, field := parts[0], parts[1]

	switch section {
	case "sketch":
		switch field {
		case "ksize":
			return fmt.Sprintf("%d", cfg.Sketch.Ksize), nil
		case "scaled":
			return fmt.Sprintf("%d", cfg.Sketch.Scaled), nil
		case "num":
			return fmt.Sprintf("%d", cfg.Sketch.Num), nil
		case "moltype":
			return cfg.Sketch.Moltype, nil
		case "track_abundance":
			return fmt.Sprintf("%t", cfg.Sketch.TrackAbund), nil
		default:
			return "", fmt.Errorf("unknown sketch config field: %s", field)
		}
	case "index":
		switch field {
		case "backend":
			return cfg.Index.Backend, nil
		case "d":
			return fmt.Sprintf("%d", cfg.Index.D), nil
		case "n_start":
			return fmt.Sprintf("%d", cfg.Index.NStart), nil
		case "n_tables":
			return fmt.Sprintf("%d", cfg.Index.NTables), nil
		default:
			return "", fmt.Errorf("unknown index config field: %s", field)
		}
	case "color":
		switch field {
		case "ui":
			return fmt.Sprintf("%t", cfg.Color.UI), nil
		default:
			return "", fmt.Errorf("unknown color config field: %s", field)
		}
	case "author":
		switch field {
		case "name":
			return cfg.Author.Name, nil
		case "email":
			return cfg.Author.Email, nil
		default:
			return "", fmt.Errorf("unknown author config field: %s", field)
		}
	default:
		return "", fmt.Errorf("unknown config section: %s", section)
	}
}

// SetValue sets a configuration value by key, persisting to either the
// global or local config file.
func SetValue(key, value string, global bool) error {
	var cfg *Config

	path := repoConfigPath()
	if global {
		globalPath, _ := globalConfigPath()
		path = globalPath
	}
	if data, err := os.ReadFile(path); err == nil {
		cfg = &Config{}
		if err := json.Unmarshal(data, cfg); err != nil {
			cfg = DefaultConfig()
		}
	} else {
		cfg = DefaultConfig()
	}

	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid config key: %s (expected format: section.key)", key)
	}
	section, field := parts[0], parts[1]

	switch section {
	case "sketch":
		switch field {
		case "moltype":
			cfg.Sketch.Moltype = value
		case "track_abundance":
			cfg.Sketch.TrackAbund = value == "true"
		default:
			var n uint64
			if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
				return fmt.Errorf("invalid numeric value %q for sketch.%s", value, field)
			}
			switch field {
			case "ksize":
				cfg.Sketch.Ksize = uint32(n)
			case "scaled":
				cfg.Sketch.Scaled = n
			case "num":
				cfg.Sketch.Num = uint32(n)
			default:
				return fmt.Errorf("unknown sketch config field: %s", field)
			}
		}
	case "index":
		switch field {
		case "backend":
			cfg.Index.Backend = value
		default:
			var n uint64
			if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
				return fmt.Errorf("invalid numeric value %q for index.%s", value, field)
			}
			switch field {
			case "d":
				cfg.Index.D = int(n)
			case "n_start":
				cfg.Index.NStart = n
			case "n_tables":
				cfg.Index.NTables = int(n)
			default:
				return fmt.Errorf("unknown index config field: %s", field)
			}
		}
	case "color":
		if field != "ui" {
			return fmt.Errorf("unknown color config field: %s", field)
		}
		cfg.Color.UI = value == "true"
	case "author":
		switch field {
		case "name":
			cfg.Author.Name = value
		case "email":
			cfg.Author.Email = value
		default:
			return fmt.Errorf("unknown author config field: %s", field)
		}
	default:
		return fmt.Errorf("unknown config section: %s", section)
	}

	if global {
		return SaveGlobalConfig(cfg)
	}
	return SaveRepoConfig(cfg)
}

// mergeConfig merges non-zero fields of src into dst. The boolean
// fields sketch.track_abundance and color.ui are always copied from
// src, so a file that omits them sets them to false.
func mergeConfig(dst, src *Config) {
	if src.Sketch.Ksize != 0 {
		dst.Sketch.Ksize = src.Sketch.Ksize
	}
	if src.Sketch.Scaled != 0 {
		dst.Sketch.Scaled = src.Sketch.Scaled
	}
	if src.Sketch.Num != 0 {
		dst.Sketch.Num = src.Sketch.Num
	}
	if src.Sketch.Moltype != "" {
		dst.Sketch.Moltype = src.Sketch.Moltype
	}
	dst.Sketch.TrackAbund = src.Sketch.TrackAbund

	if src.Index.Backend != "" {
		dst.Index.Backend = src.Index.Backend
	}
	if src.Index.D != 0 {
		dst.Index.D = src.Index.D
	}
	if src.Index.NStart != 0 {
		dst.Index.NStart = src.Index.NStart
	}
	if src.Index.NTables != 0 {
		dst.Index.NTables = src.Index.NTables
	}

	dst.Color.UI = src.Color.UI

	if src.Author.Name != "" {
		dst.Author.Name = src.Author.Name
	}
	if src.Author.Email != "" {
		dst.Author.Email = src.Author.Email
	}
}
