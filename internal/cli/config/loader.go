package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Dir returns the per-user respkv directory (~/.respkv).
func Dir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".respkv")
}

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "cli.yaml")
}

// Load reads the CLI configuration from path. A missing file yields the
// defaults. Fields absent from the file keep their default values.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with owner-only permissions, creating the
// directory if needed.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Merge overrides cfg with the non-empty values in overrides, keyed by
// yaml field name. Unknown keys are ignored.
func Merge(cfg *CLIConfig, overrides map[string]string) (*CLIConfig, error) {
	merged := *cfg
	for key, value := range overrides {
		if value == "" {
			continue
		}
		switch key {
		case "server":
			merged.Server = value
		case "unix":
			merged.Unix = value
		case "output":
			merged.Output = value
		case "history_file":
			merged.HistoryFile = value
		case "ca_cert":
			merged.CACert = value
		case "tls", "insecure":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", key, value, err)
			}
			if key == "tls" {
				merged.TLS = b
			} else {
				merged.Insecure = b
			}
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", value, err)
			}
			merged.Timeout = d
		}
	}
	return &merged, nil
}
