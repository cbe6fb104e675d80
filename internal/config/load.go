package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Load reads the config file at path and merges it over Default. Any
// problem with the file (missing, unreadable, unsupported format, invalid
// values) is logged as a warning and the defaults are returned instead.
func Load(path string, logger *zap.Logger) Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return Default()
	}

	cfg, err := loadFile(path)
	if err != nil {
		logger.Warn("Using default configuration", zap.String("path", path), zap.Error(err))
		return Default()
	}
	return cfg
}

func loadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config file not found")
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	override, err := decode(raw, filepath.Ext(path))
	if err != nil {
		return Config{}, err
	}

	base, err := toMap(Default())
	if err != nil {
		return Config{}, err
	}

	cfg, err := fromMap(Merge(base, override))
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decode parses a config document according to its file extension.
func decode(raw []byte, ext string) (map[string]any, error) {
	var out map[string]any
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format %q", ext)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// toMap converts a Config to its generic mapping form using the YAML tags.
func toMap(cfg Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	var out map[string]any
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return out, nil
}

func fromMap(m map[string]any) (Config, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Config{}, fmt.Errorf("encode merged config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode merged config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML or JSON depending on the extension. Any
// other extension is replaced with .json. Returns the path written.
func Save(cfg Config, path string) (string, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create config dir: %w", err)
		}
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	default:
		path = strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
