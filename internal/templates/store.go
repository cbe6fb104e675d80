package templates

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed default_templates.json
var defaultTemplatesJSON []byte

// Store is an immutable snapshot of loaded templates.
type Store struct {
	templates []Template
}

// New returns a store holding a copy of ts.
func New(ts []Template) *Store {
	return &Store{templates: slices.Clone(ts)}
}

// Default returns the built-in template set.
func Default() *Store {
	ts, err := parse(defaultTemplatesJSON, ".json")
	if err != nil {
		panic(fmt.Sprintf("templates: embedded defaults are invalid: %v", err))
	}
	return &Store{templates: ts}
}

// Load reads templates from path. When path is empty or does not exist the
// built-in set is used. A file that cannot be read or parsed yields an
// empty store. Problems are logged, never returned.
func Load(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path == "" {
		logger.Warn("No template file configured, using default templates")
		return Default()
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Template file not found, using default templates", zap.String("path", path))
		return Default()
	}
	if err != nil {
		logger.Error("Error loading templates", zap.String("path", path), zap.Error(err))
		return &Store{}
	}

	ts, err := parse(raw, filepath.Ext(path))
	if err != nil {
		logger.Error("Error loading templates", zap.String("path", path), zap.Error(err))
		return &Store{}
	}

	logger.Info("Loaded templates", zap.String("path", path), zap.Int("count", len(ts)))
	return &Store{templates: ts}
}

func parse(raw []byte, ext string) ([]Template, error) {
	var ts []Template
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &ts); err != nil {
			return nil, fmt.Errorf("parse YAML templates: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, fmt.Errorf("parse JSON templates: %w", err)
		}
	}
	for _, t := range ts {
		if err := t.validate(); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

// Len returns the total number of templates.
func (s *Store) Len() int {
	return len(s.templates)
}

// All returns every template in load order.
func (s *Store) All() []Template {
	return slices.Clone(s.templates)
}

// ForDomain returns the templates for domain in load order. A template's
// index in this slice is its template_id.
func (s *Store) ForDomain(domain string) []Template {
	var out []Template
	for _, t := range s.templates {
		if t.Domain == domain {
			out = append(out, t)
		}
	}
	return out
}

// Domains lists distinct domains in first-seen order.
func (s *Store) Domains() []string {
	var out []string
	for _, t := range s.templates {
		if !slices.Contains(out, t.Domain) {
			out = append(out, t.Domain)
		}
	}
	return out
}
