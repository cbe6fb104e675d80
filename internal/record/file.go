package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadFile loads a dataset written by WriteFile, or by older tools that
// stamp times as ISO 8601 without an offset. The document is checked
// against DatasetSchema before decoding.
func ReadFile(path string) ([]*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if err := ValidateShape(raw); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}

	var recs []*Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return recs, nil
}

// WriteFile serializes records as an indented JSON array, creating the
// parent directory if needed.
func WriteFile(path string, recs []*Record) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	if recs == nil {
		recs = []*Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}
