package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReadValues reads a scope file: a flat JSON or YAML mapping from field name
// to value, as stored for one block in one scope. The format follows the file
// extension; anything but .json is read as YAML. A missing file yields an
// empty map so a scope without overrides can be edited.
func ReadValues(path string) (map[string]any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config: values path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return ParseValues(data, path)
}

// ParseValues decodes a scope file payload. source only selects the format
// and labels errors.
func ParseValues(data []byte, source string) (map[string]any, error) {
	out := map[string]any{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if isJSON(source) {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", source, err)
		}
	} else if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", source, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// WriteValues replaces the scope file at path. The payload is written to a
// temporary file in the same directory and renamed into place.
func WriteValues(path string, values map[string]any) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config: values path is required")
	}
	if values == nil {
		values = map[string]any{}
	}

	var (
		payload []byte
		err     error
	)
	if isJSON(path) {
		payload, err = json.MarshalIndent(values, "", "  ")
		payload = append(payload, '\n')
	} else {
		payload, err = yaml.Marshal(values)
	}
	if err != nil {
		return fmt.Errorf("config: encode %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
