package quota

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LimitsFile is the on-disk shape of a limit definitions document.
type LimitsFile struct {
	Limits []LimitDefinition `yaml:"limits" json:"limits"`
}

// LoadDefinitions reads limit definitions from a YAML file. Unknown fields
// and empty documents are rejected.
func LoadDefinitions(path string) ([]LimitDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read limits: %w", err)
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes a limit definitions document.
func ParseDefinitions(data []byte) ([]LimitDefinition, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var file LimitsFile
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse limits: empty document")
		}
		return nil, fmt.Errorf("parse limits: %w", err)
	}
	if len(file.Limits) == 0 {
		return nil, fmt.Errorf("parse limits: no limits defined")
	}
	for i, def := range file.Limits {
		if def.Key == "" {
			return nil, fmt.Errorf("parse limits: limit %d has no key", i)
		}
		if def.Capacity == 0 {
			return nil, fmt.Errorf("parse limits: limit %q has no capacity", def.Key)
		}
		if def.WindowSeconds <= 0 {
			return nil, fmt.Errorf("parse limits: limit %q has no window", def.Key)
		}
	}
	return file.Limits, nil
}
