package config

import (
	"fmt"
	"os"

	"github.com/Brandon7CC/MODELFORGE/internal/spec"
)

// Load reads, parses, normalizes, and validates a task file.
func Load(path string) (spec.TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.TaskFile{}, fmt.Errorf("read tasks: %w", err)
	}
	file, err := spec.ParseTaskFile(data)
	if err != nil {
		return spec.TaskFile{}, err
	}
	Normalize(&file)
	if err := Validate(&file); err != nil {
		return spec.TaskFile{}, err
	}
	return file, nil
}
