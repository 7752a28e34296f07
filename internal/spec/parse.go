package spec

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func ParseTaskFile(data []byte) (TaskFile, error) {
	var file TaskFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return TaskFile{}, fmt.Errorf("parse tasks: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return TaskFile{}, fmt.Errorf("parse tasks: multiple YAML documents are not supported")
		}
		return TaskFile{}, fmt.Errorf("parse tasks: %w", err)
	}
	return file, nil
}
