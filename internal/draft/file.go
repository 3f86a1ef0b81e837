package draft

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a seed draft from a YAML file with top-level description and
// content keys. Unknown keys are rejected so typos do not silently drop text.
// An empty file yields an empty draft.
func LoadFile(path string) (Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return Draft{}, fmt.Errorf("open draft file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var d Draft
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return Draft{}, fmt.Errorf("parse draft file %s: %w", path, err)
	}
	return d, nil
}
