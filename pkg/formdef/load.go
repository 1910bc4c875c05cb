package formdef

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes a definitions document. Unknown keys are rejected.
func Parse(data []byte) ([]Definition, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Join(ErrFailedToParse, err)
	}

	seen := make(map[string]struct{}, len(file.Forms))
	for _, d := range file.Forms {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[d.Name]; ok {
			return nil, errors.Join(ErrDuplicateForm, fmt.Errorf("%q", d.Name))
		}
		seen[d.Name] = struct{}{}
	}
	return file.Forms, nil
}

// LoadFile reads and parses a definitions file.
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	return Parse(data)
}

// LoadFS reads and parses a definitions file from fsys.
func LoadFS(fsys fs.FS, name string) ([]Definition, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadFile, err)
	}
	return Parse(data)
}
