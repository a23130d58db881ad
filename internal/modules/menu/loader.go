package menu

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/stockboard/internal/domain"
)

// File is the on-disk layout of a menu definition.
type File struct {
	Main  []Node `yaml:"main"`
	Admin []Node `yaml:"admin"`
}

// Parse decodes a YAML menu definition and validates it.
// Unknown fields are rejected so typos surface at startup. The menu must route DefaultPath.
func Parse(data []byte) (*Tree, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, domain.NewConfigurationError("menu file: %v", err)
	}
	if len(f.Main) == 0 && len(f.Admin) == 0 {
		return nil, domain.NewConfigurationError("menu file defines no entries")
	}
	tree, err := NewTree(append(f.Main, f.Admin...)...)
	if err != nil {
		return nil, err
	}
	if _, ok := tree.ComponentByPath(DefaultPath); !ok {
		return nil, domain.NewConfigurationError("menu file has no view at %s", DefaultPath)
	}
	return tree, nil
}

// LoadFile reads a YAML menu definition from path.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu file: %w", err)
	}
	return Parse(data)
}

// Load returns the tree from path, or the built-in menu when path is empty.
func Load(path string) (*Tree, error) {
	if path == "" {
		return DefaultTree()
	}
	return LoadFile(path)
}
