// Package config loads user overrides for the conversion
package config

import (
	"fmt"
	"io"
	"os"

	"github.com/james-see/toontrack2ad2/pkg/converter"
	"gopkg.in/yaml.v3"
)

// TypeTable is the YAML layout of a category substitution file:
//
//	types:
//	  Fills: Fill
//	  Breaks: Break
//	  Intros: Intro
type TypeTable struct {
	Types   map[string]string `yaml:"types"`
	Replace bool              `yaml:"replace"` // Drop the built-in table instead of extending it
}

// LoadTypeTable reads a YAML type table from path
func LoadTypeTable(path string) (*converter.TypeNormalizer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open type table: %w", err)
	}
	defer file.Close()

	return LoadTypeTableFromReader(file)
}

// LoadTypeTableFromReader parses a YAML type table. Entries extend the
// built-in table unless replace is set; keys are title-cased so they match
// the normalized spelling.
func LoadTypeTableFromReader(r io.Reader) (*converter.TypeNormalizer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var tt TypeTable
	if err := yaml.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("failed to parse type table: %w", err)
	}

	table := converter.DefaultTypeTable()
	if tt.Replace {
		table = make(map[string]string, len(tt.Types))
	}
	for k, v := range tt.Types {
		table[converter.Title(k)] = v
	}
	return converter.NewTypeNormalizer(table), nil
}

// Normalizer returns the normalizer for path, or the built-in one when path is empty.
func Normalizer(path string) (*converter.TypeNormalizer, error) {
	if path == "" {
		return converter.NewTypeNormalizer(converter.DefaultTypeTable()), nil
	}
	return LoadTypeTable(path)
}

// MarshalTypeTable renders a normalizer's table as YAML
func MarshalTypeTable(n *converter.TypeNormalizer) ([]byte, error) {
	return yaml.Marshal(TypeTable{Types: n.Table(), Replace: true})
}
