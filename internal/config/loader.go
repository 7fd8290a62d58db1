package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses an options file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file %s: %w", path, err)
	}

	if isTOML(path) {
		return ParseTOML(data)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse options YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// ParseTOML parses TOML data into a File.
func ParseTOML(data []byte) (*File, error) {
	var f File

	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse options TOML: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown options key %q", undecoded[0].String())
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	if f.Version == "" {
		f.Version = "1"
	}

	if f.InitialCapacity <= 0 {
		f.InitialCapacity = DefaultInitialCapacity
	}
}

// Default returns a File with every default applied.
func Default() *File {
	var f File
	applyDefaults(&f)

	return &f
}

// Marshal serializes f as YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}

// MarshalTOML serializes f as TOML.
func MarshalTOML(f *File) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// WriteFile writes f to path, as TOML for .toml paths and YAML otherwise.
func WriteFile(f *File, path string) error {
	marshal := Marshal
	if isTOML(path) {
		marshal = MarshalTOML
	}

	data, err := marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write options file %s: %w", path, err)
	}

	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
