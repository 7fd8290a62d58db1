package config

// File is the root of a serialization options file.
type File struct {
	// Version of the options schema.
	Version string `yaml:"version,omitempty" toml:"version,omitempty"`

	// Minified writes no insignificant whitespace.
	Minified bool `yaml:"minified,omitempty" toml:"minified,omitempty"`

	// Simplified writes unquoted keys, '=' and whitespace separators.
	Simplified bool `yaml:"simplified,omitempty" toml:"simplified,omitempty"`

	// InitialCapacity is the starting size of the output buffer in bytes.
	InitialCapacity int `yaml:"initial_capacity,omitempty" toml:"initial_capacity,omitempty"`

	// DisableSerializedReferences writes shared instances repeatedly instead
	// of using $id/$ref. Cycles then fail.
	DisableSerializedReferences bool `yaml:"disable_serialized_references,omitempty" toml:"disable_serialized_references,omitempty"`

	// RequiresThreadSafety uses dedicated visitors instead of pooled ones.
	RequiresThreadSafety bool `yaml:"requires_thread_safety,omitempty" toml:"requires_thread_safety,omitempty"`

	// DisableRootAdapters skips adapters for the root value.
	DisableRootAdapters bool `yaml:"disable_root_adapters,omitempty" toml:"disable_root_adapters,omitempty"`

	// Strict stops reading at the first Error or Exception event.
	Strict bool `yaml:"strict,omitempty" toml:"strict,omitempty"`
}

// DefaultInitialCapacity is the output buffer size used when none is given.
const DefaultInitialCapacity = 1024
