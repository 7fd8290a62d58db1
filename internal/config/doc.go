// Package config loads serialization options from YAML or TOML files.
//
// The file format is selected by extension: .toml files are decoded with
// BurntSushi/toml, everything else as YAML. Defaults are applied after
// parsing, so a file only needs the keys it changes:
//
//	version: "1"
//	minified: true
//	initial_capacity: 4096
package config
