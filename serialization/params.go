package serialization

import (
	"reflect"

	"propbag/internal/config"
)

// Params are the per-call options. The zero value writes pretty output with
// references enabled using the default Context.
type Params struct {
	// SerializedType is the root type known to both sides out of band. The
	// root $type is not written, and reading constructs this type.
	SerializedType reflect.Type

	// DisableRootAdapters skips adapters for the root value.
	DisableRootAdapters bool

	// UserDefinedAdapters are consulted before the Context's adapters.
	UserDefinedAdapters []*Adapter

	// UserDefinedMigrations are consulted before the Context's migrations.
	UserDefinedMigrations []*Migration

	// RequiresThreadSafety uses a dedicated visitor instead of a pooled one.
	RequiresThreadSafety bool

	// DisableSerializedReferences writes shared instances repeatedly instead
	// of using $id/$ref. Cycles then fail with ErrCycle.
	DisableSerializedReferences bool

	// Minified writes no insignificant whitespace.
	Minified bool

	// Simplified writes unquoted safe keys, '=' and whitespace separators.
	Simplified bool

	// InitialCapacity is the starting size of the output buffer in bytes.
	InitialCapacity int

	// Strict stops reading at the first Error or Exception event.
	Strict bool

	// Context to use; nil means Default().
	Context *Context
}

var noParams Params

func (p *Params) orDefault() *Params {
	if p == nil {
		return &noParams
	}

	return p
}

func (p *Params) context() *Context {
	if p == nil || p.Context == nil {
		return Default()
	}

	return p.Context
}

func (p *Params) format() Format {
	var f Format

	if p.Minified {
		f |= FormatMinified
	}

	if p.Simplified {
		f |= FormatSimplified
	}

	return f
}

func (p *Params) adapter(t reflect.Type) *Adapter {
	for _, a := range p.UserDefinedAdapters {
		if a.typ == t {
			return a
		}
	}

	return nil
}

func (p *Params) migration(t reflect.Type) *Migration {
	for _, m := range p.UserDefinedMigrations {
		if m.typ == t {
			return m
		}
	}

	return nil
}

// LoadParams reads the textual options from a YAML or TOML file.
func LoadParams(path string) (*Params, error) {
	f, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	return paramsFromConfig(f), nil
}

// paramsFromConfig converts a loaded options file into Params.
func paramsFromConfig(f *config.File) *Params {
	return &Params{
		Minified:                    f.Minified,
		Simplified:                  f.Simplified,
		InitialCapacity:             f.InitialCapacity,
		DisableSerializedReferences: f.DisableSerializedReferences,
		RequiresThreadSafety:        f.RequiresThreadSafety,
		DisableRootAdapters:         f.DisableRootAdapters,
		Strict:                      f.Strict,
	}
}
