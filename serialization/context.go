package serialization

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"

	"propbag/property"
)

// Context owns everything serialization needs beyond the value itself:
// the property bag registry, type names, global adapters and migrations,
// the logger, hooks and pooled visitors.
//
// A Context is safe for concurrent use.
type Context struct {
	registry  *property.Registry
	types     *typeRegistry
	logger    *log.Logger
	hooks     Hooks
	forbidden map[reflect.Type]struct{}

	mu         sync.RWMutex
	adapters   map[reflect.Type]*Adapter
	migrations map[reflect.Type]*Migration

	writers *pool[writer]
	readers *pool[reader]
}

// Option configures a Context.
type Option func(*Context)

// WithRegistry sets the property bag registry. By default each Context has
// its own registry resolving bags by reflection.
func WithRegistry(r *property.Registry) Option {
	return func(c *Context) { c.registry = r }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithHooks sets the hooks called after every top-level call.
func WithHooks(h Hooks) Option {
	return func(c *Context) { c.hooks = h }
}

// WithForbiddenTypes refuses to serialize values of the given types in
// addition to funcs, channels and complex numbers.
func WithForbiddenTypes(types ...reflect.Type) Option {
	return func(c *Context) {
		for _, t := range types {
			c.forbidden[t] = struct{}{}
		}
	}
}

// NewContext returns a Context configured by opts.
func NewContext(opts ...Option) *Context {
	c := &Context{
		types:      newTypeRegistry(),
		forbidden:  make(map[reflect.Type]struct{}),
		adapters:   make(map[reflect.Type]*Adapter),
		migrations: make(map[reflect.Type]*Migration),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = log.Default()
	}

	if c.hooks == nil {
		c.hooks = NoopHooks{}
	}

	if c.registry == nil {
		c.registry = property.NewRegistry(property.WithObserver(func(b property.Bag) {
			c.logger.Debug("property bag added", "type", b.Type(), "kind", b.Kind())
		}))
	}

	c.writers = newPool(func() *writer { return newWriter(c) }, (*writer).reset)
	c.readers = newPool(func() *reader { return newReader(c) }, (*reader).reset)

	return c
}

// Default returns the process-wide Context. It shares property.Default().
var Default = sync.OnceValue(func() *Context {
	return NewContext(WithRegistry(property.Default()))
})

// Registry returns the property bag registry.
func (c *Context) Registry() *property.Registry { return c.registry }

// Logger returns the logger.
func (c *Context) Logger() *log.Logger { return c.logger }

// AddAdapter registers a for its type. Only one adapter per type is allowed.
func (c *Context) AddAdapter(a *Adapter) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.adapters[a.typ]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAdapter, a.typ)
	}

	c.adapters[a.typ] = a
	c.logger.Debug("adapter added", "type", a.typ)

	return nil
}

// AddMigration registers m for its type. Only one migration per type is
// allowed.
func (c *Context) AddMigration(m *Migration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.migrations[m.typ]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMigration, m.typ)
	}

	c.migrations[m.typ] = m
	c.logger.Debug("migration added", "type", m.typ, "version", m.version)

	return nil
}

// AddGlobalAdapter registers a with the default Context.
func AddGlobalAdapter(a *Adapter) error { return Default().AddAdapter(a) }

// AddGlobalMigration registers m with the default Context.
func AddGlobalMigration(m *Migration) error { return Default().AddMigration(m) }

// RegisterType binds name to T for $type. Documents naming T by one of
// formerNames resolve to T as well. A nil ctx means Default().
func RegisterType[T any](ctx *Context, name string, formerNames ...string) error {
	if ctx == nil {
		ctx = Default()
	}

	t := reflect.TypeFor[T]()
	if err := ctx.types.register(t, name, formerNames); err != nil {
		return err
	}

	ctx.logger.Debug("type name registered", "type", t, "name", name, "former", formerNames)

	return nil
}

func (c *Context) adapter(t reflect.Type) *Adapter {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.adapters[t]
}

func (c *Context) migration(t reflect.Type) *Migration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.migrations[t]
}

// isForbidden reports whether values of t can never be serialized.
func (c *Context) isForbidden(t reflect.Type) bool {
	if property.Classify(t) == property.KindForbidden {
		return true
	}

	_, ok := c.forbidden[t]

	return ok
}
