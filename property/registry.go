package property

import (
	"fmt"
	"reflect"
	"sync"
)

// Provider synthesizes bags for types that have no registered bag.
type Provider interface {
	Provide(t reflect.Type) (Bag, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(t reflect.Type) (Bag, error)

// Provide calls f(t).
func (f ProviderFunc) Provide(t reflect.Type) (Bag, error) { return f(t) }

// ReflectProvider derives bags from the shape of a type: struct fields for
// records, element access for slices, arrays, sets and maps.
type ReflectProvider struct{}

// Provide implements Provider.
func (ReflectProvider) Provide(t reflect.Type) (Bag, error) {
	switch Classify(t) {
	case KindRecord:
		return reflectRecordBag(t)
	case KindList:
		return newListBag(t), nil
	case KindSet:
		return newSetBag(t), nil
	case KindMap:
		return newMapBag(t), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrInvalidBagType, t)
}

// Registry maps container types to their bags. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	bags     map[reflect.Type]Bag
	failed   map[reflect.Type]error
	provider Provider
	observer func(Bag)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithProvider sets the provider consulted for unregistered types. A nil
// provider disables dynamic resolution.
func WithProvider(p Provider) RegistryOption {
	return func(r *Registry) { r.provider = p }
}

// WithObserver sets a callback invoked once for every bag added to the
// registry, registered or synthesized. It runs under the registry lock and
// must not call back into the registry.
func WithObserver(fn func(Bag)) RegistryOption {
	return func(r *Registry) { r.observer = fn }
}

// NewRegistry creates an empty registry backed by ReflectProvider unless
// configured otherwise.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		bags:     make(map[reflect.Type]Bag),
		failed:   make(map[reflect.Type]error),
		provider: ReflectProvider{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Default returns the process-wide registry.
var Default = sync.OnceValue(func() *Registry {
	return NewRegistry()
})

// Register adds bag for its type. Registering the same bag again is a no-op;
// registering a different bag for a type that already has one fails with
// ErrAlreadyRegistered.
func (r *Registry) Register(bag Bag) error {
	t := bag.Type()
	if !Classify(t).IsContainer() {
		return fmt.Errorf("%w: %s", ErrInvalidBagType, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bags[t]; ok {
		if existing == bag {
			return nil
		}

		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, t)
	}

	r.bags[t] = bag
	delete(r.failed, t)

	if r.observer != nil {
		r.observer(bag)
	}

	return nil
}

// Resolve returns the bag for t, synthesizing and caching it through the
// provider when none is registered.
func (r *Registry) Resolve(t reflect.Type) (Bag, bool) {
	bag, err := r.resolve(t)
	return bag, err == nil
}

func (r *Registry) resolve(t reflect.Type) (Bag, error) {
	r.mu.RLock()
	bag, ok := r.bags[t]
	failure := r.failed[t]
	r.mu.RUnlock()

	if ok {
		return bag, nil
	}

	if failure != nil {
		return nil, failure
	}

	if r.provider == nil {
		return nil, newError(MissingPropertyBag, t, nil)
	}

	bag, err := r.provider.Provide(t)
	if err == nil && bag == nil {
		err = fmt.Errorf("provider returned no bag for %s", t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.bags[t]; ok {
		return existing, nil
	}

	if err != nil {
		failure := newError(MissingPropertyBag, t, err)
		r.failed[t] = failure

		return nil, failure
	}

	r.bags[t] = bag

	if r.observer != nil {
		r.observer(bag)
	}

	return bag, nil
}

// Len returns the number of bags currently held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bags)
}
