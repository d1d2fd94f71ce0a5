package meta

import (
	"io"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/internal/lru"
	"github.com/viant/jsonio/visitor"
)

type (
	// Factory creates an instance of a type for the element being resolved
	Factory func(t reflect.Type, e *element.Element) (reflect.Value, error)

	// Option configures a Registry
	Option interface{ apply(*Options) }

	// Options represents registry options
	Options struct {
		// AllowZeroValue permits allocating a zero struct when no constructor succeeds
		AllowZeroValue bool
		// CacheSize bounds the composite type name cache
		CacheSize int
		Logger    *log.Logger
	}

	optionFn func(*Options)

	// Registry maps wire type names to Go types and owns instantiation strategies
	Registry struct {
		mu           sync.RWMutex
		byName       map[string]reflect.Type
		names        map[reflect.Type]string
		constructors map[reflect.Type][]*constructor
		factories    map[reflect.Type]Factory
		composite    *lru.Cache[string, reflect.Type]
		strategies   *visitor.SyncMap[reflect.Type, strategy]
		options      Options
	}
)

func (o optionFn) apply(opts *Options) { o(opts) }

// WithAllowZeroValue controls zero value allocation fallback
func WithAllowZeroValue(flag bool) Option {
	return optionFn(func(o *Options) { o.AllowZeroValue = flag })
}

// WithCacheSize sets composite type name cache size
func WithCacheSize(size int) Option {
	return optionFn(func(o *Options) { o.CacheSize = size })
}

// WithLogger sets registry logger
func WithLogger(logger *log.Logger) Option {
	return optionFn(func(o *Options) { o.Logger = logger })
}

func defaultOptions() Options {
	return Options{AllowZeroValue: true, CacheSize: 512}
}

func resolveOptions(opts []Option) Options {
	ret := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&ret)
		}
	}
	if ret.Logger == nil {
		ret.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ret
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process wide registry, configure it before concurrent use
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with built-in type names and factories
func NewRegistry(opts ...Option) *Registry {
	options := resolveOptions(opts)
	ret := &Registry{
		byName:       map[string]reflect.Type{},
		names:        map[reflect.Type]string{},
		constructors: map[reflect.Type][]*constructor{},
		factories:    map[reflect.Type]Factory{},
		composite:    lru.New[string, reflect.Type](options.CacheSize),
		strategies:   visitor.NewSyncMap[reflect.Type, strategy](),
		options:      options,
	}
	for _, builtin := range builtinNames {
		ret.register(builtin.t, builtin.name)
	}
	for alias, t := range aliasNames {
		ret.byName[alias] = t
	}
	for _, t := range namedBuiltins {
		ret.register(t, qualifiedName(t))
	}
	ret.factories[ListType] = ListFactory
	return ret
}

// Logger returns registry logger
func (r *Registry) Logger() *log.Logger {
	return r.options.Logger
}

// Register registers the types of the supplied values under their qualified names
func (r *Registry) Register(values ...interface{}) {
	for _, value := range values {
		var t reflect.Type
		switch actual := value.(type) {
		case reflect.Type:
			t = actual
		default:
			t = reflect.TypeOf(value)
		}
		if t == nil {
			continue
		}
		r.RegisterType(t)
	}
}

// RegisterType registers t under the supplied names, the qualified name when none is given
func (r *Registry) RegisterType(t reflect.Type, names ...string) {
	if t.Kind() == reflect.Ptr && t.Elem().Name() != "" {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(names) == 0 {
		names = []string{qualifiedName(t)}
	}
	for _, name := range names {
		r.register(t, name)
	}
}

// RegisterFactory registers an instantiation factory for t
func (r *Registry) RegisterFactory(t reflect.Type, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[t] = factory
	r.strategies.Put(t, nil)
}

// Factory returns a registered factory
func (r *Registry) Factory(t reflect.Type) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[t]
	return factory, ok
}

func (r *Registry) register(t reflect.Type, name string) {
	r.byName[name] = t
	if _, ok := r.names[t]; !ok {
		r.names[t] = name
	}
}

// Discover registers named types reachable from t through fields, elements and keys
func (r *Registry) Discover(t reflect.Type) {
	r.discover(t, map[reflect.Type]bool{})
}

func (r *Registry) discover(t reflect.Type, visited map[reflect.Type]bool) {
	if t == nil || visited[t] {
		return
	}
	visited[t] = true
	if t.Name() != "" && t.Kind() != reflect.Interface {
		_ = r.Name(t)
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		r.discover(t.Elem(), visited)
		return
	case reflect.Map:
		r.discover(t.Key(), visited)
		r.discover(t.Elem(), visited)
		return
	case reflect.Interface:
		return
	}
	if t.Kind() != reflect.Struct || IsBuiltin(t) {
		return
	}
	members, err := MembersOf(t)
	if err != nil {
		return
	}
	for _, member := range members.List {
		r.discover(member.Type, visited)
	}
}
