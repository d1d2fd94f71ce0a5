package reader

import (
	"io"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/meta"
	"github.com/viant/jsonio/resolver"
)

type (
	// Option configures a Reader
	Option interface{ apply(*Options) }

	// Options represents reader settings
	Options struct {
		// Maps produces the generic element tree instead of typed values
		Maps bool
		// FailOnUnknownType rejects an @type missing from the registry, otherwise the declared type is used
		FailOnUnknownType bool
		Unknown           resolver.UnknownPolicy
		UnknownType       string
		Readers           map[reflect.Type]codec.Reader
		NotCustom         []reflect.Type
		// TypeNames maps Go type names to the names used on the wire
		TypeNames    map[string]string
		MissingField resolver.MissingFieldHandler
		Registry     *meta.Registry
		Factories    map[reflect.Type]meta.Factory
		DateLayout   string
		MaxDepth     int
		Logger       *log.Logger
	}

	optionFn func(*Options)
)

func (o optionFn) apply(opts *Options) { o(opts) }

// WithMaps produces the generic element tree
func WithMaps(flag bool) Option {
	return optionFn(func(o *Options) { o.Maps = flag })
}

// WithUnknownObject sets what an untyped object in an interface slot becomes
func WithUnknownObject(policy resolver.UnknownPolicy, typeName string) Option {
	return optionFn(func(o *Options) {
		o.Unknown = policy
		o.UnknownType = typeName
	})
}

// WithFailOnUnknownType controls unknown @type handling
func WithFailOnUnknownType(flag bool) Option {
	return optionFn(func(o *Options) { o.FailOnUnknownType = flag })
}

// WithReader registers a custom reader for t
func WithReader(t reflect.Type, reader codec.Reader) Option {
	return optionFn(func(o *Options) {
		if o.Readers == nil {
			o.Readers = map[reflect.Type]codec.Reader{}
		}
		o.Readers[t] = reader
	})
}

// WithNotCustom excludes types from custom reader dispatch
func WithNotCustom(types ...reflect.Type) Option {
	return optionFn(func(o *Options) { o.NotCustom = append(o.NotCustom, types...) })
}

// WithTypeNameMap substitutes Go type names, the map is keyed by Go type name
func WithTypeNameMap(names map[string]string) Option {
	return optionFn(func(o *Options) { o.TypeNames = names })
}

// WithMissingFieldHandler sets the missing field callback
func WithMissingFieldHandler(handler resolver.MissingFieldHandler) Option {
	return optionFn(func(o *Options) { o.MissingField = handler })
}

// WithRegistry sets the type registry
func WithRegistry(registry *meta.Registry) Option {
	return optionFn(func(o *Options) { o.Registry = registry })
}

// WithFactory registers an instantiation factory for t
func WithFactory(t reflect.Type, factory meta.Factory) Option {
	return optionFn(func(o *Options) {
		if o.Factories == nil {
			o.Factories = map[reflect.Type]meta.Factory{}
		}
		o.Factories[t] = factory
	})
}

// WithDateLayout sets the layout tried first for date text
func WithDateLayout(layout string) Option {
	return optionFn(func(o *Options) { o.DateLayout = layout })
}

// WithMaxDepth limits input nesting
func WithMaxDepth(depth int) Option {
	return optionFn(func(o *Options) { o.MaxDepth = depth })
}

// WithLogger sets reader logger
func WithLogger(logger *log.Logger) Option {
	return optionFn(func(o *Options) { o.Logger = logger })
}

func defaultOptions() Options {
	return Options{FailOnUnknownType: true, Unknown: resolver.UnknownAsMap}
}

func resolveOptions(opts []Option) Options {
	ret := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&ret)
		}
	}
	if ret.Registry == nil {
		if len(ret.Factories) > 0 {
			ret.Registry = meta.NewRegistry(meta.WithLogger(ret.Logger))
		} else {
			ret.Registry = meta.Default()
		}
	}
	if ret.Logger == nil {
		ret.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ret
}
