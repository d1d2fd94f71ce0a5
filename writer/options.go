package writer

import (
	"io"
	"reflect"

	"github.com/charmbracelet/log"
	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/meta"
)

// ShowType controls when @type is emitted
type ShowType int

const (
	// ShowTypeAuto emits @type when the declared slot type does not imply the value type
	ShowTypeAuto ShowType = iota
	// ShowTypeAlways emits @type on every object, map and collection
	ShowTypeAlways
	// ShowTypeNever never emits @type
	ShowTypeNever
)

// String returns show type name
func (s ShowType) String() string {
	switch s {
	case ShowTypeAlways:
		return "always"
	case ShowTypeNever:
		return "never"
	}
	return "auto"
}

// ParseShowType parses auto, always or never
func ParseShowType(text string) (ShowType, bool) {
	switch text {
	case "", "auto":
		return ShowTypeAuto, true
	case "always":
		return ShowTypeAlways, true
	case "never":
		return ShowTypeNever, true
	}
	return ShowTypeAuto, false
}

type (
	// Option configures a Writer
	Option interface{ apply(*Options) }

	// Options represents writer settings
	Options struct {
		ShowType      ShowType
		PrettyPrint   bool
		ShortMetaKeys bool
		// LongsAsStrings quotes 64 bit integers
		LongsAsStrings bool
		SkipNullFields bool
		// FieldSpecifiers lists the only members written per struct type, transient members included
		FieldSpecifiers map[reflect.Type][]string
		FieldBlacklist  map[reflect.Type][]string
		// EnumPublicOnly writes enums in interface slots as bare text
		EnumPublicOnly bool
		// TypeNames maps Go type names to the names used on the wire
		TypeNames  map[string]string
		Writers    map[reflect.Type]codec.Writer
		NotCustom  []reflect.Type
		DateFormat string
		Registry   *meta.Registry
		Logger     *log.Logger
	}

	optionFn func(*Options)
)

func (o optionFn) apply(opts *Options) { o(opts) }

// WithShowType sets @type emission mode
func WithShowType(mode ShowType) Option {
	return optionFn(func(o *Options) { o.ShowType = mode })
}

// WithPrettyPrint indents output
func WithPrettyPrint(flag bool) Option {
	return optionFn(func(o *Options) { o.PrettyPrint = flag })
}

// WithShortMetaKeys writes @t, @i, @r, @k and @e
func WithShortMetaKeys(flag bool) Option {
	return optionFn(func(o *Options) { o.ShortMetaKeys = flag })
}

// WithLongsAsStrings quotes 64 bit integers
func WithLongsAsStrings(flag bool) Option {
	return optionFn(func(o *Options) { o.LongsAsStrings = flag })
}

// WithSkipNullFields omits nil members
func WithSkipNullFields(flag bool) Option {
	return optionFn(func(o *Options) { o.SkipNullFields = flag })
}

// WithFieldSpecifiers limits members written for t
func WithFieldSpecifiers(t reflect.Type, names ...string) Option {
	return optionFn(func(o *Options) {
		if o.FieldSpecifiers == nil {
			o.FieldSpecifiers = map[reflect.Type][]string{}
		}
		o.FieldSpecifiers[t] = append(o.FieldSpecifiers[t], names...)
	})
}

// WithFieldBlacklist excludes members of t
func WithFieldBlacklist(t reflect.Type, names ...string) Option {
	return optionFn(func(o *Options) {
		if o.FieldBlacklist == nil {
			o.FieldBlacklist = map[reflect.Type][]string{}
		}
		o.FieldBlacklist[t] = append(o.FieldBlacklist[t], names...)
	})
}

// WithEnumPublicOnly writes enums in interface slots without the type envelope
func WithEnumPublicOnly(flag bool) Option {
	return optionFn(func(o *Options) { o.EnumPublicOnly = flag })
}

// WithTypeNameMap substitutes Go type names, the map is keyed by Go type name
func WithTypeNameMap(names map[string]string) Option {
	return optionFn(func(o *Options) { o.TypeNames = names })
}

// WithWriter registers a custom writer for t
func WithWriter(t reflect.Type, writer codec.Writer) Option {
	return optionFn(func(o *Options) {
		if o.Writers == nil {
			o.Writers = map[reflect.Type]codec.Writer{}
		}
		o.Writers[t] = writer
	})
}

// WithNotCustom excludes types from custom writer dispatch
func WithNotCustom(types ...reflect.Type) Option {
	return optionFn(func(o *Options) { o.NotCustom = append(o.NotCustom, types...) })
}

// WithDateFormat sets the time layout, RFC 3339 with nanoseconds by default
func WithDateFormat(layout string) Option {
	return optionFn(func(o *Options) { o.DateFormat = layout })
}

// WithRegistry sets the type registry
func WithRegistry(registry *meta.Registry) Option {
	return optionFn(func(o *Options) { o.Registry = registry })
}

// WithLogger sets writer logger
func WithLogger(logger *log.Logger) Option {
	return optionFn(func(o *Options) { o.Logger = logger })
}

func resolveOptions(opts []Option) Options {
	ret := Options{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&ret)
		}
	}
	if ret.Registry == nil {
		ret.Registry = meta.Default()
	}
	if ret.Logger == nil {
		ret.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return ret
}
