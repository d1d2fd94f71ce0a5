// Package codec defines custom type readers and writers and the closest-match
// dispatch table the resolver and writer consult before generic traversal.
package codec

import (
	"reflect"

	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/meta"
)

type (
	// Reader creates a value of type t from a scalar or an *element.Element verbose form
	Reader interface {
		Read(value interface{}, t reflect.Type, options *Options) (reflect.Value, error)
	}

	// Writer appends the verbose form body: comma separated "key":value pairs without braces
	Writer interface {
		Append(dst []byte, value reflect.Value, options *Options) ([]byte, error)
	}

	// PrimitiveWriter is a Writer with a compact form used when neither identity nor type is emitted
	PrimitiveWriter interface {
		Writer
		AppendPrimitive(dst []byte, value reflect.Value, options *Options) ([]byte, error)
	}

	// Options carries per reader/writer settings to codecs
	Options struct {
		// DateLayout formats time values, RFC 3339 with nanoseconds when empty
		DateLayout string
		Converter  *conv.Converter
		Registry   *meta.Registry
	}

	// ReaderFunc adapts a function to Reader
	ReaderFunc func(value interface{}, t reflect.Type, options *Options) (reflect.Value, error)

	// WriterFunc adapts a function to Writer
	WriterFunc func(dst []byte, value reflect.Value, options *Options) ([]byte, error)
)

// Read calls fn
func (fn ReaderFunc) Read(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	return fn(value, t, options)
}

// Append calls fn
func (fn WriterFunc) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	return fn(dst, value, options)
}

func (o *Options) converter() *conv.Converter {
	if o == nil || o.Converter == nil {
		return conv.NewConverter(conv.DefaultOptions())
	}
	return o.Converter
}

func (o *Options) registry() *meta.Registry {
	if o == nil || o.Registry == nil {
		return meta.Default()
	}
	return o.Registry
}

func (o *Options) dateLayout() string {
	if o == nil {
		return ""
	}
	return o.DateLayout
}

// Fit adapts value to t, dereferencing or allocating one pointer level when needed
func Fit(value reflect.Value, t reflect.Type) reflect.Value {
	if !value.IsValid() {
		return reflect.Zero(t)
	}
	if value.Type() == t {
		return value
	}
	if value.Kind() == reflect.Ptr && value.Type().Elem() == t {
		if value.IsNil() {
			return reflect.Zero(t)
		}
		return value.Elem()
	}
	if t.Kind() == reflect.Ptr && t.Elem() == value.Type() {
		ptr := reflect.New(value.Type())
		ptr.Elem().Set(value)
		return ptr
	}
	if t.Kind() == reflect.Interface && value.Type().Implements(t) {
		result := reflect.New(t).Elem()
		result.Set(value)
		return result
	}
	if value.Type().ConvertibleTo(t) {
		return value.Convert(t)
	}
	return value
}
