// Package reader decodes JSON text written by the writer package, or any
// plain JSON, into Go object graphs or into the generic element tree.
package reader

import (
	"context"
	"reflect"
	"time"

	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/internal/scanner"
	"github.com/viant/jsonio/resolver"
)

// Reader decodes documents, an instance is reusable but not safe for concurrent use
type Reader struct {
	options   Options
	table     *codec.Table
	codec     *codec.Options
	typeNames map[string]string
}

// New creates a reader
func New(opts ...Option) *Reader {
	options := resolveOptions(opts)
	table := codec.Default()
	if len(options.Readers) > 0 || len(options.NotCustom) > 0 {
		table = table.Clone()
		for t, r := range options.Readers {
			table.Register(t, r, nil)
		}
		table.SetNotCustom(options.NotCustom...)
	}
	for t, factory := range options.Factories {
		options.Registry.RegisterFactory(t, factory)
	}
	var typeNames map[string]string
	if len(options.TypeNames) > 0 {
		typeNames = make(map[string]string, len(options.TypeNames))
		for goName, wireName := range options.TypeNames {
			typeNames[wireName] = goName
		}
	}
	return &Reader{
		options: options,
		table:   table,
		codec: &codec.Options{
			DateLayout: options.DateLayout,
			Registry:   options.Registry,
			Converter:  conv.NewConverter(conv.Options{DateLayout: options.DateLayout, Location: time.Local}),
		},
		typeNames: typeNames,
	}
}

// Options returns reader options
func (r *Reader) Options() Options {
	return r.options
}

// Read decodes data into a native graph, or into the generic tree in maps mode
func (r *Reader) Read(ctx context.Context, data []byte) (interface{}, error) {
	parsed, err := r.parse(ctx, data)
	if err != nil {
		return nil, err
	}
	value, err := r.newResolver(parsed.Index).Resolve(parsed.Root, nil)
	if err != nil {
		return nil, err
	}
	if !value.IsValid() || !value.CanInterface() {
		return nil, nil
	}
	return value.Interface(), nil
}

// ReadInto decodes data into the value dest points to
func (r *Reader) ReadInto(ctx context.Context, data []byte, dest interface{}) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Ptr || destValue.IsNil() {
		return errs.New(errs.CodeType, "expected non nil pointer, but had: %T", dest)
	}
	r.options.Registry.Discover(destValue.Type().Elem())
	parsed, err := r.parse(ctx, data)
	if err != nil {
		return err
	}
	switch actual := r.newResolver(parsed.Index).(type) {
	case *resolver.Objects:
		return actual.ResolveInto(parsed.Root, destValue)
	default:
		value, err := actual.Resolve(parsed.Root, nil)
		if err != nil {
			return err
		}
		slot := destValue.Elem()
		if !value.IsValid() {
			slot.Set(reflect.Zero(slot.Type()))
			return nil
		}
		if !value.Type().AssignableTo(slot.Type()) {
			return errs.New(errs.CodeType, "Cannot assign %v to %v", value.Type(), slot.Type())
		}
		slot.Set(value)
		return nil
	}
}

func (r *Reader) parse(ctx context.Context, data []byte) (*scanner.Result, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.CodeDecode, err, "read cancelled")
		}
	}
	var opts []scanner.Option
	if r.options.MaxDepth > 0 {
		opts = append(opts, scanner.WithMaxDepth(r.options.MaxDepth))
	}
	return scanner.Parse(data, opts...)
}

func (r *Reader) newResolver(index element.Index) resolver.Resolver {
	config := &resolver.Config{
		Registry:          r.options.Registry,
		Table:             r.table,
		Codec:             r.codec,
		FailOnUnknownType: r.options.FailOnUnknownType,
		Unknown:           r.options.Unknown,
		UnknownType:       r.options.UnknownType,
		TypeNames:         r.typeNames,
		MissingField:      r.options.MissingField,
		Logger:            r.options.Logger,
	}
	if r.options.Maps {
		r.options.Logger.Debug("resolving generic tree")
		return resolver.NewMaps(index, config)
	}
	return resolver.NewObjects(index, config)
}

// Read decodes data with a one off reader
func Read(ctx context.Context, data []byte, opts ...Option) (interface{}, error) {
	return New(opts...).Read(ctx, data)
}

// ReadInto decodes data into dest with a one off reader
func ReadInto(ctx context.Context, data []byte, dest interface{}, opts ...Option) error {
	return New(opts...).ReadInto(ctx, data, dest)
}
