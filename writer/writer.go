// Package writer encodes Go object graphs as JSON, shared and cyclic values are
// written once with @id and referenced with @ref.
package writer

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"reflect"

	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
)

// Writer encodes values, an instance is reusable but not safe for concurrent use
type Writer struct {
	options Options
	table   *codec.Table
	codec   *codec.Options
	allowed map[reflect.Type]map[string]bool
	denied  map[reflect.Type]map[string]bool
}

// New creates a writer, unknown member names in field specifiers fail with a config error
func New(opts ...Option) (*Writer, error) {
	options := resolveOptions(opts)
	table := codec.Default()
	if len(options.Writers) > 0 || len(options.NotCustom) > 0 {
		table = table.Clone()
		for t, w := range options.Writers {
			table.Register(t, nil, w)
		}
		table.SetNotCustom(options.NotCustom...)
	}
	ret := &Writer{
		options: options,
		table:   table,
		codec: &codec.Options{
			DateLayout: options.DateFormat,
			Registry:   options.Registry,
			Converter:  conv.NewConverter(conv.DefaultOptions()),
		},
	}
	var err error
	if ret.allowed, err = memberSets(options.FieldSpecifiers); err != nil {
		return nil, err
	}
	if ret.denied, err = memberSets(options.FieldBlacklist); err != nil {
		return nil, err
	}
	return ret, nil
}

func memberSets(specifiers map[reflect.Type][]string) (map[reflect.Type]map[string]bool, error) {
	if len(specifiers) == 0 {
		return nil, nil
	}
	ret := make(map[reflect.Type]map[string]bool, len(specifiers))
	for t, names := range specifiers {
		structType := meta.StructOf(t)
		if structType == nil {
			return nil, errs.New(errs.CodeConfig, "field specifier type %v is not a struct", t)
		}
		members, err := meta.MembersOf(structType)
		if err != nil {
			return nil, errs.As(errs.CodeConfig, err)
		}
		set := make(map[string]bool, len(names))
		for _, name := range names {
			member := members.Lookup(name)
			if member == nil {
				return nil, errs.New(errs.CodeConfig, "unknown field %q in field specifiers for %v", name, structType)
			}
			set[member.Name] = true
		}
		ret[structType] = set
	}
	return ret, nil
}

// Options returns writer options
func (w *Writer) Options() Options {
	return w.options
}

// Marshal encodes value
func (w *Writer) Marshal(value interface{}) ([]byte, error) {
	return w.encode(context.Background(), value)
}

// Write encodes value to dest
func (w *Writer) Write(ctx context.Context, dest io.Writer, value interface{}) error {
	data, err := w.encode(ctx, value)
	if err != nil {
		return err
	}
	buffered := bufio.NewWriter(dest)
	if _, err = buffered.Write(data); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to write output")
	}
	if err = buffered.Flush(); err != nil {
		return errs.Wrap(errs.CodeEncode, err, "failed to flush output")
	}
	return nil
}

func (w *Writer) encode(ctx context.Context, value interface{}) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeEncode, err, "write cancelled")
	}
	s := newSession(w)
	root := reflect.ValueOf(value)
	if err := s.trace(ctx, root); err != nil {
		return nil, err
	}
	w.options.Logger.Debug("traced object graph", "objects", len(s.visited), "referenced", s.nextID)
	dst, err := s.appendValue(make([]byte, 0, 512), root, s.rootType(root))
	if err != nil {
		return nil, err
	}
	return dst, nil
}

// Marshal encodes value with a one off writer
func Marshal(value interface{}, opts ...Option) ([]byte, error) {
	w, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return w.Marshal(value)
}

// Write encodes value to dest with a one off writer
func Write(ctx context.Context, dest io.Writer, value interface{}, opts ...Option) error {
	w, err := New(opts...)
	if err != nil {
		return err
	}
	return w.Write(ctx, dest, value)
}

// String encodes value, encoding errors are returned as text
func String(value interface{}, opts ...Option) string {
	data, err := Marshal(value, opts...)
	if err != nil {
		return err.Error()
	}
	return string(bytes.TrimSpace(data))
}
