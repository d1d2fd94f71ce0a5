// Package jsonio encodes Go object graphs as JSON and decodes them back,
// preserving shared references, cycles and the concrete types held by
// interfaces. Shared values are written once with @id and referenced with
// @ref, types that cannot be inferred from the declaring field carry @type.
//
//	data, err := jsonio.Marshal(order)
//	...
//	restored := &Order{}
//	err = jsonio.Unmarshal(data, restored)
//
// Plain JSON reads into native values or, with ToMaps, into a generic
// element tree that keeps identity and type names without Go types.
package jsonio

import (
	"context"
	"io"

	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
	"github.com/viant/jsonio/reader"
	"github.com/viant/jsonio/writer"
)

// Marshal encodes value
func Marshal(value interface{}, opts ...writer.Option) ([]byte, error) {
	return writer.Marshal(value, opts...)
}

// MarshalIndent encodes value with two space indentation
func MarshalIndent(value interface{}, opts ...writer.Option) ([]byte, error) {
	return writer.Marshal(value, append(opts, writer.WithPrettyPrint(true))...)
}

// Encode writes encoded value to w
func Encode(ctx context.Context, w io.Writer, value interface{}, opts ...writer.Option) error {
	return writer.Write(ctx, w, value, opts...)
}

// Unmarshal decodes data into the value dest points to
func Unmarshal(data []byte, dest interface{}, opts ...reader.Option) error {
	return reader.ReadInto(context.Background(), data, dest, opts...)
}

// Decode reads r fully and decodes it into the value dest points to
func Decode(ctx context.Context, r io.Reader, dest interface{}, opts ...reader.Option) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errs.Wrap(errs.CodeDecode, err, "failed to read input")
	}
	return reader.ReadInto(ctx, data, dest, opts...)
}

// UnmarshalAny decodes data into the native value its @type names, untyped objects become maps
func UnmarshalAny(data []byte, opts ...reader.Option) (interface{}, error) {
	return reader.Read(context.Background(), data, opts...)
}

// ToMaps decodes data into the generic tree: objects are *element.Element, arrays []interface{}
func ToMaps(data []byte, opts ...reader.Option) (interface{}, error) {
	return reader.Read(context.Background(), data, append(opts, reader.WithMaps(true))...)
}

// Format re-encodes data through the generic tree, identity and type names are kept
func Format(data []byte, opts ...writer.Option) ([]byte, error) {
	registry := meta.NewRegistry()
	tree, err := ToMaps(data, reader.WithRegistry(registry), reader.WithFailOnUnknownType(false))
	if err != nil {
		return nil, err
	}
	opts = append([]writer.Option{writer.WithRegistry(registry), writer.WithPrettyPrint(true)}, opts...)
	return writer.Marshal(tree, opts...)
}

// Copy deep copies src into the value dest points to, shared references and cycles are kept
func Copy(src, dest interface{}) error {
	data, err := writer.Marshal(src)
	if err != nil {
		return err
	}
	return reader.ReadInto(context.Background(), data, dest)
}
