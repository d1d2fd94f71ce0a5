// Package element defines the intermediate node produced by the tokenizer and
// consumed by the resolvers: an ordered string keyed map that carries an
// optional declared type, identity, resolved target and source position.
package element

import (
	"container/list"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/errs"
)

// NoID marks an Element without identity.
const NoID int64 = -1

type empty struct{}

// Empty is the value the tokenizer produces for "{}". It is distinct from nil
// and from an Element with no entries.
var Empty = empty{}

// IsEmpty reports whether value is the empty object sentinel.
func IsEmpty(value interface{}) bool {
	_, ok := value.(empty)
	return ok
}

// Element represents one JSON object before or after resolution.
type Element struct {
	keys   []string
	values map[string]interface{}
	// Type is the declared type name (@type), empty when unknown.
	Type string
	// ID is the identity (@id), NoID when unset.
	ID int64
	// Target is the native value built from this element.
	Target reflect.Value
	Line   int
	Col    int
	isMap  bool
}

// New creates an empty element.
func New() *Element {
	return &Element{ID: NoID, values: map[string]interface{}{}}
}

// Put stores value under key. @type and @id update Type and ID instead of being
// stored; storing the second of @keys/@items flags the element as a map.
func (e *Element) Put(key string, value interface{}) interface{} {
	switch key {
	case KeyType:
		old := e.Type
		e.Type, _ = value.(string)
		return old
	case KeyID:
		old := e.ID
		if id, ok := toID(value); ok {
			e.ID = id
		}
		return old
	case KeyItems:
		if e.Has(KeyKeys) {
			e.isMap = true
		}
	case KeyKeys:
		if e.Has(KeyItems) {
			e.isMap = true
		}
	}
	old, ok := e.values[key]
	if !ok {
		e.keys = append(e.keys, key)
	}
	e.values[key] = value
	return old
}

// Get returns the value stored under key.
func (e *Element) Get(key string) interface{} {
	return e.values[key]
}

// Lookup returns the value stored under key and whether it was present.
func (e *Element) Lookup(key string) (interface{}, bool) {
	value, ok := e.values[key]
	return value, ok
}

// Has returns true if key is present.
func (e *Element) Has(key string) bool {
	_, ok := e.values[key]
	return ok
}

// Delete removes key.
func (e *Element) Delete(key string) {
	if _, ok := e.values[key]; !ok {
		return
	}
	delete(e.values, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
}

// Keys returns keys in insertion order.
func (e *Element) Keys() []string {
	result := make([]string, len(e.keys))
	copy(result, e.keys)
	return result
}

// Range calls fn for each entry in insertion order until fn returns false.
func (e *Element) Range(fn func(key string, value interface{}) bool) {
	for _, key := range e.Keys() {
		value, ok := e.values[key]
		if !ok {
			continue
		}
		if !fn(key, value) {
			return
		}
	}
}

// Len returns the number of stored entries.
func (e *Element) Len() int {
	return len(e.keys)
}

// Size returns the logical size: the number of items for an array or map in
// progress, 0 for a reference, otherwise the number of entries.
func (e *Element) Size() int {
	if e.Has(KeyItems) {
		return len(e.Items())
	}
	if e.Has(KeyRef) {
		return 0
	}
	return len(e.keys)
}

// Clear removes all entries and the declared type.
func (e *Element) Clear() {
	e.keys = nil
	e.values = map[string]interface{}{}
	e.Type = ""
}

// Items returns the @items array.
func (e *Element) Items() []interface{} {
	items, _ := e.values[KeyItems].([]interface{})
	return items
}

// KeyItems returns the @keys array.
func (e *Element) KeyItems() []interface{} {
	items, _ := e.values[KeyKeys].([]interface{})
	return items
}

// HasID returns true if the element declares an identity.
func (e *Element) HasID() bool {
	return e.ID != NoID
}

// IsReference returns true if the element is a @ref marker.
func (e *Element) IsReference() bool {
	return e.Has(KeyRef)
}

// RefID returns the referenced identity.
func (e *Element) RefID() int64 {
	id, _ := toID(e.values[KeyRef])
	return id
}

// IsMap returns true if the element carries @keys and @items or its target is a map.
func (e *Element) IsMap() bool {
	if e.isMap {
		return true
	}
	if !e.Target.IsValid() {
		return false
	}
	t := shapeOf(e.Target.Type())
	return t.Kind() == reflect.Map && !IsSetType(t)
}

// MarkMap flags the element as a map.
func (e *Element) MarkMap() {
	e.isMap = true
}

// IsCollection returns true if the element represents a list or set.
func (e *Element) IsCollection() bool {
	if e.Target.IsValid() {
		return IsCollectionType(shapeOf(e.Target.Type()))
	}
	if e.Has(KeyItems) && !e.Has(KeyKeys) {
		return e.Type != "" && !strings.HasPrefix(e.Type, "[")
	}
	return false
}

// IsArray returns true if the element represents a slice or fixed array.
func (e *Element) IsArray() bool {
	if !e.Target.IsValid() {
		if e.Type != "" {
			return strings.HasPrefix(e.Type, "[")
		}
		return e.Has(KeyItems) && !e.Has(KeyKeys)
	}
	switch shapeOf(e.Target.Type()).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// shapeOf unwraps pointers to slices, arrays and maps
func shapeOf(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		switch t.Elem().Kind() {
		case reflect.Slice, reflect.Array, reflect.Map, reflect.Ptr:
			t = t.Elem()
			continue
		}
		break
	}
	return t
}

// Length returns the number of items of an array, collection or map element.
func (e *Element) Length() (int, error) {
	if e.IsArray() {
		if !e.Target.IsValid() {
			return len(e.Items()), nil
		}
		target := e.Target
		for target.Kind() == reflect.Ptr && !target.IsNil() {
			target = target.Elem()
		}
		if target.Kind() == reflect.Ptr {
			return 0, nil
		}
		return target.Len(), nil
	}
	if e.IsCollection() || e.IsMap() {
		return len(e.Items()), nil
	}
	return 0, errs.New(errs.CodeDecode, "Length() called on a non-collection").WithPosition(e.Line, e.Col)
}

// IsLogicalPrimitive returns true if Type names a primitive, date or big number.
func (e *Element) IsLogicalPrimitive() bool {
	_, ok := primitiveTypes[e.Type]
	return ok
}

// PrimitiveValue converts the "value" entry to the primitive named by Type.
func (e *Element) PrimitiveValue() (interface{}, error) {
	target, ok := primitiveTypes[e.Type]
	if !ok {
		return nil, errs.New(errs.CodeDecode, "Invalid primitive type %q", e.Type).WithPosition(e.Line, e.Col)
	}
	raw, ok := e.Lookup("value")
	if !ok {
		return nil, errs.New(errs.CodeShape, "%v missing 'value' field", target).WithPosition(e.Line, e.Col)
	}
	value, err := conv.Convert(target, raw)
	if err != nil {
		return nil, errs.As(errs.CodeConversion, err).WithPosition(e.Line, e.Col)
	}
	return value.Interface(), nil
}

// PrimitiveType returns the Go type of a primitive wire name.
func PrimitiveType(name string) (reflect.Type, bool) {
	t, ok := primitiveTypes[name]
	return t, ok
}

var primitiveTypes = map[string]reflect.Type{
	"boolean": reflect.TypeOf(false),
	"byte":    reflect.TypeOf(uint8(0)),
	"short":   reflect.TypeOf(int16(0)),
	"int":     reflect.TypeOf(0),
	"char":    reflect.TypeOf(rune(0)),
	"long":    reflect.TypeOf(int64(0)),
	"float":   reflect.TypeOf(float32(0)),
	"double":  reflect.TypeOf(float64(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"date":    reflect.TypeOf(time.Time{}),
	"bigint":  reflect.TypeOf((*big.Int)(nil)),
	"bigdec":  reflect.TypeOf((*big.Float)(nil)),
}

var listType = reflect.TypeOf((*list.List)(nil))

// IsSetType returns true for map[K]struct{}.
func IsSetType(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// IsListType returns true for *list.List.
func IsListType(t reflect.Type) bool {
	return t == listType
}

// IsCollectionType returns true for lists and sets.
func IsCollectionType(t reflect.Type) bool {
	return IsListType(t) || IsSetType(t)
}

func toID(value interface{}) (int64, bool) {
	switch actual := value.(type) {
	case int64:
		return actual, true
	case int:
		return int64(actual), true
	case float64:
		return int64(actual), true
	case string:
		v, err := conv.Convert(reflect.TypeOf(int64(0)), actual)
		if err != nil {
			return 0, false
		}
		return v.Int(), true
	}
	return 0, false
}

// Index maps identities to their defining elements.
type Index map[int64]*Element
