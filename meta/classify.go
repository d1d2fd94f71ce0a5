package meta

import (
	"bytes"
	"container/list"
	"encoding"
	"math/big"
	"reflect"
	"strings"
	"sync/atomic"
	"time"

	"github.com/viant/jsonio/element"
	"golang.org/x/text/language"
)

var (
	TimeType        = reflect.TypeOf(time.Time{})
	DurationType    = reflect.TypeOf(time.Duration(0))
	LocationType    = reflect.TypeOf((*time.Location)(nil))
	BigIntType      = reflect.TypeOf((*big.Int)(nil))
	BigFloatType    = reflect.TypeOf((*big.Float)(nil))
	ClassType       = reflect.TypeOf((*reflect.Type)(nil)).Elem()
	InterfaceType   = reflect.TypeOf((*interface{})(nil)).Elem()
	StringType      = reflect.TypeOf("")
	ListType        = reflect.TypeOf((*list.List)(nil))
	BuilderType     = reflect.TypeOf((*strings.Builder)(nil))
	BufferType      = reflect.TypeOf((*bytes.Buffer)(nil))
	LanguageTagType = reflect.TypeOf(language.Tag{})
	AtomicBoolType  = reflect.TypeOf(atomic.Bool{})
	AtomicInt32Type = reflect.TypeOf(atomic.Int32{})
	AtomicInt64Type = reflect.TypeOf(atomic.Int64{})

	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// IsPrimitive returns true for boolean and numeric kinds that are not enums.
func IsPrimitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return !IsEnum(t)
	}
	return false
}

// IsEnum returns true for named scalar types with text marshalling in both directions.
func IsEnum(t reflect.Type) bool {
	if t.Name() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Struct, reflect.Interface, reflect.Slice, reflect.Map, reflect.Array, reflect.Func, reflect.Chan:
		return false
	}
	return t.Implements(textMarshalerType) && reflect.PtrTo(t).Implements(textUnmarshalerType)
}

// IsClass returns true for reflect.Type values.
func IsClass(t reflect.Type) bool {
	return t == ClassType || (t.Kind() != reflect.Interface && t.Implements(ClassType))
}

// IsAtomic returns true for atomic.Bool, atomic.Int32 and atomic.Int64 and pointers to them.
func IsAtomic(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t == AtomicBoolType || t == AtomicInt32Type || t == AtomicInt64Type
}

// IsLogicalPrimitive returns true for values that are inlined and never identity tracked:
// primitives, text, dates, big numbers, enums, atomics and class references.
func IsLogicalPrimitive(t reflect.Type) bool {
	if IsPrimitive(t) || IsEnum(t) || IsClass(t) || IsAtomic(t) {
		return true
	}
	switch t {
	case TimeType, BigIntType, BigFloatType:
		return true
	}
	switch t.Kind() {
	case reflect.String:
		return true
	case reflect.Ptr:
		elem := t.Elem()
		return elem.Kind() != reflect.Ptr && (IsPrimitive(elem) || elem.Kind() == reflect.String || elem == TimeType)
	}
	return false
}

// IsSet returns true for map[K]struct{}.
func IsSet(t reflect.Type) bool {
	return element.IsSetType(t)
}

// IsCollection returns true for lists and sets.
func IsCollection(t reflect.Type) bool {
	return element.IsCollectionType(t)
}

// IsMap returns true for maps that are not sets.
func IsMap(t reflect.Type) bool {
	return t.Kind() == reflect.Map && !IsSet(t)
}

// IsArray returns true for slices and fixed arrays.
func IsArray(t reflect.Type) bool {
	return t.Kind() == reflect.Slice || t.Kind() == reflect.Array
}

// IsIdentityBearing returns true for values the writer tracks by identity.
func IsIdentityBearing(t reflect.Type) bool {
	if IsLogicalPrimitive(t) {
		return false
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		return true
	}
	return false
}

// IsUnsupported returns true for kinds that cannot be serialized.
func IsUnsupported(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// StructOf returns the struct type of t or *t, nil otherwise.
func StructOf(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		return t
	}
	return nil
}

// IsBuiltin returns true for library types handled by built-in codecs rather than member traversal.
func IsBuiltin(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case TimeType, LanguageTagType, LocationType.Elem(), ListType.Elem(), BuilderType.Elem(), BufferType.Elem(),
		BigIntType.Elem(), BigFloatType.Elem(), AtomicBoolType, AtomicInt32Type, AtomicInt64Type:
		return true
	}
	return false
}
