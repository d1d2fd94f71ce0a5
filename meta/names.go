package meta

import (
	"bytes"
	"container/list"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/viant/jsonio/errs"
	"golang.org/x/text/language"
)

type namedType struct {
	name string
	t    reflect.Type
}

var builtinNames = []namedType{
	{"boolean", reflect.TypeOf(false)},
	{"byte", reflect.TypeOf(uint8(0))},
	{"short", reflect.TypeOf(int16(0))},
	{"int", reflect.TypeOf(0)},
	{"char", reflect.TypeOf(rune(0))},
	{"long", reflect.TypeOf(int64(0))},
	{"float", reflect.TypeOf(float32(0))},
	{"double", reflect.TypeOf(float64(0))},
	{"string", StringType},
	{"date", TimeType},
	{"class", ClassType},
	{"bigint", BigIntType},
	{"bigdec", BigFloatType},
	{"int8", reflect.TypeOf(int8(0))},
	{"uint", reflect.TypeOf(uint(0))},
	{"uint16", reflect.TypeOf(uint16(0))},
	{"uint32", reflect.TypeOf(uint32(0))},
	{"uint64", reflect.TypeOf(uint64(0))},
	{"uintptr", reflect.TypeOf(uintptr(0))},
	{"interface {}", InterfaceType},
	{"struct {}", reflect.TypeOf(struct{}{})},
}

var aliasNames = map[string]reflect.Type{
	"bool":    reflect.TypeOf(false),
	"uint8":   reflect.TypeOf(uint8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"rune":    reflect.TypeOf(rune(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
	"any":     InterfaceType,
}

// namedBuiltins are library types named by their qualified name, the
// pointer ones are always handled by pointer so the name resolves to *T
var namedBuiltins = []reflect.Type{
	DurationType,
	reflect.TypeOf(language.Tag{}),
	reflect.TypeOf(atomic.Bool{}),
	reflect.TypeOf(atomic.Int32{}),
	reflect.TypeOf(atomic.Int64{}),
	reflect.TypeOf(&time.Location{}),
	reflect.TypeOf(&strings.Builder{}),
	reflect.TypeOf(&bytes.Buffer{}),
	reflect.TypeOf(&list.List{}),
}

func qualifiedName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr && t.Name() == "" {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Name returns the wire name of t, a pointer to a named struct is named as the
// struct itself. Named types are registered on first use so that names
// produced in process can be looked up again.
func (r *Registry) Name(t reflect.Type) string {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()
	if ok {
		return name
	}
	if t.Kind() == reflect.Ptr {
		if elem := t.Elem(); elem.Kind() == reflect.Struct && elem.Name() != "" {
			t = elem
		}
	}
	return r.typeName(t)
}

func (r *Registry) typeName(t reflect.Type) string {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()
	if ok {
		return name
	}
	if t.Name() == "" {
		switch t.Kind() {
		case reflect.Ptr:
			return "*" + r.typeName(t.Elem())
		case reflect.Slice:
			return "[]" + r.typeName(t.Elem())
		case reflect.Array:
			return "[" + strconv.Itoa(t.Len()) + "]" + r.typeName(t.Elem())
		case reflect.Map:
			return "map[" + r.typeName(t.Key()) + "]" + r.typeName(t.Elem())
		}
		name = t.String()
	} else {
		name = qualifiedName(t)
	}
	r.mu.Lock()
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = t
	}
	if _, ok := r.names[t]; !ok {
		r.names[t] = name
	}
	r.mu.Unlock()
	return name
}

// Lookup resolves a wire name to a Go type, composite names use Go syntax
func (r *Registry) Lookup(name string) (reflect.Type, error) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := r.composite.GetOrLoad(name, func() (reflect.Type, error) {
		return r.parseComposite(name)
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeType, err, "Unable to find type: %v", name)
	}
	return t, nil
}

func (r *Registry) parseComposite(name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	switch {
	case strings.HasPrefix(name, "*"):
		elem, err := r.Lookup(name[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PtrTo(elem), nil
	case strings.HasPrefix(name, "[]"):
		elem, err := r.Lookup(name[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end == -1 {
			return nil, fmt.Errorf("invalid array type: %v", name)
		}
		size, err := strconv.Atoi(name[1:end])
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid array length: %v", name)
		}
		elem, err := r.Lookup(name[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(size, elem), nil
	case strings.HasPrefix(name, "map["):
		end := matchingBracket(name, 3)
		if end == -1 {
			return nil, fmt.Errorf("invalid map type: %v", name)
		}
		key, err := r.Lookup(name[4:end])
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, fmt.Errorf("invalid map key type: %v", key)
		}
		elem, err := r.Lookup(name[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, elem), nil
	}
	return nil, fmt.Errorf("unknown type")
}

func matchingBracket(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// IsArrayName returns true for slice and fixed array wire names
func IsArrayName(name string) bool {
	return strings.HasPrefix(name, "[")
}
