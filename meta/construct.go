package meta

import (
	"bytes"
	"container/list"
	"fmt"
	"math/big"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"golang.org/x/text/language"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type (
	constructor struct {
		fn         reflect.Value
		name       string
		exported   bool
		params     []reflect.Type
		returnsPtr bool
		returnsErr bool
	}

	// strategy returns a pointer to a new struct instance
	strategy func(e *element.Element) (reflect.Value, error)
)

// RegisterConstructor registers a function creating a struct, accepted shapes:
// func(...) *T, func(...) T, func(...) (*T, error), func(...) (T, error)
func (r *Registry) RegisterConstructor(fn interface{}) error {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func || fnValue.IsNil() {
		return errs.New(errs.CodeConfig, "constructor: expected func, but had: %T", fn)
	}
	fnType := fnValue.Type()
	if fnType.IsVariadic() {
		return errs.New(errs.CodeConfig, "constructor: variadic functions are not supported: %v", fnType)
	}
	ctor := &constructor{fn: fnValue}
	switch fnType.NumOut() {
	case 2:
		if fnType.Out(1) != errorType {
			return errs.New(errs.CodeConfig, "constructor: second result has to be error: %v", fnType)
		}
		ctor.returnsErr = true
	case 1:
	default:
		return errs.New(errs.CodeConfig, "constructor: expected one result with optional error: %v", fnType)
	}
	out := fnType.Out(0)
	if out.Kind() == reflect.Ptr {
		ctor.returnsPtr = true
		out = out.Elem()
	}
	if out.Kind() != reflect.Struct {
		return errs.New(errs.CodeConfig, "constructor: expected struct result: %v", fnType)
	}
	for i := 0; i < fnType.NumIn(); i++ {
		ctor.params = append(ctor.params, fnType.In(i))
	}
	ctor.name = functionName(fnValue)
	if ctor.name != "" {
		ctor.exported = unicode.IsUpper([]rune(ctor.name)[0])
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ctors := append(r.constructors[out], ctor)
	sort.SliceStable(ctors, func(i, j int) bool {
		return ctors[i].less(ctors[j])
	})
	r.constructors[out] = ctors
	r.strategies.Put(out, nil)
	return nil
}

func functionName(fn reflect.Value) string {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return ""
	}
	name := f.Name()
	if index := strings.LastIndexByte(name, '/'); index != -1 {
		name = name[index+1:]
	}
	if index := strings.LastIndexByte(name, '.'); index != -1 {
		name = name[index+1:]
	}
	return name
}

// less orders exported before unexported, fewer params first, then param type names
func (c *constructor) less(other *constructor) bool {
	if c.exported != other.exported {
		return c.exported
	}
	if len(c.params) != len(other.params) {
		return len(c.params) < len(other.params)
	}
	for i := range c.params {
		a, b := c.params[i].String(), other.params[i].String()
		if a != b {
			return a < b
		}
	}
	return false
}

// call invokes constructor, a panic is reported as an error
func (c *constructor) call(args []reflect.Value) (result reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v panic: %v", c.name, r)
		}
	}()
	out := c.fn.Call(args)
	if c.returnsErr && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}
	result = out[0]
	if c.returnsPtr {
		if result.IsNil() {
			return reflect.Value{}, fmt.Errorf("%v returned nil", c.name)
		}
		return result, nil
	}
	ptr := reflect.New(result.Type())
	ptr.Elem().Set(result)
	return ptr, nil
}

// Construct creates a value of type t; e may carry the expected length for slices
func (r *Registry) Construct(t reflect.Type, e *element.Element) (reflect.Value, error) {
	if factory, ok := r.Factory(t); ok {
		value, err := factory(t, e)
		if err != nil {
			return reflect.Value{}, errs.Wrap(errs.CodeInstantiation, err, "factory failed for: %v", t)
		}
		return value, nil
	}
	switch t.Kind() {
	case reflect.Map:
		return MapFactory(t, e)
	case reflect.Slice:
		size := 0
		if e != nil {
			size = e.Size()
		}
		return reflect.MakeSlice(t, size, size), nil
	case reflect.Interface:
		return reflect.Value{}, errs.New(errs.CodeInstantiation, "Cannot instantiate unknown interface: %v", r.Name(t))
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return reflect.Value{}, errs.New(errs.CodeInstantiation, "Cannot instantiate %v", t)
	case reflect.Struct:
		ptr, err := r.constructStruct(t, e)
		if err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	case reflect.Ptr:
		if t.Elem().Kind() == reflect.Struct {
			if factory, ok := r.Factory(t.Elem()); ok {
				value, err := factory(t.Elem(), e)
				if err != nil {
					return reflect.Value{}, errs.Wrap(errs.CodeInstantiation, err, "factory failed for: %v", t)
				}
				if value.Type() == t {
					return value, nil
				}
				ptr := reflect.New(t.Elem())
				ptr.Elem().Set(value)
				return ptr, nil
			}
			return r.constructStruct(t.Elem(), e)
		}
		return reflect.New(t.Elem()), nil
	}
	return reflect.New(t).Elem(), nil
}

func (r *Registry) constructStruct(t reflect.Type, e *element.Element) (reflect.Value, error) {
	if s, ok := r.strategies.Get(t); ok && s != nil {
		return s(e)
	}
	r.mu.RLock()
	ctors := r.constructors[t]
	r.mu.RUnlock()
	logger := r.options.Logger
	var lastErr error
	for _, ctor := range ctors {
		if len(ctor.params) != 0 {
			continue
		}
		value, err := ctor.call(nil)
		if err != nil {
			lastErr = err
			continue
		}
		r.strategies.Put(t, ctor.strategy(nil))
		logger.Debug("instantiation strategy", "type", t.String(), "constructor", ctor.name)
		return value, nil
	}
	for _, synthesize := range []func(reflect.Type) reflect.Value{zeroArg, defaultArg} {
		for _, ctor := range ctors {
			if len(ctor.params) == 0 {
				continue
			}
			args := make([]reflect.Value, len(ctor.params))
			for i, param := range ctor.params {
				args[i] = synthesize(param)
			}
			value, err := ctor.call(args)
			if err != nil {
				lastErr = err
				continue
			}
			r.strategies.Put(t, ctor.strategy(synthesize))
			logger.Debug("instantiation strategy", "type", t.String(), "constructor", ctor.name, "params", len(ctor.params))
			return value, nil
		}
	}
	if r.options.AllowZeroValue {
		r.strategies.Put(t, func(e *element.Element) (reflect.Value, error) {
			return reflect.New(t), nil
		})
		return reflect.New(t), nil
	}
	return reflect.Value{}, errs.Wrap(errs.CodeInstantiation, lastErr, "Could not instantiate %v using any constructor", t)
}

func (c *constructor) strategy(synthesize func(reflect.Type) reflect.Value) strategy {
	return func(e *element.Element) (reflect.Value, error) {
		args := make([]reflect.Value, len(c.params))
		for i, param := range c.params {
			args[i] = synthesize(param)
		}
		value, err := c.call(args)
		if err != nil {
			return reflect.Value{}, errs.Wrap(errs.CodeInstantiation, err, "Could not instantiate using %v", c.name)
		}
		return value, nil
	}
}

func zeroArg(t reflect.Type) reflect.Value {
	return reflect.Zero(t)
}

// defaultArg returns a non nil representative value for t
func defaultArg(t reflect.Type) reflect.Value {
	switch t {
	case TimeType:
		return reflect.ValueOf(time.Now())
	case LocationType:
		return reflect.ValueOf(time.UTC)
	case BigIntType:
		return reflect.ValueOf(big.NewInt(10))
	case BigFloatType:
		return reflect.ValueOf(big.NewFloat(10))
	case ListType:
		return reflect.ValueOf(list.New())
	case BuilderType:
		return reflect.ValueOf(&strings.Builder{})
	case BufferType:
		return reflect.ValueOf(&bytes.Buffer{})
	case LanguageTagType:
		return reflect.ValueOf(language.Und)
	case ClassType:
		return reflect.ValueOf(&StringType).Elem()
	case InterfaceType:
		var value interface{} = struct{}{}
		return reflect.ValueOf(&value).Elem()
	}
	switch t.Kind() {
	case reflect.Slice:
		return reflect.MakeSlice(t, 0, 0)
	case reflect.Map:
		return reflect.MakeMap(t)
	case reflect.Ptr:
		return reflect.New(t.Elem())
	}
	return reflect.Zero(t)
}

// MapFactory creates an empty map
func MapFactory(t reflect.Type, e *element.Element) (reflect.Value, error) {
	if t.Kind() != reflect.Map {
		return reflect.Value{}, errs.New(errs.CodeInstantiation, "map factory: expected map, but had: %v", t)
	}
	size := 0
	if e != nil {
		size = e.Size()
	}
	return reflect.MakeMapWithSize(t, size), nil
}

// ListFactory creates an empty *list.List
func ListFactory(t reflect.Type, _ *element.Element) (reflect.Value, error) {
	if t != ListType {
		return reflect.Value{}, errs.New(errs.CodeInstantiation, "list factory: expected %v, but had: %v", ListType, t)
	}
	return reflect.ValueOf(list.New()), nil
}
