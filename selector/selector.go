// Package selector addresses values inside decoded graphs with dotted paths
// such as "lines[0].sku". A selector walks element trees, generic maps and
// slices as well as native structs, so the same path works before and after
// a document is bound to Go types.
package selector

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
)

type (
	step struct {
		key     string
		index   int
		isIndex bool
	}

	// Selector represents a compiled path
	Selector struct {
		expr  string
		steps []step
	}
)

var elementType = reflect.TypeOf(&element.Element{})

// New compiles expr, keys are separated by dots and indexes use brackets
func New(expr string) (*Selector, error) {
	ret := &Selector{expr: expr}
	if strings.TrimSpace(expr) == "" {
		return ret, nil
	}
	for _, part := range strings.Split(expr, ".") {
		if part == "" {
			return nil, errs.New(errs.CodeConfig, "invalid path %q: empty segment", expr)
		}
		key := part
		if pos := strings.Index(part, "["); pos != -1 {
			key, part = part[:pos], part[pos:]
		} else {
			part = ""
		}
		if key != "" {
			ret.steps = append(ret.steps, step{key: key})
		}
		for part != "" {
			end := strings.Index(part, "]")
			if part[0] != '[' || end == -1 {
				return nil, errs.New(errs.CodeConfig, "invalid path %q: malformed index", expr)
			}
			index, err := strconv.Atoi(part[1:end])
			if err != nil || index < 0 {
				return nil, errs.New(errs.CodeConfig, "invalid path %q: invalid index %v", expr, part[1:end])
			}
			ret.steps = append(ret.steps, step{index: index, isIndex: true})
			part = part[end+1:]
		}
	}
	return ret, nil
}

// String returns the source path
func (s *Selector) String() string {
	return s.expr
}

// Value returns the value the path points to
func (s *Selector) Value(root interface{}) (interface{}, bool) {
	current := reflect.ValueOf(root)
	for _, st := range s.steps {
		var ok bool
		if current, ok = st.next(current); !ok {
			return nil, false
		}
	}
	if !current.IsValid() {
		return nil, true
	}
	return current.Interface(), true
}

// Has returns true if the path resolves
func (s *Selector) Has(root interface{}) bool {
	_, ok := s.Value(root)
	return ok
}

// Values returns the selected value flattened into a slice when it is a collection
func (s *Selector) Values(root interface{}) []interface{} {
	value, ok := s.Value(root)
	if !ok || value == nil {
		return nil
	}
	switch actual := value.(type) {
	case []interface{}:
		return actual
	case *element.Element:
		if actual.IsArray() {
			return actual.Items()
		}
		return []interface{}{actual}
	}
	rValue := reflect.ValueOf(value)
	switch rValue.Kind() {
	case reflect.Slice, reflect.Array:
		ret := make([]interface{}, rValue.Len())
		for i := range ret {
			ret[i] = rValue.Index(i).Interface()
		}
		return ret
	}
	return []interface{}{value}
}

// Set assigns value to the path leaf, the leaf holder must be mutable
func (s *Selector) Set(root interface{}, value interface{}) error {
	if len(s.steps) == 0 {
		return errs.New(errs.CodeConfig, "cannot set root value")
	}
	holder := reflect.ValueOf(root)
	for _, st := range s.steps[:len(s.steps)-1] {
		var ok bool
		if holder, ok = st.next(holder); !ok {
			return errs.New(errs.CodeConfig, "path %v not found", s.expr)
		}
	}
	return s.steps[len(s.steps)-1].assign(holder, value)
}

func (st step) next(current reflect.Value) (reflect.Value, bool) {
	current = indirect(current)
	if !current.IsValid() {
		return current, false
	}
	if current.Type() == elementType {
		if current.IsNil() {
			return reflect.Value{}, false
		}
		return st.elementValue(current.Interface().(*element.Element))
	}
	switch current.Kind() {
	case reflect.Slice, reflect.Array:
		if !st.isIndex || st.index >= current.Len() {
			return reflect.Value{}, false
		}
		return current.Index(st.index), true
	case reflect.Map:
		key, err := st.mapKey(current.Type().Key())
		if err != nil {
			return reflect.Value{}, false
		}
		item := current.MapIndex(key)
		return item, item.IsValid()
	case reflect.Struct:
		if st.isIndex {
			return reflect.Value{}, false
		}
		members, err := meta.MembersOf(current.Type())
		if err != nil {
			return reflect.Value{}, false
		}
		member := members.Lookup(st.key)
		if member == nil {
			return reflect.Value{}, false
		}
		value, ok := member.Get(meta.Holder(current))
		if !ok {
			return reflect.Value{}, true
		}
		return value, true
	}
	return reflect.Value{}, false
}

func (st step) elementValue(e *element.Element) (reflect.Value, bool) {
	var value interface{}
	if st.isIndex {
		items := e.Items()
		if st.index >= len(items) {
			return reflect.Value{}, false
		}
		value = items[st.index]
	} else {
		var ok bool
		if value, ok = e.Lookup(st.key); !ok {
			return reflect.Value{}, false
		}
	}
	return reflect.ValueOf(value), true
}

func (st step) assign(holder reflect.Value, value interface{}) error {
	holder = indirect(holder)
	if !holder.IsValid() {
		return errs.New(errs.CodeConfig, "cannot set %v on nil holder", st)
	}
	if holder.Type() == elementType {
		e := holder.Interface().(*element.Element)
		if e == nil {
			return errs.New(errs.CodeConfig, "cannot set %v on nil holder", st)
		}
		if st.isIndex {
			return errs.New(errs.CodeConfig, "cannot set index %v on object", st.index)
		}
		e.Put(st.key, value)
		return nil
	}
	switch holder.Kind() {
	case reflect.Slice, reflect.Array:
		if !st.isIndex || st.index >= holder.Len() {
			return errs.New(errs.CodeConfig, "index out of range: %v, len: %v", st.index, holder.Len())
		}
		target := holder.Index(st.index)
		if !target.CanSet() {
			return errs.New(errs.CodeConfig, "%v is not settable", holder.Type())
		}
		converted, err := convert(target.Type(), value)
		if err != nil {
			return err
		}
		target.Set(converted)
		return nil
	case reflect.Map:
		if holder.IsNil() {
			return errs.New(errs.CodeConfig, "cannot set %v on nil map", st)
		}
		key, err := st.mapKey(holder.Type().Key())
		if err != nil {
			return err
		}
		converted, err := convert(holder.Type().Elem(), value)
		if err != nil {
			return err
		}
		holder.SetMapIndex(key, converted)
		return nil
	case reflect.Struct:
		if !holder.CanAddr() {
			return errs.New(errs.CodeConfig, "%v is not addressable", holder.Type())
		}
		members, err := meta.MembersOf(holder.Type())
		if err != nil {
			return err
		}
		member := members.Lookup(st.key)
		if member == nil {
			return errs.New(errs.CodeConfig, "unknown field %v in %v", st.key, holder.Type())
		}
		converted, err := convert(member.Type, value)
		if err != nil {
			return err
		}
		member.Set(meta.Holder(holder), converted)
		return nil
	}
	return errs.New(errs.CodeConfig, "cannot set %v on %v", st, holder.Type())
}

func (st step) mapKey(keyType reflect.Type) (reflect.Value, error) {
	if st.isIndex {
		return convert(keyType, int64(st.index))
	}
	return convert(keyType, st.key)
}

func (st step) String() string {
	if st.isIndex {
		return "[" + strconv.Itoa(st.index) + "]"
	}
	return st.key
}

func convert(destType reflect.Type, value interface{}) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(destType), nil
	}
	if reflect.TypeOf(value) == destType {
		return reflect.ValueOf(value), nil
	}
	if destType.Kind() == reflect.Interface {
		return reflect.ValueOf(value), nil
	}
	return conv.Convert(destType, value)
}

func indirect(value reflect.Value) reflect.Value {
	for value.IsValid() && value.Type() != elementType && (value.Kind() == reflect.Ptr || value.Kind() == reflect.Interface) {
		if value.IsNil() {
			return reflect.Value{}
		}
		value = value.Elem()
	}
	return value
}
