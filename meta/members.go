package meta

import (
	"reflect"
	"unsafe"

	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/visitor"
	"github.com/viant/xunsafe"
)

type (
	// Member represents a serializable struct field, possibly promoted from an embedded struct.
	Member struct {
		// Name is the JSON key; a name shadowed by a closer field is qualified as Ancestor.name
		Name        string
		Field       reflect.StructField
		Type        reflect.Type
		Declaring   reflect.Type
		Transient   bool
		DefaultType string
		TimeLayout  string
		Index       int
		path        []*step
	}

	step struct {
		field *xunsafe.Field
		isPtr bool
		elem  reflect.Type
	}

	// Members represents ordered members of a struct type
	Members struct {
		Type   reflect.Type
		List   []*Member
		byName map[string]*Member
	}

	embedded struct {
		t     reflect.Type
		path  []*step
		depth int
	}
)

var membersCache = visitor.NewSyncMap[reflect.Type, *Members]()

// Lookup returns a member by JSON key
func (m *Members) Lookup(name string) *Member {
	return m.byName[name]
}

// Len returns members count
func (m *Members) Len() int {
	return len(m.List)
}

// Names returns member names in order
func (m *Members) Names() []string {
	var result = make([]string, 0, len(m.List))
	for _, member := range m.List {
		result = append(result, member.Name)
	}
	return result
}

// Addr returns the member address inside holder, allocating nil embedded pointers on the way
func (m *Member) Addr(holder unsafe.Pointer) unsafe.Pointer {
	ptr := holder
	last := len(m.path) - 1
	for i, s := range m.path {
		ptr = s.field.Pointer(ptr)
		if i == last || !s.isPtr {
			continue
		}
		ref := (*unsafe.Pointer)(ptr)
		if *ref == nil {
			*ref = reflect.New(s.elem).UnsafePointer()
		}
		ptr = *ref
	}
	return ptr
}

// Value returns a settable member value, allocating nil embedded pointers on the way
func (m *Member) Value(holder unsafe.Pointer) reflect.Value {
	return reflect.NewAt(m.Type, m.Addr(holder)).Elem()
}

// Get returns the member value, false when an embedded pointer on the way is nil
func (m *Member) Get(holder unsafe.Pointer) (reflect.Value, bool) {
	ptr := holder
	last := len(m.path) - 1
	for i, s := range m.path {
		ptr = s.field.Pointer(ptr)
		if i == last || !s.isPtr {
			continue
		}
		ptr = *(*unsafe.Pointer)(ptr)
		if ptr == nil {
			return reflect.Value{}, false
		}
	}
	return reflect.NewAt(m.Type, ptr).Elem(), true
}

// Set assigns value to the member
func (m *Member) Set(holder unsafe.Pointer, value reflect.Value) {
	target := m.Value(holder)
	if !value.IsValid() {
		target.Set(reflect.Zero(m.Type))
		return
	}
	target.Set(value)
}

// Holder returns the struct address of a pointer or addressable struct value
func Holder(value reflect.Value) unsafe.Pointer {
	switch value.Kind() {
	case reflect.Ptr:
		return value.UnsafePointer()
	case reflect.Interface:
		return Holder(value.Elem())
	}
	if value.CanAddr() {
		return value.Addr().UnsafePointer()
	}
	ptr := reflect.New(value.Type())
	ptr.Elem().Set(value)
	return ptr.UnsafePointer()
}

// MembersOf returns cached members of a struct or struct pointer type
func MembersOf(t reflect.Type) (*Members, error) {
	structType := StructOf(t)
	if structType == nil {
		return nil, errs.New(errs.CodeType, "members: expected struct, but had: %v", t)
	}
	if members, ok := membersCache.Get(structType); ok {
		return members, nil
	}
	members, err := buildMembers(structType)
	if err != nil {
		return nil, err
	}
	membersCache.Put(structType, members)
	return members, nil
}

// buildMembers collects own fields first, then promoted fields breadth first by embedding depth
func buildMembers(structType reflect.Type) (*Members, error) {
	result := &Members{Type: structType, byName: map[string]*Member{}}
	queue := []*embedded{{t: structType}}
	seen := map[reflect.Type]bool{structType: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for i := 0; i < current.t.NumField(); i++ {
			sf := current.t.Field(i)
			if sf.Name == "_" {
				continue
			}
			tag, err := ResolveFieldTag(sf)
			if err != nil {
				return nil, errs.Wrap(errs.CodeConfig, err, "invalid tag on %v.%v", current.t.Name(), sf.Name)
			}
			if tag.Ignore {
				continue
			}
			fieldStep := &step{field: xunsafe.NewField(sf)}
			if sf.Anonymous && !tag.Explicit && isFlattened(sf.Type) {
				embeddedType := sf.Type
				if embeddedType.Kind() == reflect.Ptr {
					fieldStep.isPtr = true
					fieldStep.elem = embeddedType.Elem()
					embeddedType = embeddedType.Elem()
				}
				if seen[embeddedType] {
					continue
				}
				seen[embeddedType] = true
				queue = append(queue, &embedded{t: embeddedType, path: extend(current.path, fieldStep), depth: current.depth + 1})
				continue
			}
			member := &Member{
				Name:        tag.Name,
				Field:       sf,
				Type:        sf.Type,
				Declaring:   current.t,
				Transient:   tag.Transient,
				DefaultType: tag.DefaultType,
				TimeLayout:  tag.TimeLayout,
				path:        extend(current.path, fieldStep),
			}
			if _, ok := result.byName[member.Name]; ok {
				member.Name = current.t.Name() + "." + member.Name
				if _, ok = result.byName[member.Name]; ok {
					continue
				}
			}
			member.Index = len(result.List)
			result.List = append(result.List, member)
			result.byName[member.Name] = member
		}
	}
	return result, nil
}

func extend(path []*step, s *step) []*step {
	result := make([]*step, len(path), len(path)+1)
	copy(result, path)
	return append(result, s)
}

func isFlattened(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct && !IsLogicalPrimitive(t) && !IsBuiltin(t)
}
