package writer

import (
	"container/list"
	"context"
	"reflect"

	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
	"github.com/viant/jsonio/visitor"
)

var elementType = reflect.TypeOf(&element.Element{})

// identity keys a shared value, slices sharing a backing array with different lengths are distinct
type identity struct {
	ptr uintptr
	t   reflect.Type
	n   int
}

// session holds per write state
type session struct {
	*Writer
	// visited holds 0 for values seen once, the assigned id for values seen more than once
	visited map[identity]int
	written map[identity]bool
	nextID  int
	// emitted numbers ids in output order
	emitted int
	level   int
}

func newSession(w *Writer) *session {
	return &session{Writer: w, visited: map[identity]int{}, written: map[identity]bool{}}
}

func identityOf(v reflect.Value) (identity, bool) {
	t := v.Type()
	switch v.Kind() {
	case reflect.Ptr:
		elem := t.Elem()
		if v.IsNil() || elem.Kind() != reflect.Struct || elem.Size() == 0 || meta.IsLogicalPrimitive(t) {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), t: t}, true
	case reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), t: t}, true
	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || t.Elem().Size() == 0 {
			return identity{}, false
		}
		return identity{ptr: v.Pointer(), t: t, n: v.Len()}, true
	}
	return identity{}, false
}

// trace walks the graph depth first with an explicit stack and assigns ids to values reached twice
func (s *session) trace(ctx context.Context, root reflect.Value) error {
	stack := []reflect.Value{root}
	for steps := 0; len(stack) > 0; steps++ {
		if steps%4096 == 4095 {
			if err := ctx.Err(); err != nil {
				return errs.Wrap(errs.CodeEncode, err, "write cancelled")
			}
		}
		last := len(stack) - 1
		v := indirectInterface(stack[last])
		stack = stack[:last]
		if !v.IsValid() || meta.IsLogicalPrimitive(v.Type()) {
			continue
		}
		if key, ok := identityOf(v); ok {
			if id, seen := s.visited[key]; seen {
				if id == 0 {
					s.nextID++
					s.visited[key] = s.nextID
				}
				continue
			}
			s.visited[key] = 0
		}
		if _, ok := s.customWriter(v.Type()); ok {
			continue
		}
		var err error
		if stack, err = s.children(stack, v); err != nil {
			return err
		}
	}
	return nil
}

// children pushes the values v refers to, maps and collections are walked by their logical content
func (s *session) children(stack []reflect.Value, v reflect.Value) ([]reflect.Value, error) {
	t := v.Type()
	switch t {
	case elementType:
		if e := v.Interface().(*element.Element); e != nil {
			e.Range(func(_ string, value interface{}) bool {
				stack = append(stack, reflect.ValueOf(value))
				return true
			})
		}
		return stack, nil
	case meta.ListType:
		if l := v.Interface().(*list.List); l != nil {
			_ = visitor.ListOf(l)(func(_ int, item reflect.Value) (bool, error) {
				stack = append(stack, item)
				return true, nil
			})
		}
		return stack, nil
	}
	switch v.Kind() {
	case reflect.Ptr:
		if !v.IsNil() {
			stack = append(stack, v.Elem())
		}
	case reflect.Struct:
		members, err := s.membersOf(t)
		if err != nil {
			return nil, err
		}
		holder := meta.Holder(v)
		for _, member := range members {
			if value, ok := member.Get(holder); ok {
				stack = append(stack, value)
			}
		}
	case reflect.Map:
		if v.IsNil() {
			return stack, nil
		}
		inlineKeys, inlineValues := isInline(t.Key()), isInline(t.Elem())
		if inlineKeys && inlineValues {
			return stack, nil
		}
		_ = visitor.MapOf(v)(func(key reflect.Value, value reflect.Value) (bool, error) {
			if !inlineKeys {
				stack = append(stack, key)
			}
			if !inlineValues {
				stack = append(stack, value)
			}
			return true, nil
		})
	case reflect.Slice, reflect.Array:
		if isInline(t.Elem()) {
			return stack, nil
		}
		_ = visitor.SliceOf(v)(func(_ int, item reflect.Value) (bool, error) {
			stack = append(stack, item)
			return true, nil
		})
	}
	return stack, nil
}

// isInline returns true for element types that can never reach an identity bearing value
func isInline(t reflect.Type) bool {
	return t.Kind() != reflect.Interface && meta.IsLogicalPrimitive(t)
}

func indirectInterface(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// membersOf returns struct members to write: the allow list when present, otherwise
// non transient members minus the deny list
func (s *session) membersOf(t reflect.Type) ([]*meta.Member, error) {
	members, err := meta.MembersOf(t)
	if err != nil {
		return nil, errs.As(errs.CodeEncode, err)
	}
	structType := meta.StructOf(t)
	allowed := s.allowed[structType]
	denied := s.denied[structType]
	result := make([]*meta.Member, 0, len(members.List))
	for _, member := range members.List {
		switch {
		case allowed != nil:
			if !allowed[member.Name] {
				continue
			}
		case member.Transient || denied[member.Name]:
			continue
		}
		result = append(result, member)
	}
	return result, nil
}
