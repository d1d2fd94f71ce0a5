package resolver

import (
	"reflect"
	"strings"

	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
)

// Maps resolves references in place and keeps the generic element tree,
// leaf values are upgraded to member types when the declaring type is known
type Maps struct {
	*base
	declared map[*element.Element]reflect.Type
	visited  []*element.Element
}

// NewMaps creates a generic tree resolver over the identity index
func NewMaps(index element.Index, config *Config) *Maps {
	return &Maps{base: newBase(index, config), declared: map[*element.Element]reflect.Type{}}
}

// Resolve replaces references with the elements they point to and returns the root
func (r *Maps) Resolve(value interface{}, declared reflect.Type) (reflect.Value, error) {
	defer r.clear()
	stack := &Stack{}
	root := element.New()
	result, err := r.resolveValue(stack, root, value, declared)
	if err != nil {
		return reflect.Value{}, err
	}
	if err = drain(r, stack); err != nil {
		return reflect.Value{}, err
	}
	if err = r.Cleanup(); err != nil {
		return reflect.Value{}, err
	}
	if result == nil {
		return reflect.Value{}, nil
	}
	return reflect.ValueOf(result), nil
}

// CreateInstance records declared as the type of e, the element itself is the instance
func (r *Maps) CreateInstance(declared reflect.Type, e *element.Element) (reflect.Value, error) {
	if declared != nil && e.Type == "" {
		r.declared[e] = declared
	}
	return reflect.ValueOf(e), nil
}

// ReadIfMatching never reads, custom codecs only upgrade leaves
func (r *Maps) ReadIfMatching(interface{}, reflect.Type, *Stack) (reflect.Value, bool, error) {
	return reflect.Value{}, false, nil
}

// typeOf returns the explicit or declared type of e, nil when unknown
func (r *Maps) typeOf(e *element.Element) reflect.Type {
	if t, ok := r.declared[e]; ok {
		return t
	}
	var t reflect.Type
	if e.Type != "" {
		explicit, err := r.lookup(e.Type)
		if err != nil {
			r.logger.Debug("unknown type, keeping generic element", "type", e.Type, "line", e.Line, "col", e.Col)
		} else {
			t = explicit
		}
	}
	r.declared[e] = t
	return t
}

func (r *Maps) resolveValue(stack *Stack, owner *element.Element, rhs interface{}, declared reflect.Type) (interface{}, error) {
	if declared != nil && declared.Kind() == reflect.Interface {
		declared = nil
	}
	switch actual := rhs.(type) {
	case nil:
		return nil, nil
	case *element.Element:
		if actual.IsReference() {
			return r.referenced(actual.RefID(), actual)
		}
		if _, err := r.CreateInstance(declared, actual); err != nil {
			return nil, err
		}
		if value, ok, err := r.primitive(actual); ok || err != nil {
			return value, err
		}
		r.visited = append(r.visited, actual)
		stack.Push(actual)
		return actual, nil
	case []interface{}:
		e := synthetic(actual)
		e.Line, e.Col = owner.Line, owner.Col
		if declared != nil {
			r.declared[e] = declared
		}
		stack.Push(e)
		return actual, nil
	}
	if element.IsEmpty(rhs) {
		e := element.New()
		e.Line, e.Col = owner.Line, owner.Col
		return e, nil
	}
	return r.upgrade(owner, rhs, declared)
}

// primitive replaces an element standing for a logical primitive by its native value
func (r *Maps) primitive(e *element.Element) (interface{}, bool, error) {
	if e.IsLogicalPrimitive() {
		value, err := e.PrimitiveValue()
		return value, err == nil, err
	}
	t := r.typeOf(e)
	if t == nil || !meta.IsLogicalPrimitive(t) {
		return nil, false, nil
	}
	if reader, ok := r.config.Table.Reader(t); ok {
		value, err := reader.Read(e, t, r.config.Codec)
		if err != nil {
			return nil, false, errs.As(errs.CodeConversion, err).WithPosition(e.Line, e.Col)
		}
		return value.Interface(), true, nil
	}
	text, ok := e.Lookup("value")
	if !ok && meta.IsEnum(t) {
		text, ok = e.Lookup("name")
	}
	if !ok {
		return nil, false, errs.New(errs.CodeShape, "%v missing 'value' field", t).WithPosition(e.Line, e.Col)
	}
	value, err := r.converter.Convert(t, text)
	if err != nil {
		return nil, false, errs.As(errs.CodeConversion, err).WithPosition(e.Line, e.Col)
	}
	return value.Interface(), true, nil
}

// upgrade converts a scalar to declared when it is a logical primitive, "" becomes nil for non text types
func (r *Maps) upgrade(owner *element.Element, rhs interface{}, declared reflect.Type) (interface{}, error) {
	if declared == nil || !meta.IsLogicalPrimitive(declared) {
		return rhs, nil
	}
	if text, ok := rhs.(string); ok && strings.TrimSpace(text) == "" && declared.Kind() != reflect.String {
		return nil, nil
	}
	if reader, ok := r.config.Table.Reader(declared); ok && !r.config.Table.IsNotCustom(declared) {
		value, err := reader.Read(rhs, declared, r.config.Codec)
		if err != nil {
			return nil, errs.As(errs.CodeConversion, err).WithPosition(owner.Line, owner.Col)
		}
		return value.Interface(), nil
	}
	if !conv.IsConvertible(declared) {
		return rhs, nil
	}
	value, err := r.converter.Convert(declared, rhs)
	if err != nil {
		return nil, errs.As(errs.CodeConversion, err).WithPosition(owner.Line, owner.Col)
	}
	return value.Interface(), nil
}

// TraverseFields resolves each entry in place, using member types of a known struct or the value type of a known map
func (r *Maps) TraverseFields(stack *Stack, e *element.Element) error {
	t := r.typeOf(e)
	var members *meta.Members
	var valueType reflect.Type
	if t != nil {
		if structType := meta.StructOf(t); structType != nil && !meta.IsBuiltin(structType) {
			var err error
			if members, err = meta.MembersOf(structType); err != nil {
				return errs.As(errs.CodeType, err).WithPosition(e.Line, e.Col)
			}
		} else if shape := indirectType(t); meta.IsMap(shape) && shape.Key().Kind() == reflect.String {
			valueType = shape.Elem()
		}
	}
	for _, key := range e.Keys() {
		if isMetaKey(key) {
			continue
		}
		declared := valueType
		if members != nil {
			if member := members.Lookup(key); member != nil {
				declared = member.Type
			}
		}
		value, err := r.resolveValue(stack, e, e.Get(key), declared)
		if err != nil {
			return errs.As(errs.CodeDecode, err).WithPosition(e.Line, e.Col)
		}
		e.Put(key, value)
	}
	return nil
}

// TraverseArray resolves items in place
func (r *Maps) TraverseArray(stack *Stack, e *element.Element) error {
	items := e.Items()
	if len(items) == 0 {
		return nil
	}
	var component reflect.Type
	if t := r.typeOf(e); t != nil {
		switch shape := indirectType(t); {
		case meta.IsArray(shape):
			component = shape.Elem()
		case meta.IsSet(shape):
			component = shape.Key()
		}
	}
	if component == runeType {
		if _, ok := items[0].(string); ok {
			return nil
		}
	}
	for i, item := range items {
		value, err := r.resolveValue(stack, e, item, component)
		if err != nil {
			return err
		}
		items[i] = value
	}
	return nil
}

// TraverseCollection resolves list and set items in place
func (r *Maps) TraverseCollection(stack *Stack, e *element.Element) error {
	return r.TraverseArray(stack, e)
}

// TraverseMap resolves keys and items in place, text keyed maps become plain entries during cleanup
func (r *Maps) TraverseMap(stack *Stack, e *element.Element) error {
	keys, items, err := mapEntries(e)
	if err != nil || keys == nil {
		return err
	}
	var keyType, valueType reflect.Type
	if t := r.typeOf(e); t != nil {
		if shape := indirectType(t); meta.IsMap(shape) {
			keyType, valueType = shape.Key(), shape.Elem()
		}
	}
	for _, part := range []struct {
		items    []interface{}
		declared reflect.Type
	}{{keys, keyType}, {items, valueType}} {
		for i, item := range part.items {
			value, err := r.resolveValue(stack, e, item, part.declared)
			if err != nil {
				return err
			}
			part.items[i] = value
		}
	}
	r.pending = append(r.pending, func() error {
		rehash(e)
		return nil
	})
	return nil
}

// rehash turns @keys/@items into plain entries when every key is text
func rehash(e *element.Element) {
	keys, items := e.KeyItems(), e.Items()
	for _, key := range keys {
		text, ok := key.(string)
		if !ok || strings.HasPrefix(text, "@") {
			return
		}
	}
	e.Delete(element.KeyKeys)
	e.Delete(element.KeyItems)
	for i, key := range keys {
		e.Put(key.(string), items[i])
	}
}

// Cleanup rehashes maps, then releases targets and per read state
func (r *Maps) Cleanup() error {
	defer r.clear()
	for _, fn := range r.pending {
		if err := fn(); err != nil {
			return err
		}
	}
	for _, e := range r.visited {
		e.Target = reflect.Value{}
	}
	return nil
}

func (r *Maps) clear() {
	r.declared = map[*element.Element]reflect.Type{}
	r.visited = nil
	r.reset()
}
