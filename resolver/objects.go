package resolver

import (
	"container/list"
	"reflect"
	"strings"
	"time"

	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
)

var (
	interfaceSliceType = reflect.TypeOf([]interface{}{})
	stringMapType      = reflect.TypeOf(map[string]interface{}{})
	interfaceMapType   = reflect.TypeOf(map[interface{}]interface{}{})
	runeType           = reflect.TypeOf(rune(0))
)

// Objects resolves elements into typed Go values
type Objects struct {
	*base
}

// NewObjects creates an object resolver over the identity index
func NewObjects(index element.Index, config *Config) *Objects {
	return &Objects{base: newBase(index, config)}
}

// Resolve materializes value as declared, an interface type when nil
func (r *Objects) Resolve(value interface{}, declared reflect.Type) (reflect.Value, error) {
	if declared == nil {
		declared = meta.InterfaceType
	}
	slot := reflect.New(declared).Elem()
	if err := r.resolveInto(value, slot); err != nil {
		return reflect.Value{}, err
	}
	return slot, nil
}

// ResolveInto materializes value into the memory dest points to
func (r *Objects) ResolveInto(value interface{}, dest reflect.Value) error {
	if dest.Kind() != reflect.Ptr || dest.IsNil() {
		return errs.New(errs.CodeType, "expected non nil pointer, but had: %v", dest.Type())
	}
	return r.resolveInto(value, dest.Elem())
}

func (r *Objects) resolveInto(value interface{}, slot reflect.Value) error {
	defer r.reset()
	stack := &Stack{}
	root := element.New()
	root.Target = slot
	if err := r.assign(stack, root, indexAt(0), slot, slot.Type(), value); err != nil {
		return err
	}
	if err := drain(r, stack); err != nil {
		return err
	}
	return r.Cleanup()
}

// CreateInstance creates the target for e, an explicit @type wins over declared
func (r *Objects) CreateInstance(declared reflect.Type, e *element.Element) (reflect.Value, error) {
	return r.createInstance(declared, e, reflect.Value{})
}

func (r *Objects) createInstance(declared reflect.Type, e *element.Element, slot reflect.Value) (reflect.Value, error) {
	t := declared
	if e.Type != "" {
		explicit, err := r.lookup(e.Type)
		switch {
		case err == nil:
			t = explicit
		case r.config.FailOnUnknownType:
			return reflect.Value{}, errs.As(errs.CodeType, err).WithPosition(e.Line, e.Col)
		default:
			r.logger.Debug("unknown type, using declared type", "type", e.Type, "line", e.Line, "col", e.Col)
			e.Type = ""
		}
	}
	if t == nil || (t.Kind() == reflect.Interface && e.Type == "") {
		var err error
		if t, err = r.untyped(declared, e); err != nil {
			return reflect.Value{}, err
		}
	}
	if t.Kind() == reflect.Struct && !meta.IsBuiltin(t) && (declared == nil || declared.Kind() != reflect.Struct) {
		t = reflect.PtrTo(t)
	}
	value, err := r.instance(t, e, slot)
	if err != nil {
		return reflect.Value{}, err
	}
	e.Target = value
	return value, nil
}

// untyped picks the type of an element without @type for an interface or unknown slot
func (r *Objects) untyped(declared reflect.Type, e *element.Element) (reflect.Type, error) {
	if declared != nil && declared.Kind() != reflect.Interface {
		return declared, nil
	}
	var t reflect.Type
	switch {
	case e.IsMap():
		t = interfaceMapType
	case e.Has(element.KeyItems):
		t = interfaceSliceType
	default:
		switch r.config.Unknown {
		case UnknownAsType:
			unknown, err := r.lookup(r.config.UnknownType)
			if err != nil {
				return nil, errs.As(errs.CodeType, err).WithPosition(e.Line, e.Col)
			}
			t = unknown
		case UnknownFail:
			return nil, errs.New(errs.CodeType, "Unable to determine object type").WithPosition(e.Line, e.Col)
		default:
			t = stringMapType
		}
	}
	if declared != nil && declared != meta.InterfaceType {
		candidate := t
		if candidate.Kind() == reflect.Struct {
			candidate = reflect.PtrTo(candidate)
		}
		if !candidate.Implements(declared) {
			return nil, errs.New(errs.CodeInstantiation, "Cannot instantiate unknown interface: %v", r.config.Registry.Name(declared)).WithPosition(e.Line, e.Col)
		}
	}
	return t, nil
}

// instance allocates t; value structs and fixed arrays are created in place when slot has type t
func (r *Objects) instance(t reflect.Type, e *element.Element, slot reflect.Value) (reflect.Value, error) {
	inPlace := slot.IsValid() && slot.CanAddr() && slot.Type() == t
	switch {
	case isRunes(t):
		runes, err := runesOf(e.Items(), e)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(runes).Convert(t), nil
	case t.Kind() == reflect.Array:
		if size := len(e.Items()); size > t.Len() {
			return reflect.Value{}, errs.New(errs.CodeShape, "%v cannot hold %d items", t, size).WithPosition(e.Line, e.Col)
		}
		if inPlace {
			slot.Set(reflect.Zero(t))
			return slot.Addr(), nil
		}
		return reflect.New(t).Elem(), nil
	case t.Kind() == reflect.Ptr && isContainer(t.Elem()):
		inner, err := r.instance(t.Elem(), e, reflect.Value{})
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)
		return ptr, nil
	case meta.IsClass(t):
		name, _ := e.Get("value").(string)
		class, err := r.lookup(name)
		if err != nil {
			return reflect.Value{}, errs.As(errs.CodeType, err).WithPosition(e.Line, e.Col)
		}
		return reflect.ValueOf(class), nil
	case meta.IsEnum(t):
		text, ok := e.Lookup("value")
		if !ok {
			text = e.Get("name")
		}
		return r.convert(t, text, e)
	case conv.IsConvertible(t):
		return r.convert(t, e.Get("value"), e)
	case t.Kind() == reflect.Struct && inPlace:
		value, err := r.config.Registry.Construct(t, e)
		if err != nil {
			return reflect.Value{}, errs.As(errs.CodeInstantiation, err).WithPosition(e.Line, e.Col)
		}
		slot.Set(value)
		return slot.Addr(), nil
	}
	value, err := r.config.Registry.Construct(t, e)
	if err != nil {
		return reflect.Value{}, errs.As(errs.CodeInstantiation, err).WithPosition(e.Line, e.Col)
	}
	return value, nil
}

func (r *Objects) convert(t reflect.Type, value interface{}, at *element.Element) (reflect.Value, error) {
	result, err := r.converter.Convert(t, value)
	if err != nil {
		return reflect.Value{}, errs.As(errs.CodeConversion, err).WithPosition(at.Line, at.Col)
	}
	return result, nil
}

// ReadIfMatching reads value with the closest custom codec for its @type, target or declared type
func (r *Objects) ReadIfMatching(value interface{}, declared reflect.Type, _ *Stack) (reflect.Value, bool, error) {
	table := r.config.Table
	if declared != nil && table.IsNotCustom(declared) {
		return reflect.Value{}, false, nil
	}
	e, isElement := value.(*element.Element)
	if !isElement && declared == nil {
		return reflect.Value{}, false, nil
	}
	t := declared
	if isElement {
		switch {
		case e.IsReference():
			return reflect.Value{}, false, nil
		case e.Target.IsValid():
			t = e.Target.Type()
		case e.Type != "":
			explicit, err := r.lookup(e.Type)
			if err != nil {
				if r.config.FailOnUnknownType {
					return reflect.Value{}, false, errs.Wrap(errs.CodeType, err, "Type listed in @type [%v] is not found", e.Type).WithPosition(e.Line, e.Col)
				}
				return reflect.Value{}, false, nil
			}
			t = explicit
		case declared == nil:
			return reflect.Value{}, false, nil
		}
	}
	if t.Kind() == reflect.Interface {
		return reflect.Value{}, false, nil
	}
	reader, ok := table.Reader(t)
	if !ok {
		return reflect.Value{}, false, nil
	}
	result, err := reader.Read(value, t, r.config.Codec)
	if err != nil {
		ret := errs.As(errs.CodeConversion, err)
		if isElement {
			ret = ret.WithPosition(e.Line, e.Col)
		}
		return reflect.Value{}, false, ret
	}
	return result, true, nil
}

// assign resolves rhs into slot, declared may narrow an interface slot to a default type
func (r *Objects) assign(stack *Stack, owner *element.Element, at location, slot reflect.Value, declared reflect.Type, rhs interface{}) error {
	switch actual := rhs.(type) {
	case nil:
		slot.Set(reflect.Zero(slot.Type()))
		return nil
	case *element.Element:
		return r.assignElement(stack, owner, at, slot, declared, actual)
	case []interface{}:
		return r.assignArray(stack, slot, declared, actual, owner)
	}
	if element.IsEmpty(rhs) {
		e := element.New()
		e.Line, e.Col = owner.Line, owner.Col
		value, err := r.createInstance(declared, e, slot)
		if err != nil {
			return err
		}
		return r.place(slot, value)
	}
	return r.assignScalar(slot, declared, rhs, owner)
}

func (r *Objects) assignElement(stack *Stack, owner *element.Element, at location, slot reflect.Value, declared reflect.Type, e *element.Element) error {
	if e.IsReference() {
		id := e.RefID()
		target, err := r.referenced(id, e)
		if err != nil {
			return err
		}
		if target.Target.IsValid() {
			return set(slot, target.Target, e)
		}
		r.unresolved = append(r.unresolved, &unresolved{holder: owner, at: at, slot: slot, id: id})
		return nil
	}
	value, ok, err := r.ReadIfMatching(e, declared, stack)
	if err != nil {
		return err
	}
	if ok {
		e.Target = value
		return set(slot, value, e)
	}
	if value, err = r.createInstance(declared, e, slot); err != nil {
		return err
	}
	if err = r.place(slot, value); err != nil {
		return err
	}
	if !meta.IsLogicalPrimitive(value.Type()) {
		stack.Push(e)
	}
	return nil
}

func (r *Objects) assignArray(stack *Stack, slot reflect.Value, declared reflect.Type, items []interface{}, owner *element.Element) error {
	t := declared
	if t == nil || t.Kind() == reflect.Interface {
		t = interfaceSliceType
	}
	if shape := indirectType(t); !isContainer(shape) && !meta.IsCollection(t) {
		return errs.New(errs.CodeShape, "cannot read array into %v", t).WithPosition(owner.Line, owner.Col)
	}
	e := synthetic(items)
	e.Line, e.Col = owner.Line, owner.Col
	value, err := r.createInstance(t, e, slot)
	if err != nil {
		return err
	}
	if err = r.place(slot, value); err != nil {
		return err
	}
	stack.Push(e)
	return nil
}

func (r *Objects) assignScalar(slot reflect.Value, declared reflect.Type, rhs interface{}, owner *element.Element) error {
	t := declared
	if t == nil {
		t = slot.Type()
	}
	value, ok, err := r.ReadIfMatching(rhs, t, nil)
	if err != nil {
		return errs.As(errs.CodeConversion, err).WithPosition(owner.Line, owner.Col)
	}
	if ok {
		return set(slot, value, owner)
	}
	text, isText := rhs.(string)
	switch {
	case t.Kind() == reflect.Interface:
		return set(slot, reflect.ValueOf(rhs), owner)
	case isText && isRunes(t):
		return set(slot, reflect.ValueOf([]rune(text)).Convert(t), owner)
	case isText && isBytes(t):
		return set(slot, reflect.ValueOf([]byte(text)).Convert(t), owner)
	case isText && strings.TrimSpace(text) == "" && t.Kind() != reflect.String:
		slot.Set(reflect.Zero(slot.Type()))
		return nil
	}
	if value, err = r.convert(t, rhs, owner); err != nil {
		return err
	}
	return set(slot, value, owner)
}

// place stores value into slot, fixed arrays held by interfaces are stored once complete
func (r *Objects) place(slot reflect.Value, value reflect.Value) error {
	if value.Kind() == reflect.Array && slot.Kind() == reflect.Interface {
		r.pending = append(r.pending, func() error {
			return set(slot, value, nil)
		})
		return nil
	}
	return set(slot, value, nil)
}

// TraverseFields assigns each entry of e to the matching member of its target
func (r *Objects) TraverseFields(stack *Stack, e *element.Element) error {
	target := e.Target
	structType := meta.StructOf(target.Type())
	if structType == nil || (target.Kind() == reflect.Ptr && target.IsNil()) {
		return nil
	}
	members, err := meta.MembersOf(structType)
	if err != nil {
		return err
	}
	holder := meta.Holder(target)
	for _, key := range e.Keys() {
		if isMetaKey(key) {
			continue
		}
		rhs := e.Get(key)
		member := members.Lookup(key)
		if member == nil {
			if r.config.MissingField != nil {
				if err = r.handleMissing(stack, e, key, rhs); err != nil {
					return err
				}
			}
			continue
		}
		declared := member.Type
		if declared.Kind() == reflect.Interface && member.DefaultType != "" && isUntyped(rhs) {
			if declared, err = r.lookup(member.DefaultType); err != nil {
				return errs.As(errs.CodeType, err).WithPosition(e.Line, e.Col)
			}
			if declared.Kind() == reflect.Struct {
				declared = reflect.PtrTo(declared)
			}
		}
		if text, ok := rhs.(string); ok && member.TimeLayout != "" && declared == meta.TimeType && text != "" {
			if err = r.assignLayout(member.Value(holder), member.TimeLayout, text, e); err != nil {
				return err
			}
			continue
		}
		if err = r.assign(stack, e, fieldAt(member.Name), member.Value(holder), declared, rhs); err != nil {
			return errs.As(errs.CodeDecode, err).WithPosition(e.Line, e.Col)
		}
	}
	return nil
}

// assignLayout parses a time member declared with a format tag layout
func (r *Objects) assignLayout(slot reflect.Value, layout, text string, at *element.Element) error {
	value, err := time.ParseInLocation(layout, text, time.Local)
	if err != nil {
		return errs.Wrap(errs.CodeConversion, err, "Unable to parse %q with layout %q", text, layout).WithPosition(at.Line, at.Col)
	}
	slot.Set(reflect.ValueOf(value))
	return nil
}

func (r *Objects) handleMissing(stack *Stack, e *element.Element, key string, rhs interface{}) error {
	var value reflect.Value
	if actual, ok := rhs.(*element.Element); ok {
		switch {
		case actual.IsReference():
			target, err := r.referenced(actual.RefID(), actual)
			if err != nil {
				return err
			}
			value = target.Target
		default:
			read, ok, err := r.ReadIfMatching(actual, nil, stack)
			if err != nil {
				return err
			}
			if ok {
				value = read
				break
			}
			if actual.Type == "" {
				break
			}
			if value, err = r.CreateInstance(nil, actual); err != nil {
				return err
			}
			if !meta.IsLogicalPrimitive(value.Type()) {
				stack.Push(actual)
			}
		}
	} else if _, isArray := rhs.([]interface{}); !isArray && rhs != nil && !element.IsEmpty(rhs) {
		value = reflect.ValueOf(rhs)
	}
	r.logger.Debug("missing field", "type", e.Target.Type().String(), "field", key)
	r.missing = append(r.missing, &missingField{target: e.Target, name: key, value: value})
	return nil
}

// TraverseArray fills slice or fixed array items
func (r *Objects) TraverseArray(stack *Stack, e *element.Element) error {
	items := e.Items()
	if len(items) == 0 {
		return nil
	}
	container := indirect(e.Target)
	component := container.Type().Elem()
	if component == runeType {
		if _, ok := items[0].(string); ok {
			e.Delete(element.KeyItems)
			return nil
		}
	}
	if len(items) > container.Len() {
		return errs.New(errs.CodeShape, "%v of length %d cannot hold %d items", container.Type(), container.Len(), len(items)).WithPosition(e.Line, e.Col)
	}
	if component.Kind() == reflect.Uint8 && !meta.IsEnum(component) {
		for i, item := range items {
			value, err := r.convert(component, item, e)
			if err != nil {
				return err
			}
			container.Index(i).Set(value)
		}
		e.Delete(element.KeyItems)
		return nil
	}
	for i, item := range items {
		if err := r.assign(stack, e, indexAt(i), container.Index(i), component, item); err != nil {
			return err
		}
	}
	e.Delete(element.KeyItems)
	return nil
}

// TraverseCollection resolves list and set items into a staging slice filled into the target during cleanup
func (r *Objects) TraverseCollection(stack *Stack, e *element.Element) error {
	items := e.Items()
	target := e.Target
	component := meta.InterfaceType
	if container := indirect(target); container.Kind() == reflect.Map {
		component = container.Type().Key()
	}
	staging := reflect.MakeSlice(reflect.SliceOf(component), len(items), len(items))
	array := synthetic(items)
	array.Line, array.Col = e.Line, e.Col
	array.Target = staging
	stack.Push(array)
	r.puts = append(r.puts, &deferredPut{e: e, container: target, keys: staging})
	e.Delete(element.KeyItems)
	return nil
}

// TraverseMap resolves keys and values into staging slices, insertion happens during cleanup
func (r *Objects) TraverseMap(stack *Stack, e *element.Element) error {
	normalize(e)
	keys, items, err := mapEntries(e)
	if err != nil || keys == nil {
		return err
	}
	container := indirect(e.Target)
	mapType := container.Type()
	keySlice := reflect.MakeSlice(reflect.SliceOf(mapType.Key()), len(keys), len(keys))
	valueSlice := reflect.MakeSlice(reflect.SliceOf(mapType.Elem()), len(items), len(items))
	for _, part := range []struct {
		items  []interface{}
		target reflect.Value
	}{{items, valueSlice}, {keys, keySlice}} {
		array := synthetic(part.items)
		array.Line, array.Col = e.Line, e.Col
		array.Target = part.target
		stack.Push(array)
	}
	r.puts = append(r.puts, &deferredPut{e: e, container: container, keys: keySlice, values: valueSlice})
	return nil
}

// Cleanup patches forward references, stores pending values, fills maps and
// collections, then reports missing fields
func (r *Objects) Cleanup() error {
	defer r.reset()
	for _, ref := range r.unresolved {
		target := r.index[ref.id]
		if !target.Target.IsValid() {
			r.logger.Debug("unmaterialized reference", "id", ref.id, "at", ref.at.String())
			continue
		}
		if err := set(ref.slot, target.Target, target); err != nil {
			return errs.Wrap(errs.CodeReference, err, "Error setting '%v' while resolving @ref: %d", ref.at, ref.id)
		}
	}
	for i := len(r.pending) - 1; i >= 0; i-- {
		if err := r.pending[i](); err != nil {
			return err
		}
	}
	for _, put := range r.puts {
		if err := r.fill(put); err != nil {
			return err
		}
	}
	r.flushMissing()
	return nil
}

func (r *Objects) fill(put *deferredPut) error {
	container := indirect(put.container)
	size := put.keys.Len()
	if aList, ok := put.container.Interface().(*list.List); ok {
		for i := 0; i < size; i++ {
			aList.PushBack(put.keys.Index(i).Interface())
		}
		return nil
	}
	if container.Kind() != reflect.Map {
		return errs.New(errs.CodeType, "expected map or collection, but had: %v", container.Type())
	}
	isSet := meta.IsSet(container.Type())
	for i := 0; i < size; i++ {
		key := put.keys.Index(i)
		if key.Kind() == reflect.Interface && !key.IsNil() && !key.Elem().Comparable() {
			return errs.New(errs.CodeType, "unhashable map key of type %v", key.Elem().Type()).WithPosition(put.e.Line, put.e.Col)
		}
		if isSet {
			container.SetMapIndex(key, reflect.Zero(container.Type().Elem()))
			continue
		}
		container.SetMapIndex(key, put.values.Index(i))
	}
	put.e.Delete(element.KeyKeys)
	put.e.Delete(element.KeyItems)
	return nil
}

// set stores value into slot adapting one pointer level, a value already living in slot is left as is
func set(slot reflect.Value, value reflect.Value, at *element.Element) error {
	if value.IsValid() && value.Kind() == reflect.Ptr && slot.CanAddr() && value.Type().Elem() == slot.Type() && value.Pointer() == slot.Addr().Pointer() {
		return nil
	}
	fitted := codec.Fit(value, slot.Type())
	if !fitted.Type().AssignableTo(slot.Type()) {
		ret := errs.New(errs.CodeType, "Cannot assign %v to %v", fitted.Type(), slot.Type())
		if at != nil {
			ret = ret.WithPosition(at.Line, at.Col)
		}
		return ret
	}
	slot.Set(fitted)
	return nil
}

// indirect dereferences pointers to containers
func indirect(value reflect.Value) reflect.Value {
	for value.Kind() == reflect.Ptr && !value.IsNil() && isContainer(value.Type().Elem()) {
		value = value.Elem()
	}
	return value
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr && isContainer(t.Elem()) {
		t = t.Elem()
	}
	return t
}

func isContainer(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func isRunes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem() == runeType
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isUntyped(value interface{}) bool {
	switch actual := value.(type) {
	case *element.Element:
		return actual.Type == "" && !actual.IsReference()
	case []interface{}:
		return true
	}
	return element.IsEmpty(value)
}

// runesOf decodes a []rune written as a single string, numeric items are filled by TraverseArray
func runesOf(items []interface{}, at *element.Element) ([]rune, error) {
	if len(items) == 0 {
		return []rune{}, nil
	}
	text, ok := items[0].(string)
	if !ok {
		return make([]rune, len(items)), nil
	}
	if len(items) > 1 {
		return nil, errs.New(errs.CodeShape, "[]char should only have one String in the [], found %d", len(items)).WithPosition(at.Line, at.Col)
	}
	return []rune(text), nil
}
