package writer

import (
	"container/list"
	"encoding"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
	"github.com/viant/jsonio/visitor"
)

var (
	naturalTypes = map[reflect.Type]bool{
		meta.StringType:                              true,
		reflect.TypeOf(false):                        true,
		reflect.TypeOf(int64(0)):                     true,
		reflect.TypeOf(float64(0)):                   true,
		reflect.TypeOf([]interface{}{}):              true,
		reflect.TypeOf(map[string]interface{}{}):     true,
		reflect.TypeOf(map[interface{}]interface{}{}): true,
		elementType:                                  true,
	}
	null = []byte("null")
)

// rootType returns the declared type of the root: arrays keep their plain form, anything else
// is written as if held by an interface
func (s *session) rootType(root reflect.Value) reflect.Type {
	v := indirectInterface(root)
	if v.IsValid() && s.options.ShowType != ShowTypeAlways {
		if kind := v.Kind(); kind == reflect.Slice || kind == reflect.Array {
			return v.Type()
		}
	}
	return meta.InterfaceType
}

func (s *session) customWriter(t reflect.Type) (codec.Writer, bool) {
	if t == elementType {
		return nil, false
	}
	return s.table.Writer(t)
}

// typeNameFor returns the @type to emit for a value of type t held by a slot of type declared
func (s *session) typeNameFor(t, declared reflect.Type) string {
	switch s.options.ShowType {
	case ShowTypeNever:
		return ""
	case ShowTypeAlways:
		if isObjectLike(t) {
			return s.typeName(t)
		}
	}
	if declared != nil && declared.Kind() != reflect.Interface {
		return ""
	}
	if naturalTypes[t] {
		return ""
	}
	return s.typeName(t)
}

func isObjectLike(t reflect.Type) bool {
	if t == meta.ListType {
		return true
	}
	if t == elementType || meta.IsLogicalPrimitive(t) || meta.IsBuiltin(t) {
		return false
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return true
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	}
	return false
}

func (s *session) typeName(t reflect.Type) string {
	name := s.options.Registry.Name(t)
	if mapped, ok := s.options.TypeNames[name]; ok {
		return mapped
	}
	return name
}

func (s *session) metaKey(key string) string {
	return element.Key(key, s.options.ShortMetaKeys)
}

// appendValue appends v held by a slot of type declared
func (s *session) appendValue(dst []byte, v reflect.Value, declared reflect.Type) ([]byte, error) {
	v = indirectInterface(v)
	if !v.IsValid() {
		return append(dst, null...), nil
	}
	t := v.Type()
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice:
		if v.IsNil() {
			return append(dst, null...), nil
		}
	}
	if meta.IsUnsupported(t) {
		return nil, errs.New(errs.CodeEncode, "unsupported type: %v", t)
	}
	for t.Kind() == reflect.Ptr && meta.IsLogicalPrimitive(t.Elem()) {
		if v.IsNil() {
			return append(dst, null...), nil
		}
		v = v.Elem()
		t = v.Type()
	}
	id := 0
	if key, ok := identityOf(v); ok {
		if s.written[key] {
			return s.appendRef(dst, s.visited[key]), nil
		}
		s.written[key] = true
		if s.visited[key] > 0 {
			s.emitted++
			s.visited[key] = s.emitted
		}
		id = s.visited[key]
	}
	typeName := s.typeNameFor(t, declared)
	if writer, ok := s.customWriter(t); ok {
		return s.appendCustom(dst, v, writer, id, typeName)
	}
	switch {
	case t == elementType:
		return s.appendElement(dst, v.Interface().(*element.Element), id)
	case t == meta.ListType:
		return s.appendList(dst, v.Interface().(*list.List), id, typeName)
	case meta.IsLogicalPrimitive(t):
		quoteLongs := s.options.LongsAsStrings && declared != nil && declared.Kind() != reflect.Interface
		return s.appendScalar(dst, v, typeName, quoteLongs)
	}
	switch t.Kind() {
	case reflect.Ptr:
		if t.Elem().Kind() == reflect.Struct {
			return s.appendObject(dst, v, id, typeName)
		}
		if declared != nil && declared.Kind() == reflect.Ptr {
			declared = declared.Elem()
		}
		return s.appendValue(dst, v.Elem(), declared)
	case reflect.Struct:
		return s.appendObject(dst, v, 0, typeName)
	case reflect.Map:
		if meta.IsSet(t) {
			return s.appendItems(dst, visitor.SortedKeys(v), t.Key(), id, typeName)
		}
		return s.appendMap(dst, v, id, typeName, declared)
	case reflect.Slice, reflect.Array:
		return s.appendArray(dst, v, id, typeName)
	}
	return nil, errs.New(errs.CodeEncode, "unsupported type: %v", t)
}

func (s *session) appendRef(dst []byte, id int) []byte {
	dst = append(dst, '{')
	dst = codec.AppendKey(dst, s.metaKey(element.KeyRef))
	dst = strconv.AppendInt(dst, int64(id), 10)
	return append(dst, '}')
}

// appendCustom writes the compact form when neither identity nor type is needed, the verbose body otherwise
func (s *session) appendCustom(dst []byte, v reflect.Value, writer codec.Writer, id int, typeName string) ([]byte, error) {
	if id == 0 && typeName == "" {
		if primitive, ok := writer.(codec.PrimitiveWriter); ok {
			result, err := primitive.AppendPrimitive(dst, v, s.codec)
			if err != nil {
				return nil, errs.As(errs.CodeEncode, err)
			}
			return result, nil
		}
	}
	dst = s.open(dst, '{')
	count := 0
	dst = s.header(dst, &count, id, typeName)
	body, err := writer.Append(nil, v, s.codec)
	if err != nil {
		return nil, errs.As(errs.CodeEncode, err)
	}
	if len(body) > 0 {
		dst = s.next(dst, count == 0)
		count++
		dst = append(dst, body...)
	}
	return s.close(dst, '}', count), nil
}

func (s *session) appendScalar(dst []byte, v reflect.Value, typeName string, quoteLongs bool) ([]byte, error) {
	t := v.Type()
	if meta.IsEnum(t) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, errs.Wrap(errs.CodeEncode, err, "failed to marshal %v", t)
		}
		if typeName == "" || s.options.EnumPublicOnly {
			return codec.AppendQuoted(dst, string(text)), nil
		}
		dst = s.open(dst, '{')
		count := 0
		dst = s.header(dst, &count, 0, typeName)
		dst = s.key(dst, &count, "name")
		dst = codec.AppendQuoted(dst, string(text))
		return s.close(dst, '}', count), nil
	}
	if typeName == "" {
		return appendPrimitive(dst, v, quoteLongs)
	}
	dst = s.open(dst, '{')
	count := 0
	dst = s.header(dst, &count, 0, typeName)
	dst = s.key(dst, &count, "value")
	dst, err := appendPrimitive(dst, v, false)
	if err != nil {
		return nil, err
	}
	return s.close(dst, '}', count), nil
}

func appendPrimitive(dst []byte, v reflect.Value, quoteLongs bool) ([]byte, error) {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.AppendBool(dst, v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return strconv.AppendInt(dst, v.Int(), 10), nil
	case reflect.Int64:
		if quoteLongs {
			return codec.AppendQuoted(dst, strconv.FormatInt(v.Int(), 10)), nil
		}
		return strconv.AppendInt(dst, v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uintptr:
		return strconv.AppendUint(dst, v.Uint(), 10), nil
	case reflect.Uint64:
		if quoteLongs {
			return codec.AppendQuoted(dst, strconv.FormatUint(v.Uint(), 10)), nil
		}
		return strconv.AppendUint(dst, v.Uint(), 10), nil
	case reflect.Float32:
		return appendFloat(dst, v.Float(), 32), nil
	case reflect.Float64:
		return appendFloat(dst, v.Float(), 64), nil
	case reflect.String:
		return codec.AppendQuoted(dst, v.String()), nil
	}
	return nil, errs.New(errs.CodeEncode, "unsupported type: %v", v.Type())
}

// appendFloat writes NaN and infinities as null, integral values keep a fraction so they read back as floats
func appendFloat(dst []byte, f float64, bits int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, null...)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, bits)
	if !strings.ContainsAny(string(dst[start:]), ".eE") {
		dst = append(dst, '.', '0')
	}
	return dst
}

func (s *session) appendObject(dst []byte, v reflect.Value, id int, typeName string) ([]byte, error) {
	members, err := s.membersOf(v.Type())
	if err != nil {
		return nil, err
	}
	holder := meta.Holder(v)
	dst = s.open(dst, '{')
	count := 0
	dst = s.header(dst, &count, id, typeName)
	for _, member := range members {
		value, ok := member.Get(holder)
		if !ok || (s.options.SkipNullFields && isNull(value)) {
			continue
		}
		dst = s.key(dst, &count, member.Name)
		if dst, err = s.appendMember(dst, member, value); err != nil {
			return nil, err
		}
	}
	return s.close(dst, '}', count), nil
}

func (s *session) appendMember(dst []byte, member *meta.Member, value reflect.Value) ([]byte, error) {
	if member.TimeLayout != "" {
		date := value
		if date.Kind() == reflect.Ptr && !date.IsNil() {
			date = date.Elem()
		}
		if date.Type() == meta.TimeType {
			return codec.AppendQuoted(dst, date.Interface().(time.Time).Format(member.TimeLayout)), nil
		}
	}
	return s.appendValue(dst, value, member.Type)
}

func isNull(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (s *session) appendArray(dst []byte, v reflect.Value, id int, typeName string) ([]byte, error) {
	t := v.Type()
	wrapped := id > 0 || typeName != ""
	count := 0
	if wrapped {
		dst = s.open(dst, '{')
		dst = s.header(dst, &count, id, typeName)
		dst = s.key(dst, &count, s.metaKey(element.KeyItems))
	}
	if text, ok := runeText(v); ok {
		dst = append(dst, '[')
		dst = codec.AppendQuoted(dst, text)
		dst = append(dst, ']')
	} else {
		n := v.Len()
		dst = s.open(dst, '[')
		var err error
		for i := 0; i < n; i++ {
			dst = s.next(dst, i == 0)
			if dst, err = s.appendValue(dst, v.Index(i), t.Elem()); err != nil {
				return nil, err
			}
		}
		dst = s.close(dst, ']', n)
	}
	if wrapped {
		dst = s.close(dst, '}', count)
	}
	return dst, nil
}

// runeText returns the text of a non empty rune slice holding only valid runes
func runeText(v reflect.Value) (string, bool) {
	t := v.Type()
	if t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.Int32 || meta.IsEnum(t.Elem()) || v.Len() == 0 {
		return "", false
	}
	runes := make([]rune, v.Len())
	for i := range runes {
		r := rune(v.Index(i).Int())
		if !utf8.ValidRune(r) {
			return "", false
		}
		runes[i] = r
	}
	return string(runes), true
}

// appendItems writes set or list items, wrapped in an object when identity or type is emitted
func (s *session) appendItems(dst []byte, items []reflect.Value, itemType reflect.Type, id int, typeName string) ([]byte, error) {
	wrapped := id > 0 || typeName != ""
	count := 0
	if wrapped {
		dst = s.open(dst, '{')
		dst = s.header(dst, &count, id, typeName)
		dst = s.key(dst, &count, s.metaKey(element.KeyItems))
	}
	dst = s.open(dst, '[')
	var err error
	for i, item := range items {
		dst = s.next(dst, i == 0)
		if dst, err = s.appendValue(dst, item, itemType); err != nil {
			return nil, err
		}
	}
	dst = s.close(dst, ']', len(items))
	if wrapped {
		dst = s.close(dst, '}', count)
	}
	return dst, nil
}

func (s *session) appendList(dst []byte, l *list.List, id int, typeName string) ([]byte, error) {
	items := make([]reflect.Value, 0, l.Len())
	for item := l.Front(); item != nil; item = item.Next() {
		items = append(items, reflect.ValueOf(item.Value))
	}
	return s.appendItems(dst, items, meta.InterfaceType, id, typeName)
}

// appendMap writes text keyed maps as objects, other maps as parallel @keys and @items arrays
func (s *session) appendMap(dst []byte, v reflect.Value, id int, typeName string, declared reflect.Type) ([]byte, error) {
	t := v.Type()
	keys := visitor.SortedKeys(v)
	texts, isText, err := keyTexts(t, keys)
	if err != nil {
		return nil, err
	}
	if isText && typeName == "" && t.Key().Kind() == reflect.Interface && s.options.ShowType != ShowTypeNever &&
		(declared == nil || declared.Kind() == reflect.Interface) {
		// a plain object reads back as map[string]interface{}
		typeName = s.typeName(t)
	}
	dst = s.open(dst, '{')
	count := 0
	dst = s.header(dst, &count, id, typeName)
	if isText {
		for i, key := range keys {
			dst = s.key(dst, &count, texts[i])
			if dst, err = s.appendValue(dst, v.MapIndex(key), t.Elem()); err != nil {
				return nil, err
			}
		}
		return s.close(dst, '}', count), nil
	}
	if len(keys) > 0 {
		values := make([]reflect.Value, len(keys))
		for i, key := range keys {
			values[i] = v.MapIndex(key)
		}
		for _, part := range []struct {
			key      string
			items    []reflect.Value
			itemType reflect.Type
		}{{element.KeyKeys, keys, t.Key()}, {element.KeyItems, values, t.Elem()}} {
			dst = s.key(dst, &count, s.metaKey(part.key))
			dst = s.open(dst, '[')
			for i, item := range part.items {
				dst = s.next(dst, i == 0)
				if dst, err = s.appendValue(dst, item, part.itemType); err != nil {
					return nil, err
				}
			}
			dst = s.close(dst, ']', len(part.items))
		}
	}
	return s.close(dst, '}', count), nil
}

// keyTexts returns map keys as text when every key, or its dynamic value for interface keys,
// is a string and none starts with @
func keyTexts(t reflect.Type, keys []reflect.Value) ([]string, bool, error) {
	switch t.Key().Kind() {
	case reflect.String, reflect.Interface:
	default:
		return nil, false, nil
	}
	texts := make([]string, len(keys))
	for i, key := range keys {
		if key.Kind() == reflect.Interface {
			if key.IsNil() || key.Elem().Type() != meta.StringType {
				return nil, false, nil
			}
			key = key.Elem()
		}
		text := key.String()
		if meta.IsEnum(key.Type()) {
			data, err := key.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return nil, false, errs.Wrap(errs.CodeEncode, err, "failed to marshal map key %v", key)
			}
			text = string(data)
		}
		if strings.HasPrefix(text, "@") {
			return nil, false, nil
		}
		texts[i] = text
	}
	return texts, true, nil
}

func (s *session) appendElement(dst []byte, e *element.Element, id int) ([]byte, error) {
	typeName := ""
	if s.options.ShowType != ShowTypeNever {
		typeName = e.Type
	}
	dst = s.open(dst, '{')
	count := 0
	dst = s.header(dst, &count, id, typeName)
	var err error
	e.Range(func(key string, value interface{}) bool {
		dst = s.key(dst, &count, s.metaKey(key))
		dst, err = s.appendValue(dst, reflect.ValueOf(value), meta.InterfaceType)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return s.close(dst, '}', count), nil
}

func (s *session) header(dst []byte, count *int, id int, typeName string) []byte {
	if id > 0 {
		dst = s.key(dst, count, s.metaKey(element.KeyID))
		dst = strconv.AppendInt(dst, int64(id), 10)
	}
	if typeName != "" {
		dst = s.key(dst, count, s.metaKey(element.KeyType))
		dst = codec.AppendQuoted(dst, typeName)
	}
	return dst
}

func (s *session) key(dst []byte, count *int, name string) []byte {
	dst = s.next(dst, *count == 0)
	*count++
	dst = codec.AppendKey(dst, name)
	if s.options.PrettyPrint {
		dst = append(dst, ' ')
	}
	return dst
}

func (s *session) open(dst []byte, c byte) []byte {
	s.level++
	return append(dst, c)
}

func (s *session) close(dst []byte, c byte, count int) []byte {
	s.level--
	if count > 0 {
		dst = s.indent(dst)
	}
	return append(dst, c)
}

func (s *session) next(dst []byte, first bool) []byte {
	if !first {
		dst = append(dst, ',')
	}
	return s.indent(dst)
}

func (s *session) indent(dst []byte) []byte {
	if !s.options.PrettyPrint {
		return dst
	}
	dst = append(dst, '\n')
	for i := 0; i < s.level; i++ {
		dst = append(dst, "  "...)
	}
	return dst
}
