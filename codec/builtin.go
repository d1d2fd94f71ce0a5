package codec

import (
	"bytes"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
	"github.com/viant/jsonio/scalar"
	"golang.org/x/text/language"
)

// Builtins returns built-in codec entries in dispatch order
func Builtins() []*Entry {
	return []*Entry{
		{Type: meta.StringType, Reader: ReaderFunc(readString), Writer: stringWriter{}},
		{Type: meta.TimeType, Reader: ReaderFunc(readDate), Writer: dateWriter{}},
		{Type: meta.BigIntType, Reader: ReaderFunc(readBigInt), Writer: bigIntWriter{}},
		{Type: meta.BigFloatType, Reader: ReaderFunc(readBigFloat), Writer: bigFloatWriter{}},
		{Type: meta.AtomicBoolType, Reader: ReaderFunc(readAtomic), Writer: atomicWriter{}},
		{Type: meta.AtomicInt32Type, Reader: ReaderFunc(readAtomic), Writer: atomicWriter{}},
		{Type: meta.AtomicInt64Type, Reader: ReaderFunc(readAtomic), Writer: atomicWriter{}},
		{Type: meta.BuilderType, Reader: ReaderFunc(readBuffer), Writer: bufferWriter{}},
		{Type: meta.BufferType, Reader: ReaderFunc(readBuffer), Writer: bufferWriter{}},
		{Type: meta.ClassType, Reader: ReaderFunc(readClass), Writer: classWriter{}},
		{Type: meta.LanguageTagType, Reader: ReaderFunc(readLanguage), Writer: languageWriter{}},
		{Type: meta.LocationType, Reader: ReaderFunc(readLocation), Writer: locationWriter{}},
		{Type: meta.DurationType, Reader: ReaderFunc(readDuration), Writer: durationWriter{}},
	}
}

// valueOf returns the compact value or the named field of a verbose element
func valueOf(value interface{}, t reflect.Type, key string) (interface{}, error) {
	e, ok := value.(*element.Element)
	if !ok {
		return value, nil
	}
	if v, ok := e.Lookup(key); ok {
		return v, nil
	}
	return nil, errs.New(errs.CodeShape, "%v missing '%v' field", t, key).WithPosition(e.Line, e.Col)
}

func readString(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	result, err := options.converter().Convert(meta.StringType, v)
	if err != nil {
		return reflect.Value{}, err
	}
	return Fit(result, t), nil
}

type stringWriter struct{}

func (stringWriter) Append(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return AppendQuoted(dst, value.String()), nil
}

func (stringWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	return AppendQuoted(dst, value.String()), nil
}

func readDate(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	date, err := dateOf(value, t, options)
	if err != nil {
		return reflect.Value{}, err
	}
	return Fit(reflect.ValueOf(date), t), nil
}

// dateOf reads millis, date text, {"value"}, {"time","nanos"} or {"time","zone"}
func dateOf(value interface{}, t reflect.Type, options *Options) (time.Time, error) {
	switch actual := value.(type) {
	case nil:
		return time.Time{}, nil
	case *element.Element:
		if v, ok := actual.Lookup("value"); ok {
			return dateOf(v, t, options)
		}
		v, ok := actual.Lookup("time")
		if !ok {
			return time.Time{}, errs.New(errs.CodeShape, "%v missing 'value' field", t).WithPosition(actual.Line, actual.Col)
		}
		date, err := dateOf(v, t, options)
		if err != nil {
			return date, err
		}
		if nanos, ok := actual.Lookup("nanos"); ok {
			n, err := options.converter().Convert(reflect.TypeOf(int64(0)), nanos)
			if err != nil {
				return date, err
			}
			date = time.Unix(date.Unix(), n.Int()).In(date.Location())
		}
		if zone, ok := actual.Lookup("zone"); ok {
			name, _ := zone.(string)
			loc, err := time.LoadLocation(name)
			if err != nil {
				return date, errs.Wrap(errs.CodeConversion, err, "invalid zone: %v", zone).WithPosition(actual.Line, actual.Col)
			}
			date = date.In(loc)
		}
		return date, nil
	case string:
		text := strings.TrimSpace(actual)
		if text == "" {
			return time.Time{}, nil
		}
		if layout := options.dateLayout(); layout != "" {
			if date, err := time.Parse(layout, text); err == nil {
				return date, nil
			}
		}
		if date, err := time.Parse(time.RFC3339Nano, text); err == nil {
			return date, nil
		}
	}
	result, err := options.converter().Convert(meta.TimeType, value)
	if err != nil {
		return time.Time{}, err
	}
	return result.Interface().(time.Time), nil
}

type dateWriter struct{}

func (dateWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	date := Fit(value, meta.TimeType).Interface().(time.Time)
	if zone := zoneName(date.Location()); zone != "" {
		dst = AppendKey(dst, "time")
		dst = AppendQuoted(dst, formatDate(date, options))
		dst = append(dst, ',')
		dst = AppendKey(dst, "zone")
		return AppendQuoted(dst, zone), nil
	}
	dst = AppendKey(dst, "value")
	return AppendQuoted(dst, formatDate(date, options)), nil
}

func (dateWriter) AppendPrimitive(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	date := Fit(value, meta.TimeType).Interface().(time.Time)
	return AppendQuoted(dst, formatDate(date, options)), nil
}

func formatDate(date time.Time, options *Options) string {
	if layout := options.dateLayout(); layout != "" {
		return date.Format(layout)
	}
	return date.Format(time.RFC3339Nano)
}

// zoneName returns a loadable location name other than UTC, empty otherwise
func zoneName(loc *time.Location) string {
	name := loc.String()
	if name == "" || name == "UTC" {
		return ""
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}

func readBigInt(value interface{}, t reflect.Type, _ *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	result, err := scalar.BigIntFrom(v)
	if err != nil {
		return reflect.Value{}, err
	}
	if result == nil {
		return reflect.Zero(t), nil
	}
	return Fit(reflect.ValueOf(result), t), nil
}

type bigIntWriter struct{}

func (w bigIntWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return w.AppendPrimitive(dst, value, options)
}

func (bigIntWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	v := Fit(value, meta.BigIntType).Interface().(*big.Int)
	if v == nil {
		return append(dst, "null"...), nil
	}
	return AppendQuoted(dst, v.String()), nil
}

func readBigFloat(value interface{}, t reflect.Type, _ *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	result, err := scalar.BigFloatFrom(v)
	if err != nil {
		return reflect.Value{}, err
	}
	if result == nil {
		return reflect.Zero(t), nil
	}
	return Fit(reflect.ValueOf(result), t), nil
}

type bigFloatWriter struct{}

func (w bigFloatWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return w.AppendPrimitive(dst, value, options)
}

func (bigFloatWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	v := Fit(value, meta.BigFloatType).Interface().(*big.Float)
	if v == nil {
		return append(dst, "null"...), nil
	}
	return AppendQuoted(dst, scalar.FormatBigFloat(v)), nil
}

func readAtomic(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	base := t
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	ptr := reflect.New(base)
	converter := options.converter()
	switch holder := ptr.Interface().(type) {
	case *atomic.Bool:
		b, err := converter.Convert(reflect.TypeOf(false), v)
		if err != nil {
			return reflect.Value{}, err
		}
		holder.Store(b.Bool())
	case *atomic.Int32:
		i, err := converter.Convert(reflect.TypeOf(int32(0)), v)
		if err != nil {
			return reflect.Value{}, err
		}
		holder.Store(int32(i.Int()))
	case *atomic.Int64:
		i, err := converter.Convert(reflect.TypeOf(int64(0)), v)
		if err != nil {
			return reflect.Value{}, err
		}
		holder.Store(i.Int())
	default:
		return reflect.Value{}, errs.New(errs.CodeConversion, "unsupported atomic type: %v", t)
	}
	return Fit(ptr, t), nil
}

type atomicWriter struct{}

func (w atomicWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return w.AppendPrimitive(dst, value, options)
}

func (atomicWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	ptr := addressOf(value)
	switch holder := ptr.Interface().(type) {
	case *atomic.Bool:
		return strconv.AppendBool(dst, holder.Load()), nil
	case *atomic.Int32:
		return strconv.AppendInt(dst, int64(holder.Load()), 10), nil
	case *atomic.Int64:
		return strconv.AppendInt(dst, holder.Load(), 10), nil
	}
	return dst, errs.New(errs.CodeEncode, "unsupported atomic type: %v", value.Type())
}

// addressOf returns a pointer to value, copying an unaddressable value
func addressOf(value reflect.Value) reflect.Value {
	if value.Kind() == reflect.Ptr {
		return value
	}
	if value.CanAddr() {
		return value.Addr()
	}
	ptr := reflect.New(value.Type())
	ptr.Elem().Set(value)
	return ptr
}

func readBuffer(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	text, err := options.converter().Convert(meta.StringType, v)
	if err != nil {
		return reflect.Value{}, err
	}
	base := t
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	ptr := reflect.New(base)
	switch holder := ptr.Interface().(type) {
	case *strings.Builder:
		holder.WriteString(text.String())
	case *bytes.Buffer:
		holder.WriteString(text.String())
	}
	return Fit(ptr, t), nil
}

type bufferWriter struct{}

func (w bufferWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return w.AppendPrimitive(dst, value, options)
}

func (bufferWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	text := ""
	switch holder := addressOf(value).Interface().(type) {
	case *strings.Builder:
		if holder != nil {
			text = holder.String()
		}
	case *bytes.Buffer:
		if holder != nil {
			text = holder.String()
		}
	}
	return AppendQuoted(dst, text), nil
}

func readClass(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	name, ok := v.(string)
	if !ok {
		return reflect.Value{}, errs.New(errs.CodeConversion, "unable to convert %v (%T) to %v", v, v, meta.ClassType)
	}
	if name == "" {
		return reflect.Zero(t), nil
	}
	class, err := options.registry().Lookup(name)
	if err != nil {
		return reflect.Value{}, err
	}
	return Fit(reflect.ValueOf(&class).Elem(), t), nil
}

type classWriter struct{}

func (w classWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return w.AppendPrimitive(dst, value, options)
}

func (classWriter) AppendPrimitive(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	class, _ := value.Interface().(reflect.Type)
	if class == nil {
		return append(dst, "null"...), nil
	}
	return AppendQuoted(dst, options.registry().Name(class)), nil
}

func readLanguage(value interface{}, t reflect.Type, _ *Options) (reflect.Value, error) {
	var text string
	switch actual := value.(type) {
	case nil:
		return reflect.Zero(t), nil
	case string:
		text = actual
	case *element.Element:
		lang, ok := actual.Get("language").(string)
		if !ok {
			return reflect.Value{}, errs.New(errs.CodeShape, "%v missing 'language' field", t).WithPosition(actual.Line, actual.Col)
		}
		parts := []string{lang}
		for _, key := range []string{"country", "variant"} {
			if part, _ := actual.Get(key).(string); part != "" {
				parts = append(parts, part)
			}
		}
		text = strings.Join(parts, "-")
	default:
		return reflect.Value{}, errs.New(errs.CodeConversion, "unable to convert %v (%T) to %v", value, value, meta.LanguageTagType)
	}
	if strings.TrimSpace(text) == "" {
		return Fit(reflect.ValueOf(language.Und), t), nil
	}
	tag, err := language.Parse(text)
	if err != nil {
		return reflect.Value{}, errs.Wrap(errs.CodeConversion, err, "invalid language tag: %v", text)
	}
	return Fit(reflect.ValueOf(tag), t), nil
}

type languageWriter struct{}

func (languageWriter) Append(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	tag := Fit(value, meta.LanguageTagType).Interface().(language.Tag)
	base, _ := tag.Base()
	dst = AppendKey(dst, "language")
	dst = AppendQuoted(dst, base.String())
	if region, confidence := tag.Region(); confidence == language.Exact {
		dst = append(dst, ',')
		dst = AppendKey(dst, "country")
		dst = AppendQuoted(dst, region.String())
	}
	if variants := tag.Variants(); len(variants) > 0 {
		var names []string
		for _, variant := range variants {
			names = append(names, variant.String())
		}
		dst = append(dst, ',')
		dst = AppendKey(dst, "variant")
		dst = AppendQuoted(dst, strings.Join(names, "-"))
	}
	return dst, nil
}

func (languageWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	tag := Fit(value, meta.LanguageTagType).Interface().(language.Tag)
	return AppendQuoted(dst, tag.String()), nil
}

func readLocation(value interface{}, t reflect.Type, _ *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "zone")
	if err != nil {
		return reflect.Value{}, err
	}
	name, _ := v.(string)
	if name == "" {
		return reflect.Zero(t), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return reflect.Value{}, errs.Wrap(errs.CodeConversion, err, "invalid zone: %v", name)
	}
	return Fit(reflect.ValueOf(loc), t), nil
}

type locationWriter struct{}

func (w locationWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "zone")
	return w.AppendPrimitive(dst, value, options)
}

func (locationWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	loc := Fit(value, meta.LocationType).Interface().(*time.Location)
	if loc == nil {
		return append(dst, "null"...), nil
	}
	return AppendQuoted(dst, loc.String()), nil
}

func readDuration(value interface{}, t reflect.Type, options *Options) (reflect.Value, error) {
	v, err := valueOf(value, t, "value")
	if err != nil {
		return reflect.Value{}, err
	}
	result, err := options.converter().Convert(meta.DurationType, v)
	if err != nil {
		return reflect.Value{}, err
	}
	return Fit(result, t), nil
}

type durationWriter struct{}

func (w durationWriter) Append(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
	dst = AppendKey(dst, "value")
	return w.AppendPrimitive(dst, value, options)
}

func (durationWriter) AppendPrimitive(dst []byte, value reflect.Value, _ *Options) ([]byte, error) {
	d := Fit(value, meta.DurationType).Interface().(time.Duration)
	return AppendQuoted(dst, d.String()), nil
}
