package conv

import (
	"encoding"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/scalar"
)

var (
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	bigIntType          = reflect.TypeOf((*big.Int)(nil))
	bigFloatType        = reflect.TypeOf((*big.Float)(nil))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// Options contains configuration for the converter
type Options struct {
	// DateLayout is tried before free form date parsing when set
	DateLayout string
	// Location applies to date text without zone information
	Location *time.Location
}

// DefaultOptions returns default conversion options
func DefaultOptions() Options {
	return Options{Location: time.Local}
}

// Converter coerces decoded JSON scalars into primitive, date, big number and enum types
type Converter struct {
	options Options
	enums   sync.Map // map[reflect.Type]bool
}

// NewConverter creates a new converter with the provided options
func NewConverter(options Options) *Converter {
	if options.Location == nil {
		options.Location = time.Local
	}
	return &Converter{options: options}
}

var defaultConverter = NewConverter(DefaultOptions())

// Convert coerces src into destType with the default converter
func Convert(destType reflect.Type, src interface{}) (reflect.Value, error) {
	return defaultConverter.Convert(destType, src)
}

// IsConvertible returns true if Convert supports destType
func IsConvertible(destType reflect.Type) bool {
	switch destType {
	case timeType, durationType, bigIntType, bigFloatType:
		return true
	}
	switch destType.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Ptr:
		elem := destType.Elem()
		return elem.Kind() != reflect.Ptr && elem.Kind() != reflect.Struct && IsConvertible(elem)
	}
	return false
}

// Convert coerces src into destType. A nil src yields the zero value, blank
// text yields the zero value for non text types.
func (c *Converter) Convert(destType reflect.Type, src interface{}) (reflect.Value, error) {
	if src == nil {
		return reflect.Zero(destType), nil
	}
	srcValue := reflect.ValueOf(src)
	if srcValue.Type() == destType {
		return srcValue, nil
	}

	switch destType {
	case timeType:
		return c.convertToTime(src)
	case durationType:
		return c.convertToDuration(src)
	case bigIntType:
		v, err := scalar.BigIntFrom(src)
		if err != nil {
			return reflect.Value{}, err
		}
		if v == nil {
			return reflect.Zero(destType), nil
		}
		return reflect.ValueOf(v), nil
	case bigFloatType:
		v, err := scalar.BigFloatFrom(src)
		if err != nil {
			return reflect.Value{}, err
		}
		if v == nil {
			return reflect.Zero(destType), nil
		}
		return reflect.ValueOf(v), nil
	}

	if text, ok := src.(string); ok && c.isEnum(destType) {
		return c.convertToEnum(destType, text)
	}

	var result reflect.Value
	var err error
	switch destType.Kind() {
	case reflect.String:
		result, err = c.convertToString(srcValue)
	case reflect.Bool:
		result, err = c.convertToBool(srcValue)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		result, err = c.convertToInt(destType, srcValue)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		result, err = c.convertToUint(destType, srcValue)
	case reflect.Float32, reflect.Float64:
		result, err = c.convertToFloat(destType, srcValue)
	case reflect.Ptr:
		if !IsConvertible(destType) {
			break
		}
		elem, err := c.Convert(destType.Elem(), src)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(destType.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	case reflect.Interface:
		if srcValue.Type().Implements(destType) {
			result = reflect.New(destType).Elem()
			result.Set(srcValue)
			return result, nil
		}
	}
	if err != nil {
		return reflect.Value{}, err
	}
	if result.IsValid() {
		if result.Type() != destType {
			result = result.Convert(destType)
		}
		return result, nil
	}
	if srcValue.Type().ConvertibleTo(destType) {
		return srcValue.Convert(destType), nil
	}
	return reflect.Value{}, conversionError(src, destType, nil)
}

func (c *Converter) isEnum(destType reflect.Type) bool {
	if v, ok := c.enums.Load(destType); ok {
		return v.(bool)
	}
	isEnum := destType.Kind() != reflect.Ptr && destType.Kind() != reflect.Interface &&
		reflect.PtrTo(destType).Implements(textUnmarshalerType)
	c.enums.Store(destType, isEnum)
	return isEnum
}

func (c *Converter) convertToEnum(destType reflect.Type, text string) (reflect.Value, error) {
	ptr := reflect.New(destType)
	text = scalar.TrimQuotes(text)
	if text == "" {
		return ptr.Elem(), nil
	}
	if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
		return reflect.Value{}, conversionError(text, destType, err)
	}
	return ptr.Elem(), nil
}

func (c *Converter) convertToString(srcValue reflect.Value) (reflect.Value, error) {
	var result string
	switch actual := srcValue.Interface().(type) {
	case *big.Int:
		result = actual.String()
	case *big.Float:
		result = scalar.FormatBigFloat(actual)
	case time.Time:
		result = actual.Format(time.RFC3339Nano)
	case encoding.TextMarshaler:
		text, err := actual.MarshalText()
		if err != nil {
			return reflect.Value{}, conversionError(actual, reflect.TypeOf(""), err)
		}
		result = string(text)
	default:
		switch srcValue.Kind() {
		case reflect.String:
			result = srcValue.String()
		case reflect.Bool:
			result = strconv.FormatBool(srcValue.Bool())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			result = strconv.FormatInt(srcValue.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			result = strconv.FormatUint(srcValue.Uint(), 10)
		case reflect.Float32:
			result = strconv.FormatFloat(srcValue.Float(), 'f', -1, 32)
		case reflect.Float64:
			result = strconv.FormatFloat(srcValue.Float(), 'f', -1, 64)
		case reflect.Slice:
			if srcValue.Type().Elem().Kind() != reflect.Uint8 {
				return reflect.Value{}, conversionError(srcValue.Interface(), reflect.TypeOf(""), nil)
			}
			result = string(srcValue.Bytes())
		default:
			return reflect.Value{}, conversionError(srcValue.Interface(), reflect.TypeOf(""), nil)
		}
	}
	return reflect.ValueOf(result), nil
}

func (c *Converter) convertToBool(srcValue reflect.Value) (reflect.Value, error) {
	var result bool
	switch srcValue.Kind() {
	case reflect.Bool:
		result = srcValue.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		result = srcValue.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		result = srcValue.Uint() != 0
	case reflect.Float32, reflect.Float64:
		result = srcValue.Float() != 0
	case reflect.String:
		text := strings.TrimSpace(scalar.TrimQuotes(srcValue.String()))
		if text == "" {
			break
		}
		var err error
		if result, err = strconv.ParseBool(text); err != nil {
			f, fErr := strconv.ParseFloat(text, 64)
			if fErr != nil {
				return reflect.Value{}, conversionError(srcValue.Interface(), reflect.TypeOf(false), err)
			}
			result = f != 0
		}
	default:
		return reflect.Value{}, conversionError(srcValue.Interface(), reflect.TypeOf(false), nil)
	}
	return reflect.ValueOf(result), nil
}

func (c *Converter) convertToInt(destType reflect.Type, srcValue reflect.Value) (reflect.Value, error) {
	var result int64
	switch actual := srcValue.Interface().(type) {
	case *big.Int:
		if !actual.IsInt64() {
			return reflect.Value{}, conversionError(actual, destType, nil)
		}
		result = actual.Int64()
	case *big.Float:
		i, _ := actual.Int64()
		result = i
	default:
		switch srcValue.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			result = srcValue.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			v := srcValue.Uint()
			if v > math.MaxInt64 {
				return reflect.Value{}, conversionError(v, destType, nil)
			}
			result = int64(v)
		case reflect.Float32, reflect.Float64:
			f := srcValue.Float()
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return reflect.Value{}, conversionError(f, destType, nil)
			}
			result = int64(f)
		case reflect.Bool:
			if srcValue.Bool() {
				result = 1
			}
		case reflect.String:
			var err error
			if result, err = c.parseInt(destType, srcValue.String()); err != nil {
				return reflect.Value{}, err
			}
		default:
			return reflect.Value{}, conversionError(srcValue.Interface(), destType, nil)
		}
	}
	if reflect.Zero(destType).OverflowInt(result) {
		return reflect.Value{}, conversionError(srcValue.Interface(), destType, nil)
	}
	return reflect.ValueOf(result), nil
}

// parseInt parses integer text; a single non digit character converts to its
// code point for rune typed destinations.
func (c *Converter) parseInt(destType reflect.Type, text string) (int64, error) {
	text = strings.TrimSpace(scalar.TrimQuotes(text))
	if text == "" {
		return 0, nil
	}
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, conversionError(text, destType, err)
		}
		return int64(f), nil
	}
	result, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return result, nil
	}
	if destType.Kind() == reflect.Int32 && utf8.RuneCountInString(text) == 1 {
		r, _ := utf8.DecodeRuneInString(text)
		return int64(r), nil
	}
	return 0, conversionError(text, destType, err)
}

func (c *Converter) convertToUint(destType reflect.Type, srcValue reflect.Value) (reflect.Value, error) {
	var result uint64
	switch actual := srcValue.Interface().(type) {
	case *big.Int:
		if !actual.IsUint64() {
			return reflect.Value{}, conversionError(actual, destType, nil)
		}
		result = actual.Uint64()
	case *big.Float:
		u, _ := actual.Uint64()
		result = u
	default:
		switch srcValue.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v := srcValue.Int()
			if v < 0 {
				return reflect.Value{}, conversionError(v, destType, nil)
			}
			result = uint64(v)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			result = srcValue.Uint()
		case reflect.Float32, reflect.Float64:
			v := srcValue.Float()
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return reflect.Value{}, conversionError(v, destType, nil)
			}
			result = uint64(v)
		case reflect.Bool:
			if srcValue.Bool() {
				result = 1
			}
		case reflect.String:
			text := strings.TrimSpace(scalar.TrimQuotes(srcValue.String()))
			if text == "" {
				break
			}
			var err error
			if strings.ContainsAny(text, ".eE") {
				var f float64
				if f, err = strconv.ParseFloat(text, 64); err == nil && f < 0 {
					return reflect.Value{}, conversionError(text, destType, nil)
				}
				result = uint64(f)
			} else {
				result, err = strconv.ParseUint(text, 10, 64)
			}
			if err != nil {
				return reflect.Value{}, conversionError(text, destType, err)
			}
		default:
			return reflect.Value{}, conversionError(srcValue.Interface(), destType, nil)
		}
	}
	if reflect.Zero(destType).OverflowUint(result) {
		return reflect.Value{}, conversionError(srcValue.Interface(), destType, nil)
	}
	return reflect.ValueOf(result), nil
}

func (c *Converter) convertToFloat(destType reflect.Type, srcValue reflect.Value) (reflect.Value, error) {
	var result float64
	switch actual := srcValue.Interface().(type) {
	case *big.Int:
		result, _ = new(big.Float).SetInt(actual).Float64()
	case *big.Float:
		result, _ = actual.Float64()
	default:
		switch srcValue.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			result = float64(srcValue.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			result = float64(srcValue.Uint())
		case reflect.Float32, reflect.Float64:
			result = srcValue.Float()
		case reflect.Bool:
			if srcValue.Bool() {
				result = 1
			}
		case reflect.String:
			text := strings.TrimSpace(scalar.TrimQuotes(srcValue.String()))
			if text == "" {
				break
			}
			var err error
			if result, err = strconv.ParseFloat(text, 64); err != nil {
				return reflect.Value{}, conversionError(text, destType, err)
			}
		default:
			return reflect.Value{}, conversionError(srcValue.Interface(), destType, nil)
		}
	}
	return reflect.ValueOf(result), nil
}

func (c *Converter) convertToTime(src interface{}) (reflect.Value, error) {
	var t time.Time
	switch actual := src.(type) {
	case time.Time:
		t = actual
	case *time.Time:
		if actual != nil {
			t = *actual
		}
	case int64:
		t = time.UnixMilli(actual).In(c.options.Location)
	case int:
		t = time.UnixMilli(int64(actual)).In(c.options.Location)
	case float64:
		t = time.UnixMilli(int64(actual)).In(c.options.Location)
	case *big.Int:
		if !actual.IsInt64() {
			return reflect.Value{}, conversionError(actual, timeType, nil)
		}
		t = time.UnixMilli(actual.Int64()).In(c.options.Location)
	case string:
		text := strings.TrimSpace(actual)
		if c.options.DateLayout != "" {
			if parsed, err := time.ParseInLocation(c.options.DateLayout, text, c.options.Location); err == nil {
				return reflect.ValueOf(parsed), nil
			}
		}
		parsed, _, err := scalar.ParseDate(text, c.options.Location)
		if err != nil {
			return reflect.Value{}, err
		}
		t = parsed
	default:
		return reflect.Value{}, conversionError(src, timeType, nil)
	}
	return reflect.ValueOf(t), nil
}

func (c *Converter) convertToDuration(src interface{}) (reflect.Value, error) {
	switch actual := src.(type) {
	case int64:
		return reflect.ValueOf(time.Duration(actual)), nil
	case int:
		return reflect.ValueOf(time.Duration(actual)), nil
	case float64:
		return reflect.ValueOf(time.Duration(actual)), nil
	case string:
		text := strings.TrimSpace(scalar.TrimQuotes(actual))
		if text == "" {
			return reflect.ValueOf(time.Duration(0)), nil
		}
		if d, err := time.ParseDuration(text); err == nil {
			return reflect.ValueOf(d), nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return reflect.Value{}, conversionError(actual, durationType, err)
		}
		return reflect.ValueOf(time.Duration(n)), nil
	}
	return reflect.Value{}, conversionError(src, durationType, nil)
}

func conversionError(src interface{}, destType reflect.Type, cause error) error {
	return errs.Wrap(errs.CodeConversion, cause, "unable to convert %v (%T) to %v", src, src, destType)
}
