package codec

import (
	"bytes"
	"container/list"
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
	"golang.org/x/text/language"
)

func verbose(pairs ...interface{}) *element.Element {
	e := element.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		e.Put(pairs[i].(string), pairs[i+1])
	}
	return e
}

func TestBuiltinReaders(t *testing.T) {
	utc := time.Date(2015, 1, 2, 3, 4, 5, 600, time.UTC)
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	testCases := []struct {
		name     string
		t        reflect.Type
		value    interface{}
		expected interface{}
	}{
		{"string compact", meta.StringType, "abc", "abc"},
		{"string verbose", meta.StringType, verbose("value", "abc"), "abc"},
		{"date millis", meta.TimeType, int64(1420156800000), time.UnixMilli(1420156800000)},
		{"date rfc3339", meta.TimeType, "2015-01-02T03:04:05.0000006Z", utc},
		{"date text", meta.TimeType, "Jan 2, 2015 03:04:05Z", time.Date(2015, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"date verbose", meta.TimeType, verbose("value", "2015-01-02T03:04:05.0000006Z"), utc},
		{"date timestamp", meta.TimeType, verbose("time", int64(1420167845000), "nanos", int64(600)), utc},
		{"date calendar", meta.TimeType, verbose("time", "2015-01-02T03:04:05.0000006Z", "zone", "Europe/Paris"), utc.In(paris)},
		{"date pointer", reflect.TypeOf(&time.Time{}), "2015-01-02T03:04:05.0000006Z", &utc},
		{"big int", meta.BigIntType, "12345678901234567890", mustBigInt("12345678901234567890")},
		{"big int bool", meta.BigIntType, true, big.NewInt(1)},
		{"big int blank", meta.BigIntType, "", (*big.Int)(nil)},
		{"big float", meta.BigFloatType, verbose("value", "1.5"), big.NewFloat(1.5)},
		{"builder", meta.BuilderType, "text", "text"},
		{"buffer", meta.BufferType, verbose("value", "text"), "text"},
		{"class", meta.ClassType, "[]int", reflect.TypeOf([]int{})},
		{"language", meta.LanguageTagType, "en-US", language.AmericanEnglish},
		{"language verbose", meta.LanguageTagType, verbose("language", "en", "country", "GB"), language.BritishEnglish},
		{"location", meta.LocationType, "Europe/Paris", paris},
		{"location verbose", meta.LocationType, verbose("zone", "Europe/Paris"), paris},
		{"duration", meta.DurationType, "1m30s", 90 * time.Second},
	}
	table := Default()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader, ok := table.Reader(tc.t)
			require.True(t, ok)
			actual, err := reader.Read(tc.value, tc.t, &Options{})
			require.NoError(t, err)
			require.Equal(t, tc.t, actual.Type())
			switch expected := tc.expected.(type) {
			case time.Time:
				assert.True(t, expected.Equal(actual.Interface().(time.Time)), actual.Interface())
			case *time.Time:
				assert.True(t, expected.Equal(*actual.Interface().(*time.Time)))
			case *big.Int:
				if expected == nil {
					assert.True(t, actual.IsNil())
					return
				}
				assert.Equal(t, 0, expected.Cmp(actual.Interface().(*big.Int)))
			case *big.Float:
				assert.Equal(t, 0, expected.Cmp(actual.Interface().(*big.Float)))
			case *time.Location:
				assert.Equal(t, expected.String(), actual.Interface().(*time.Location).String())
			case string:
				assert.Equal(t, expected, fmt.Sprint(actual.Interface()))
			default:
				assert.Equal(t, tc.expected, actual.Interface())
			}
		})
	}
}

func TestDateCalendarZone(t *testing.T) {
	reader, ok := Default().Reader(meta.TimeType)
	require.True(t, ok)
	actual, err := reader.Read(verbose("time", "2015-01-02T03:04:05Z", "zone", "Asia/Tokyo"), meta.TimeType, nil)
	require.NoError(t, err)
	date := actual.Interface().(time.Time)
	assert.Equal(t, "Asia/Tokyo", date.Location().String())
	assert.Equal(t, 12, date.Hour())
}

func TestAtomicReader(t *testing.T) {
	reader, ok := Default().Reader(meta.AtomicInt64Type)
	require.True(t, ok)
	actual, err := reader.Read(int64(42), reflect.TypeOf(&atomic.Int64{}), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), actual.Interface().(*atomic.Int64).Load())

	reader, ok = Default().Reader(meta.AtomicBoolType)
	require.True(t, ok)
	actual, err = reader.Read(verbose("value", true), meta.AtomicBoolType, nil)
	require.NoError(t, err)
	require.True(t, actual.CanAddr())
	assert.True(t, actual.Addr().Interface().(*atomic.Bool).Load())
}

func TestReaderShapeErrors(t *testing.T) {
	for _, rType := range []reflect.Type{meta.TimeType, meta.BigIntType, meta.StringType, meta.LanguageTagType, meta.LocationType} {
		t.Run(rType.String(), func(t *testing.T) {
			reader, ok := Default().Reader(rType)
			require.True(t, ok)
			e := verbose("other", "x")
			e.Line, e.Col = 3, 7
			_, err := reader.Read(e, rType, nil)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeShape))
			assert.Contains(t, err.Error(), "missing")
		})
	}
}

func TestBuiltinWriters(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	builder := &strings.Builder{}
	builder.WriteString("a\"b")
	counter := &atomic.Int32{}
	counter.Store(7)
	testCases := []struct {
		name      string
		value     interface{}
		primitive string
		verbose   string
	}{
		{"string", "a\nb", `"a\nb"`, `"value":"a\nb"`},
		{"date utc", time.Date(2015, 1, 2, 3, 4, 5, 6, time.UTC), `"2015-01-02T03:04:05.000000006Z"`, `"value":"2015-01-02T03:04:05.000000006Z"`},
		{"date zone", time.Date(2015, 1, 2, 3, 4, 5, 0, paris), `"2015-01-02T03:04:05+01:00"`, `"time":"2015-01-02T03:04:05+01:00","zone":"Europe/Paris"`},
		{"big int", big.NewInt(-12), `"-12"`, `"value":"-12"`},
		{"big float", big.NewFloat(2.5), `"2.5"`, `"value":"2.5"`},
		{"atomic", counter, `7`, `"value":7`},
		{"builder", builder, `"a\"b"`, `"value":"a\"b"`},
		{"buffer", bytes.NewBufferString("x"), `"x"`, `"value":"x"`},
		{"class", reflect.TypeOf(list.List{}), `"container/list.List"`, `"value":"container/list.List"`},
		{"language", language.AmericanEnglish, `"en-US"`, `"language":"en","country":"US"`},
		{"location", paris, `"Europe/Paris"`, `"zone":"Europe/Paris"`},
		{"duration", 1500 * time.Millisecond, `"1.5s"`, `"value":"1.5s"`},
	}
	options := &Options{Registry: meta.NewRegistry()}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			value := reflect.ValueOf(tc.value)
			writer, ok := Default().Writer(value.Type())
			require.True(t, ok)
			primitive, ok := writer.(PrimitiveWriter)
			require.True(t, ok)
			actual, err := primitive.AppendPrimitive(nil, value, options)
			require.NoError(t, err)
			assert.Equal(t, tc.primitive, string(actual))
			actual, err = writer.Append(nil, value, options)
			require.NoError(t, err)
			assert.Equal(t, tc.verbose, string(actual))
		})
	}
}

func TestWriterDateLayout(t *testing.T) {
	writer, ok := Default().Writer(meta.TimeType)
	require.True(t, ok)
	actual, err := writer.(PrimitiveWriter).AppendPrimitive(nil, reflect.ValueOf(time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)), &Options{DateLayout: "2006-01-02"})
	require.NoError(t, err)
	assert.Equal(t, `"2015-01-02"`, string(actual))

	reader, _ := Default().Reader(meta.TimeType)
	value, err := reader.Read("02/01/2015", meta.TimeType, &Options{DateLayout: "02/01/2006"})
	require.NoError(t, err)
	assert.Equal(t, time.January, value.Interface().(time.Time).Month())
}

type Stamp interface {
	Stamp() string
}

type Version struct{ Major int }

func (v *Version) Stamp() string { return fmt.Sprintf("v%d", v.Major) }

type Release struct {
	Version
}

type Build struct {
	Release
}

func TestTable_Dispatch(t *testing.T) {
	stampType := reflect.TypeOf((*Stamp)(nil)).Elem()
	table := Default().Clone()
	interfaceWriter := WriterFunc(func(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
		return append(dst, "stamp"...), nil
	})
	releaseWriter := WriterFunc(func(dst []byte, value reflect.Value, options *Options) ([]byte, error) {
		return append(dst, "release"...), nil
	})
	table.Register(stampType, nil, interfaceWriter)

	for _, value := range []interface{}{&Version{}, &Release{}, &Build{}} {
		writer, ok := table.Writer(reflect.TypeOf(value))
		require.True(t, ok)
		actual, _ := writer.Append(nil, reflect.ValueOf(value), nil)
		assert.Equal(t, "stamp", string(actual))
	}

	table.Register(reflect.TypeOf(Release{}), nil, releaseWriter)
	writer, ok := table.Writer(reflect.TypeOf(&Release{}))
	require.True(t, ok)
	actual, _ := writer.Append(nil, reflect.ValueOf(&Release{}), nil)
	assert.Equal(t, "release", string(actual))

	writer, ok = table.Writer(reflect.TypeOf(&Build{}))
	require.True(t, ok)
	actual, _ = writer.Append(nil, reflect.ValueOf(&Build{}), nil)
	assert.Equal(t, "stamp", string(actual), "embedding a concrete codec type does not inherit it")

	table.SetNotCustom(reflect.TypeOf(&Version{}))
	_, ok = table.Writer(reflect.TypeOf(&Version{}))
	assert.False(t, ok)

	_, ok = Default().Writer(reflect.TypeOf(&Version{}))
	assert.False(t, ok, "clone does not affect default table")
	_, ok = Default().Reader(reflect.TypeOf(0))
	assert.False(t, ok)
}

func TestAppendQuoted(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"plain", `"plain"`},
		{"quote\"slash\\", `"quote\"slash\\"`},
		{"\b\f\n\r\t", `"\b\f\n\r\t"`},
		{"\x01\x1f", `"\u0001\u001F"`},
		{"zażółć", `"zażółć"`},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, string(AppendQuoted(nil, tc.input)))
	}
}

func mustBigInt(text string) *big.Int {
	v, _ := new(big.Int).SetString(text, 10)
	return v
}
