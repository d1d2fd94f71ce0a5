package conv

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/errs"
)

type Color int

const (
	Red Color = iota
	Green
)

func (c Color) MarshalText() ([]byte, error) {
	switch c {
	case Red:
		return []byte("RED"), nil
	case Green:
		return []byte("GREEN"), nil
	}
	return nil, fmt.Errorf("invalid color %d", int(c))
}

func (c *Color) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "RED":
		*c = Red
	case "GREEN":
		*c = Green
	default:
		return fmt.Errorf("unknown color %s", text)
	}
	return nil
}

type Code string

func TestConvert(t *testing.T) {
	testCases := []struct {
		name     string
		destType reflect.Type
		src      interface{}
		expected interface{}
	}{
		{"nil to int", reflect.TypeOf(0), nil, 0},
		{"long to int", reflect.TypeOf(0), int64(42), 42},
		{"text to int", reflect.TypeOf(0), "42", 42},
		{"quoted text to int", reflect.TypeOf(0), `"42"`, 42},
		{"blank to int", reflect.TypeOf(0), "", 0},
		{"decimal text to int", reflect.TypeOf(0), "12.7", 12},
		{"double to short", reflect.TypeOf(int16(0)), 12.9, int16(12)},
		{"big to long", reflect.TypeOf(int64(0)), big.NewInt(77), int64(77)},
		{"text to uint", reflect.TypeOf(uint32(0)), "7", uint32(7)},
		{"bool to byte", reflect.TypeOf(uint8(0)), true, uint8(1)},
		{"char from letter", reflect.TypeOf(rune(0)), "A", 'A'},
		{"char from number", reflect.TypeOf(rune(0)), int64(66), 'B'},
		{"text to double", reflect.TypeOf(0.0), "1.5", 1.5},
		{"blank to double", reflect.TypeOf(0.0), "", 0.0},
		{"long to float", reflect.TypeOf(float32(0)), int64(3), float32(3)},
		{"text to bool", reflect.TypeOf(false), "true", true},
		{"blank to bool", reflect.TypeOf(false), "", false},
		{"numeric text to bool", reflect.TypeOf(false), "1", true},
		{"long to string", reflect.TypeOf(""), int64(5), "5"},
		{"double to string", reflect.TypeOf(""), 2.5, "2.5"},
		{"big to string", reflect.TypeOf(""), big.NewInt(9), "9"},
		{"text to named string", reflect.TypeOf(Code("")), "abc", Code("abc")},
		{"text to enum", reflect.TypeOf(Red), "GREEN", Green},
		{"blank to enum", reflect.TypeOf(Red), "", Red},
		{"long to enum", reflect.TypeOf(Red), int64(1), Green},
		{"enum to string", reflect.TypeOf(""), Green, "GREEN"},
		{"text to duration", reflect.TypeOf(time.Duration(0)), "1m30s", 90 * time.Second},
		{"long to duration", reflect.TypeOf(time.Duration(0)), int64(5), time.Duration(5)},
		{"text to big int", reflect.TypeOf((*big.Int)(nil)), "123456789012345678901234567890", mustBigInt("123456789012345678901234567890")},
		{"blank to big int", reflect.TypeOf((*big.Int)(nil)), "", (*big.Int)(nil)},
		{"bool to big float", reflect.TypeOf((*big.Float)(nil)), true, big.NewFloat(1)},
		{"text to interface", reflect.TypeOf((*interface{})(nil)).Elem(), "x", "x"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := Convert(tc.destType, tc.src)
			require.NoError(t, err)
			require.Equal(t, tc.destType, actual.Type())
			switch expected := tc.expected.(type) {
			case *big.Int:
				if expected == nil {
					assert.True(t, actual.IsNil())
					return
				}
				assert.Equal(t, 0, expected.Cmp(actual.Interface().(*big.Int)))
			case *big.Float:
				assert.Equal(t, 0, expected.Cmp(actual.Interface().(*big.Float)))
			default:
				assert.EqualValues(t, tc.expected, actual.Interface())
			}
		})
	}
}

func TestConvertPointer(t *testing.T) {
	actual, err := Convert(reflect.TypeOf((*int)(nil)), "15")
	require.NoError(t, err)
	require.False(t, actual.IsNil())
	assert.Equal(t, 15, *(actual.Interface().(*int)))
}

func TestConvertTime(t *testing.T) {
	converter := NewConverter(Options{Location: time.UTC})
	timeType := reflect.TypeOf(time.Time{})

	actual, err := converter.Convert(timeType, int64(1420156800000))
	require.NoError(t, err)
	assert.True(t, time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC).Equal(actual.Interface().(time.Time)))

	actual, err = converter.Convert(timeType, "Jan 2, 2015")
	require.NoError(t, err)
	assert.True(t, time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC).Equal(actual.Interface().(time.Time)))

	actual, err = converter.Convert(timeType, "")
	require.NoError(t, err)
	assert.True(t, actual.Interface().(time.Time).IsZero())

	layout := NewConverter(Options{DateLayout: "02/01/2006", Location: time.UTC})
	actual, err = layout.Convert(timeType, "02/01/2015")
	require.NoError(t, err)
	assert.Equal(t, time.January, actual.Interface().(time.Time).Month())
	assert.Equal(t, 2, actual.Interface().(time.Time).Day())
}

func TestConvertErrors(t *testing.T) {
	testCases := []struct {
		name     string
		destType reflect.Type
		src      interface{}
	}{
		{"letters to int", reflect.TypeOf(0), "abc"},
		{"overflow byte", reflect.TypeOf(uint8(0)), int64(300)},
		{"negative uint", reflect.TypeOf(uint(0)), int64(-1)},
		{"letters to double", reflect.TypeOf(0.0), "x1"},
		{"letters to bool", reflect.TypeOf(false), "maybe"},
		{"unknown enum", reflect.TypeOf(Red), "BLUE"},
		{"slice to string", reflect.TypeOf(""), []int{1}},
		{"map to int", reflect.TypeOf(0), map[string]int{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Convert(tc.destType, tc.src)
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeConversion))
			assert.Contains(t, err.Error(), tc.destType.String())
		})
	}
}

func TestIsConvertible(t *testing.T) {
	assert.True(t, IsConvertible(reflect.TypeOf(0)))
	assert.True(t, IsConvertible(reflect.TypeOf(time.Time{})))
	assert.True(t, IsConvertible(reflect.TypeOf((*big.Float)(nil))))
	assert.True(t, IsConvertible(reflect.TypeOf((*string)(nil))))
	assert.False(t, IsConvertible(reflect.TypeOf(struct{}{})))
	assert.False(t, IsConvertible(reflect.TypeOf([]int{})))
}

func mustBigInt(text string) *big.Int {
	v, _ := new(big.Int).SetString(text, 10)
	return v
}
