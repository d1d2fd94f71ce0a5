package resolver

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/internal/scanner"
)

type Sample struct {
	When   time.Time
	Count  *int
	Size   int16
	Label  string
	Sizes  []int16
	Limits map[string]int16
	Peer   *Sample
}

func resolveMaps(t *testing.T, input string) (interface{}, error) {
	result, err := scanner.Parse([]byte(input))
	require.NoError(t, err)
	config := newConfig()
	config.Registry.RegisterType(reflect.TypeOf(Sample{}), "Sample")
	value, err := NewMaps(result.Index, config).Resolve(result.Root, nil)
	if err != nil || !value.IsValid() {
		return nil, err
	}
	return value.Interface(), nil
}

func TestMaps_References(t *testing.T) {
	value, err := resolveMaps(t, `{"@id":1,"a":{"@id":2,"v":1},"b":{"@ref":2},"self":{"@ref":1}}`)
	require.NoError(t, err)
	root := value.(*element.Element)
	a, ok := root.Get("a").(*element.Element)
	require.True(t, ok)
	assert.Same(t, a, root.Get("b"))
	assert.Same(t, root, root.Get("self"))
	assert.Equal(t, int64(1), a.Get("v"))
	assert.False(t, root.Target.IsValid())
}

func TestMaps_ForwardReferenceInArray(t *testing.T) {
	value, err := resolveMaps(t, `[{"@ref":1},{"@id":1,"v":"x"}]`)
	require.NoError(t, err)
	items := value.([]interface{})
	require.Len(t, items, 2)
	assert.Same(t, items[1], items[0])
}

func TestMaps_Upgrade(t *testing.T) {
	input := `{
  "@type": "Sample",
  "When": "2015-01-02",
  "Count": "",
  "Size": "7",
  "Label": "",
  "Sizes": ["1", 2],
  "Limits": {"a": "3"},
  "Peer": {"Size": 4},
  "Extra": "5"
}`
	value, err := resolveMaps(t, input)
	require.NoError(t, err)
	root := value.(*element.Element)
	assert.Equal(t, "Sample", root.Type)
	when, ok := root.Get("When").(time.Time)
	require.True(t, ok)
	assert.Equal(t, 2015, when.Year())
	assert.Equal(t, time.January, when.Month())
	assert.Equal(t, 2, when.Day())
	assert.True(t, root.Has("Count"))
	assert.Nil(t, root.Get("Count"))
	assert.Equal(t, int16(7), root.Get("Size"))
	assert.Equal(t, "", root.Get("Label"))
	assert.Equal(t, []interface{}{int16(1), int16(2)}, root.Get("Sizes"))
	limits := root.Get("Limits").(*element.Element)
	assert.Equal(t, int16(3), limits.Get("a"))
	peer := root.Get("Peer").(*element.Element)
	assert.Equal(t, int16(4), peer.Get("Size"))
	assert.Equal(t, "5", root.Get("Extra"))
}

func TestMaps_LogicalPrimitives(t *testing.T) {
	value, err := resolveMaps(t, `{"x":{"@type":"long","value":"5"},"d":{"@type":"date","value":"2015-01-02"},"e":{}}`)
	require.NoError(t, err)
	root := value.(*element.Element)
	assert.Equal(t, int64(5), root.Get("x"))
	_, ok := root.Get("d").(time.Time)
	assert.True(t, ok)
	empty, ok := root.Get("e").(*element.Element)
	require.True(t, ok)
	assert.Equal(t, 0, empty.Len())
}

func TestMaps_UnknownTypeDegrades(t *testing.T) {
	value, err := resolveMaps(t, `{"@type":"acme.Missing","a":1}`)
	require.NoError(t, err)
	root := value.(*element.Element)
	assert.Equal(t, "acme.Missing", root.Type)
	assert.Equal(t, int64(1), root.Get("a"))
}

func TestMaps_KeyedMaps(t *testing.T) {
	value, err := resolveMaps(t, `{"text":{"@keys":["a","b"],"@items":[1,2]},"numeric":{"@keys":[1],"@items":["x"]}}`)
	require.NoError(t, err)
	root := value.(*element.Element)

	text := root.Get("text").(*element.Element)
	assert.False(t, text.Has(element.KeyKeys))
	assert.Equal(t, []string{"a", "b"}, text.Keys())
	assert.Equal(t, int64(2), text.Get("b"))

	numeric := root.Get("numeric").(*element.Element)
	assert.Equal(t, []interface{}{int64(1)}, numeric.KeyItems())
	assert.Equal(t, []interface{}{"x"}, numeric.Items())
}

func TestMaps_Errors(t *testing.T) {
	_, err := resolveMaps(t, `{"a":{"@ref":7}}`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeReference))
	assert.Contains(t, err.Error(), "@ref: 7")

	_, err = resolveMaps(t, `{"m":{"@keys":[1,2],"@items":[1]}}`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeShape))

	for _, input := range []string{`{"@type":"date"}`, `{"a":{"@type":"long"}}`} {
		_, err = resolveMaps(t, input)
		require.Error(t, err, input)
		assert.True(t, errs.Is(err, errs.CodeShape), err.Error())
		assert.Contains(t, err.Error(), "missing 'value' field")
	}
}

func TestMaps_InvalidTag(t *testing.T) {
	type tagged struct {
		Size int16 `jsonio:"bogus=1"`
	}
	result, err := scanner.Parse([]byte(`{"@type":"Tagged","Size":3}`))
	require.NoError(t, err)
	config := newConfig()
	config.Registry.RegisterType(reflect.TypeOf(tagged{}), "Tagged")
	_, err = NewMaps(result.Index, config).Resolve(result.Root, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeConfig), err.Error())
	assert.Contains(t, err.Error(), "unsupported jsonio tag option")
}
