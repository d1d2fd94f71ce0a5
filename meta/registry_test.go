package meta

import (
	"container/list"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
)

type Shape interface {
	Area() float64
}

type Square struct {
	Side float64
}

func (s *Square) Area() float64 { return s.Side * s.Side }

type Tile struct {
	Square
	Color string
}

type Mosaic struct {
	Tile
}

type Circle struct {
	Radius float64
}

func (c Circle) Area() float64 { return c.Radius * c.Radius * 3 }

func TestDistance(t *testing.T) {
	shape := reflect.TypeOf((*Shape)(nil)).Elem()
	testCases := []struct {
		name     string
		base     reflect.Type
		concrete reflect.Type
		expected int
	}{
		{"same", reflect.TypeOf(Square{}), reflect.TypeOf(Square{}), 0},
		{"pointer", reflect.TypeOf(Square{}), reflect.TypeOf(&Square{}), 0},
		{"embedded", reflect.TypeOf(Square{}), reflect.TypeOf(Tile{}), 1},
		{"embedded twice", reflect.TypeOf(Square{}), reflect.TypeOf(Mosaic{}), 2},
		{"interface direct", shape, reflect.TypeOf(&Square{}), 1},
		{"interface value receiver", shape, reflect.TypeOf(Circle{}), 1},
		{"interface through ancestor", shape, reflect.TypeOf(&Tile{}), 2},
		{"interface through two ancestors", shape, reflect.TypeOf(&Mosaic{}), 3},
		{"unrelated", reflect.TypeOf(Circle{}), reflect.TypeOf(Square{}), Infinite},
		{"unrelated interface", shape, reflect.TypeOf(""), Infinite},
		{"class", ClassType, reflect.TypeOf(reflect.TypeOf(1)), 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Distance(tc.base, tc.concrete))
		})
	}
}

func TestRegistry_Name(t *testing.T) {
	registry := NewRegistry()
	testCases := []struct {
		t        reflect.Type
		expected string
	}{
		{reflect.TypeOf(0), "int"},
		{reflect.TypeOf(int64(0)), "long"},
		{reflect.TypeOf(int32(0)), "char"},
		{reflect.TypeOf(uint8(0)), "byte"},
		{reflect.TypeOf(""), "string"},
		{reflect.TypeOf(time.Time{}), "date"},
		{reflect.TypeOf(big.NewInt(0)), "bigint"},
		{reflect.TypeOf(time.Second), "time.Duration"},
		{reflect.TypeOf(&Square{}), "github.com/viant/jsonio/meta.Square"},
		{reflect.TypeOf([]int{}), "[]int"},
		{reflect.TypeOf([2]string{}), "[2]string"},
		{reflect.TypeOf(map[int64][]*Square{}), "map[long][]*github.com/viant/jsonio/meta.Square"},
		{reflect.TypeOf(&[]int{}), "*[]int"},
		{reflect.TypeOf(list.New()), "container/list.List"},
		{InterfaceType, "interface {}"},
	}
	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			name := registry.Name(tc.t)
			assert.Equal(t, tc.expected, name)
			actual, err := registry.Lookup(name)
			require.NoError(t, err)
			expected := tc.t
			if expected.Kind() == reflect.Ptr && expected.Elem().Kind() == reflect.Struct && !IsBuiltin(expected) {
				expected = expected.Elem()
			}
			assert.Equal(t, expected, actual)
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()
	registry.Register(Circle{})
	registry.RegisterType(reflect.TypeOf(Square{}), "square")

	actual, err := registry.Lookup("github.com/viant/jsonio/meta.Circle")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(Circle{}), actual)

	actual, err = registry.Lookup("map[string][]square")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(map[string][]Square{}), actual)
	assert.Equal(t, "square", registry.Name(reflect.TypeOf(Square{})))

	actual, err = registry.Lookup("bool")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(true), actual)

	_, err = registry.Lookup("acme.Missing")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeType))
	assert.Contains(t, err.Error(), "Unable to find type")

	_, err = registry.Lookup("map[[]int]string")
	require.Error(t, err)
}

type Ledger struct {
	Entries []*Entry
	Index   map[string]Posting
}

type Entry struct{ Amount int }

type Posting struct{ Memo string }

func TestRegistry_Discover(t *testing.T) {
	registry := NewRegistry()
	registry.Discover(reflect.TypeOf(&Ledger{}))
	for _, name := range []string{
		"github.com/viant/jsonio/meta.Ledger",
		"github.com/viant/jsonio/meta.Entry",
		"github.com/viant/jsonio/meta.Posting",
	} {
		_, err := registry.Lookup(name)
		assert.NoError(t, err, name)
	}
}

type Widget struct {
	Name    string
	Created time.Time
	Parts   []string
	via     string
}

func NewWidget(name string, parts []string) *Widget {
	if parts == nil {
		panic("parts required")
	}
	return &Widget{Name: name, Parts: parts, via: "NewWidget"}
}

func newWidget(limit *big.Int) (*Widget, error) {
	if limit == nil {
		return nil, errors.New("limit required")
	}
	return &Widget{via: "newWidget"}, nil
}

type Gadget struct {
	via string
}

func NewGadget() Gadget {
	return Gadget{via: "NewGadget"}
}

type Strict struct {
	ID int
}

func NewStrict(id int) (*Strict, error) {
	return nil, fmt.Errorf("invalid id: %v", id)
}

func TestRegistry_Construct(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterConstructor(newWidget))
	require.NoError(t, registry.RegisterConstructor(NewWidget))
	require.NoError(t, registry.RegisterConstructor(NewGadget))

	value, err := registry.Construct(reflect.TypeOf(&Widget{}), nil)
	require.NoError(t, err)
	widget := value.Interface().(*Widget)
	assert.Equal(t, "NewWidget", widget.via)
	assert.NotNil(t, widget.Parts)

	value, err = registry.Construct(reflect.TypeOf(&Widget{}), nil)
	require.NoError(t, err)
	assert.Equal(t, "NewWidget", value.Interface().(*Widget).via, "cached strategy")

	value, err = registry.Construct(reflect.TypeOf(Gadget{}), nil)
	require.NoError(t, err)
	assert.Equal(t, "NewGadget", value.Interface().(Gadget).via)

	value, err = registry.Construct(reflect.TypeOf(map[string]int{}), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, value.Len())

	items := element.New()
	items.Put(element.KeyItems, []interface{}{1, 2, 3})
	value, err = registry.Construct(reflect.TypeOf([]int{}), items)
	require.NoError(t, err)
	assert.Equal(t, 3, value.Len())

	value, err = registry.Construct(ListType, nil)
	require.NoError(t, err)
	assert.NotNil(t, value.Interface().(*list.List))

	_, err = registry.Construct(reflect.TypeOf((*Shape)(nil)).Elem(), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeInstantiation))
	assert.Contains(t, err.Error(), "Cannot instantiate unknown interface")
}

func TestRegistry_ConstructFallback(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterConstructor(NewStrict))
	value, err := registry.Construct(reflect.TypeOf(&Strict{}), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, value.Interface().(*Strict).ID)

	strict := NewRegistry(WithAllowZeroValue(false))
	require.NoError(t, strict.RegisterConstructor(NewStrict))
	_, err = strict.Construct(reflect.TypeOf(&Strict{}), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeInstantiation))
	assert.Contains(t, err.Error(), "Could not instantiate")
}

func TestRegistry_Factory(t *testing.T) {
	registry := NewRegistry()
	shape := reflect.TypeOf((*Shape)(nil)).Elem()
	registry.RegisterFactory(shape, func(t reflect.Type, e *element.Element) (reflect.Value, error) {
		return reflect.ValueOf(&Square{Side: 1}), nil
	})
	value, err := registry.Construct(shape, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, value.Interface().(Shape).Area())
}

func TestRegistry_RegisterConstructorErrors(t *testing.T) {
	registry := NewRegistry()
	for _, fn := range []interface{}{1, func() int { return 0 }, func() (*Square, int) { return nil, 0 }, func(...int) *Square { return nil }} {
		err := registry.RegisterConstructor(fn)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.CodeConfig))
	}
}
