package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
)

type Line struct {
	Sku string
	Qty int
}

type Order struct {
	ID     int
	Lines  []*Line
	Labels map[string]string
	Any    interface{}
}

func newOrder() *Order {
	return &Order{
		ID:     7,
		Lines:  []*Line{{Sku: "a", Qty: 1}, {Sku: "b", Qty: 2}},
		Labels: map[string]string{"env": "prod"},
		Any:    []interface{}{"x", map[string]interface{}{"k": int64(3)}},
	}
}

func newTree() *element.Element {
	line := element.New()
	line.Put("sku", "a")
	root := element.New()
	root.Put("lines", []interface{}{line, line})
	root.Put("total", int64(5))
	return root
}

func TestSelector_Value(t *testing.T) {
	var testCases = []struct {
		description string
		root        interface{}
		path        string
		expect      interface{}
		missing     bool
	}{
		{description: "struct field", root: newOrder(), path: "ID", expect: 7},
		{description: "struct slice item", root: newOrder(), path: "Lines[1].Sku", expect: "b"},
		{description: "struct map", root: newOrder(), path: "Labels.env", expect: "prod"},
		{description: "interface tree", root: newOrder(), path: "Any[1].k", expect: int64(3)},
		{description: "element", root: newTree(), path: "lines[1].sku", expect: "a"},
		{description: "element scalar", root: newTree(), path: "total", expect: int64(5)},
		{description: "root index", root: []interface{}{1, 2}, path: "[1]", expect: 2},
		{description: "missing field", root: newOrder(), path: "Missing", missing: true},
		{description: "index out of range", root: newOrder(), path: "Lines[5]", missing: true},
		{description: "missing key", root: newTree(), path: "lines[0].qty", missing: true},
		{description: "nil pointer", root: &Order{}, path: "Lines[0].Sku", missing: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			aSelector, err := New(testCase.path)
			require.NoError(t, err)
			actual, ok := aSelector.Value(testCase.root)
			if testCase.missing {
				assert.False(t, ok)
				assert.False(t, aSelector.Has(testCase.root))
				return
			}
			require.True(t, ok)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}

func TestSelector_Values(t *testing.T) {
	aSelector, err := New("Lines")
	require.NoError(t, err)
	values := aSelector.Values(newOrder())
	require.Len(t, values, 2)
	assert.Equal(t, &Line{Sku: "b", Qty: 2}, values[1])

	aSelector, err = New("lines")
	require.NoError(t, err)
	assert.Len(t, aSelector.Values(newTree()), 2)

	aSelector, err = New("")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{5}, aSelector.Values(5))
}

func TestSelector_Set(t *testing.T) {
	order := newOrder()
	var testCases = []struct {
		description string
		path        string
		value       interface{}
		expect      interface{}
	}{
		{description: "struct field", path: "ID", value: 9, expect: 9},
		{description: "converted field", path: "Lines[0].Qty", value: "12", expect: 12},
		{description: "map entry", path: "Labels.region", value: "eu", expect: "eu"},
		{description: "interface slice item", path: "Any[0]", value: "y", expect: "y"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			aSelector, err := New(testCase.path)
			require.NoError(t, err)
			require.NoError(t, aSelector.Set(order, testCase.value))
			actual, ok := aSelector.Value(order)
			require.True(t, ok)
			assert.Equal(t, testCase.expect, actual)
		})
	}

	tree := newTree()
	aSelector, err := New("lines[0].sku")
	require.NoError(t, err)
	require.NoError(t, aSelector.Set(tree, "z"))
	shared, _ := New("lines[1].sku")
	actual, _ := shared.Value(tree)
	assert.Equal(t, "z", actual)

	aSelector, _ = New("Lines[0].Qty")
	err = aSelector.Set(order, "many")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.CodeConversion))

	aSelector, _ = New("Nope.Qty")
	require.Error(t, aSelector.Set(order, 1))
}

func TestNew_Invalid(t *testing.T) {
	for _, path := range []string{"a..b", "a[x]", "a[1", "a[-1]"} {
		_, err := New(path)
		require.Error(t, err, path)
		assert.True(t, errs.Is(err, errs.CodeConfig), path)
	}
}
