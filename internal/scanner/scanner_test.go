package scanner

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
)

func TestParse_Scalars(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	testCases := []struct {
		description string
		input       string
		expected    interface{}
	}{
		{description: "null", input: `null`, expected: nil},
		{description: "true", input: ` true `, expected: true},
		{description: "false", input: `false`, expected: false},
		{description: "int", input: `-42`, expected: int64(-42)},
		{description: "float", input: `1.5e2`, expected: 150.0},
		{description: "big int", input: `123456789012345678901234567890`, expected: huge},
		{description: "string", input: `"abc"`, expected: "abc"},
		{description: "escapes", input: `"a\"b\\c\/d\n\t"`, expected: "a\"b\\c/d\n\t"},
		{description: "unicode", input: `"\u0041\u017c"`, expected: "Aż"},
		{description: "surrogate", input: `"\ud83d\ude00"`, expected: "😀"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			result, err := Parse([]byte(testCase.input))
			require.NoError(t, err)
			if expected, ok := testCase.expected.(*big.Int); ok {
				assert.Equal(t, 0, expected.Cmp(result.Root.(*big.Int)))
				return
			}
			assert.Equal(t, testCase.expected, result.Root)
		})
	}
}

func TestParse_Object(t *testing.T) {
	input := `{
  "@t": "pkg.Person",
  "@i": 3,
  "name": "Bob",
  "tags": ["a", 1, null],
  "empty": {},
  "friend": {"@r": 3}
}`
	result, err := Parse([]byte(input))
	require.NoError(t, err)
	root, ok := result.Root.(*element.Element)
	require.True(t, ok)
	assert.Equal(t, "pkg.Person", root.Type)
	assert.EqualValues(t, 3, root.ID)
	assert.Equal(t, []string{"name", "tags", "empty", "friend"}, root.Keys())
	assert.Equal(t, []interface{}{"a", int64(1), nil}, root.Get("tags"))
	assert.True(t, element.IsEmpty(root.Get("empty")))
	friend := root.Get("friend").(*element.Element)
	assert.True(t, friend.IsReference())
	assert.EqualValues(t, 3, friend.RefID())
	assert.Equal(t, 1, root.Line)
	assert.Equal(t, 1, root.Col)
	assert.Equal(t, 7, friend.Line)
	assert.Same(t, root, result.Index[3])
}

func TestParse_TextID(t *testing.T) {
	result, err := Parse([]byte(`[{"@id":"4","v":1},{"@ref":" 4 "}]`))
	require.NoError(t, err)
	items := result.Root.([]interface{})
	assert.Same(t, items[0], result.Index[4])
	assert.EqualValues(t, 4, items[1].(*element.Element).RefID())
}

func TestParse_Map(t *testing.T) {
	result, err := Parse([]byte(`{"@keys":[1,2],"@items":["a","b"]}`))
	require.NoError(t, err)
	root := result.Root.(*element.Element)
	assert.True(t, root.IsMap())
	assert.Len(t, root.KeyItems(), 2)
	assert.Len(t, root.Items(), 2)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		message     string
		line        int
	}{
		{description: "eof", input: `{"a":`, message: "unexpected EOF", line: 1},
		{description: "trailing", input: `{} x`, message: "trailing data", line: 1},
		{description: "bad token", input: "[\n  tru]", message: "invalid token", line: 2},
		{description: "missing colon", input: `{"a" 1}`, message: "expected ':'", line: 1},
		{description: "unterminated", input: `"abc`, message: "unterminated string", line: 1},
		{description: "bad escape", input: `"\x"`, message: "invalid escape", line: 1},
		{description: "items not array", input: `{"@items": 1}`, message: "@items must be an array", line: 1},
		{description: "duplicate id", input: "[{\"@id\":1},\n{\"@id\":1}]", message: "Duplicate @id: 1", line: 2},
		{description: "bad number", input: `1.2.3`, message: "invalid number", line: 1},
		{description: "text id", input: `{"@id":"x"}`, message: `@id must be a number, but had: "x"`, line: 1},
		{description: "text ref", input: "[\n{\"@ref\":\"x\"}]", message: `@ref must be a number, but had: "x"`, line: 2},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			_, err := Parse([]byte(testCase.input))
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.CodeDecode))
			assert.Contains(t, err.Error(), testCase.message)
			assert.Equal(t, testCase.line, err.(*errs.Error).Line)
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	_, err := Parse([]byte(`[[[1]]]`), WithMaxDepth(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth 2 exceeded")

	result, err := Parse([]byte(`[[[1]]]`), WithMaxDepth(3))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{[]interface{}{[]interface{}{int64(1)}}}, result.Root)
}
