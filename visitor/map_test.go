package visitor

import (
	"container/list"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapOf(t *testing.T) {
	var aMap = map[string]bool{"def": true, "abc": false, "xyz": true}
	var keys []string
	err := MapOf(reflect.ValueOf(aMap))(func(key reflect.Value, element reflect.Value) (bool, error) {
		keys = append(keys, key.String())
		assert.Equal(t, aMap[key.String()], element.Bool())
		return true, nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"abc", "def", "xyz"}, keys)
}

func TestSortedKeys(t *testing.T) {
	var testCases = []struct {
		description string
		input       interface{}
		expect      []interface{}
	}{
		{description: "ints", input: map[int]string{3: "c", -1: "a", 2: "b"}, expect: []interface{}{-1, 2, 3}},
		{description: "floats", input: map[float64]int{2.5: 1, 0.5: 2}, expect: []interface{}{0.5, 2.5}},
		{description: "mixed", input: map[interface{}]int{"b": 1, int64(2): 2, "a": 3}, expect: []interface{}{int64(2), "a", "b"}},
		{description: "arrays", input: map[[2]int]int{{1, 2}: 1, {1, 1}: 2}, expect: []interface{}{[2]int{1, 1}, [2]int{1, 2}}},
	}
	for _, testCase := range testCases {
		var actual []interface{}
		for _, key := range SortedKeys(reflect.ValueOf(testCase.input)) {
			actual = append(actual, key.Interface())
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestSortedKeys_Set(t *testing.T) {
	set := map[string]struct{}{"b": {}, "a": {}}
	var actual []string
	for _, key := range SortedKeys(reflect.ValueOf(set)) {
		actual = append(actual, key.String())
	}
	assert.Equal(t, []string{"a", "b"}, actual)
}

func TestSliceAndListOf(t *testing.T) {
	var actual []interface{}
	_ = SliceOf(reflect.ValueOf([3]int{4, 5, 6}))(func(index int, element reflect.Value) (bool, error) {
		actual = append(actual, element.Interface())
		return true, nil
	})
	assert.Equal(t, []interface{}{4, 5, 6}, actual)

	aList := list.New()
	aList.PushBack("x")
	aList.PushBack(int64(2))
	actual = nil
	_ = ListOf(aList)(func(index int, element reflect.Value) (bool, error) {
		actual = append(actual, element.Interface())
		return true, nil
	})
	assert.Equal(t, []interface{}{"x", int64(2)}, actual)
}
