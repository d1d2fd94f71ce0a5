package tags

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	var testCases = []struct {
		description string
		tag         reflect.StructTag
		expect      *Tag
		hasError    bool
	}{
		{description: "absent", tag: `json:"id"`},
		{description: "ignore", tag: `jsonio:"-"`, expect: &Tag{Ignore: true}},
		{description: "transient", tag: `jsonio:"transient"`, expect: &Tag{Transient: true}},
		{description: "name and type", tag: `jsonio:"name=owner,type=bank.Person"`, expect: &Tag{Name: "owner", Type: "bank.Person"}},
		{description: "transient false", tag: `jsonio:"transient=false"`, expect: &Tag{}},
		{description: "unsupported", tag: `jsonio:"bogus=1"`, hasError: true},
	}
	for _, testCase := range testCases {
		actual, err := Parse(testCase.tag)
		if testCase.hasError {
			assert.NotNil(t, err, testCase.description)
			continue
		}
		assert.Nil(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}
