package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues_MatchPairs(t *testing.T) {
	var testCases = []struct {
		description string
		input       string
		expect      map[string]string
	}{
		{
			description: "mixed",
			input:       ",transient,name=id",
			expect: map[string]string{
				"transient": "",
				"name":      "id",
			},
		},
		{
			description: "quoted value",
			input:       "type='map[string]int',name=counts",
			expect: map[string]string{
				"type": "map[string]int",
				"name": "counts",
			},
		},
		{
			description: "block value",
			input:       "name={a,b}",
			expect: map[string]string{
				"name": "a,b",
			},
		},
		{
			description: "single flag",
			input:       "transient",
			expect: map[string]string{
				"transient": "",
			},
		},
	}
	for _, testCase := range testCases {
		values := Values(testCase.input)
		actual := map[string]string{}
		err := values.MatchPairs(func(key, value string) error {
			actual[key] = value
			return nil
		})
		assert.Nil(t, err)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}
