package scalar

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonio/errs"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect time.Time
	}{
		{"iso", "2015-01-02", time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"us slashes", "01/02/2015", time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"month first", "Jan 2, 2015", time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"month first ordinal", "January 2nd, 2015", time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"day first", "2 February 2015", time.Date(2015, 2, 2, 0, 0, 0, 0, time.UTC)},
		{"year first", "2015 Mar 3rd", time.Date(2015, 3, 3, 0, 0, 0, 0, time.UTC)},
		{"weekday prefix", "Friday, 2015-01-02", time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"with time", "2015-01-02 10:11:12", time.Date(2015, 1, 2, 10, 11, 12, 0, time.UTC)},
		{"short time", "2015-01-02 10:11", time.Date(2015, 1, 2, 10, 11, 0, 0, time.UTC)},
		{"rfc3339 utc", "2015-01-02T10:11:12.5Z", time.Date(2015, 1, 2, 10, 11, 12, 500000000, time.UTC)},
		{"unix date", "Fri Jan 02 10:11:12 UTC 2015", time.Date(2015, 1, 2, 10, 11, 12, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, ok, err := ParseDate(tc.input, time.UTC)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, tc.expect.Equal(actual), "expected %v, got %v", tc.expect, actual)
		})
	}
}

func TestParseDateZone(t *testing.T) {
	actual, ok, err := ParseDate("2015-01-02T10:11:12.123456789+05:30", time.UTC)
	require.NoError(t, err)
	require.True(t, ok)
	_, offset := actual.Zone()
	assert.Equal(t, 5*3600+30*60, offset)
	assert.Equal(t, 123456789, actual.Nanosecond())
}

func TestParseDateErrors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		expect string
	}{
		{"month", "2015-13-01", "Month must be between 1 and 12 inclusive"},
		{"day", "2015-01-32", "Day must be between 1 and 31 inclusive"},
		{"hour", "2015-01-02 24:00:00", "Hour must be between 0 and 23 inclusive"},
		{"minute", "2015-01-02 10:60:00", "Minute must be between 0 and 59 inclusive"},
		{"leftover", "2015-01-02 bogus", "other characters present: bogus"},
		{"no match", "tomorrow", "Unable to parse: tomorrow"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseDate(tc.input, time.UTC)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expect)
			assert.True(t, errs.Is(err, errs.CodeConversion))
		})
	}
}

func TestParseDateEmpty(t *testing.T) {
	actual, ok, err := ParseDate("  ", nil)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, actual.IsZero())
}

func TestBigIntFrom(t *testing.T) {
	testCases := []struct {
		name   string
		input  interface{}
		expect string
	}{
		{"text", "123456789012345678901234567890", "123456789012345678901234567890"},
		{"quoted", `"42"`, "42"},
		{"true", true, "1"},
		{"false", false, "0"},
		{"float", 12.9, "12"},
		{"long", int64(-7), "-7"},
		{"decimal", big.NewFloat(3.5), "3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := BigIntFrom(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, actual.String())
		})
	}

	blank, err := BigIntFrom(" ")
	require.NoError(t, err)
	assert.Nil(t, blank)

	_, err = BigIntFrom("12a")
	assert.True(t, errs.Is(err, errs.CodeConversion))
	_, err = BigIntFrom([]int{1})
	assert.Error(t, err)
}

func TestBigFloatFrom(t *testing.T) {
	testCases := []struct {
		name   string
		input  interface{}
		expect string
	}{
		{"text", "3.25", "3.25"},
		{"integer", int64(10), "10"},
		{"true", true, "1"},
		{"big integer", big.NewInt(99), "99"},
		{"long digits", "12345678901234567890.5", "12345678901234567890.5"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := BigFloatFrom(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, FormatBigFloat(actual))
		})
	}
	blank, err := BigFloatFrom("")
	require.NoError(t, err)
	assert.Nil(t, blank)
}

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "abc", TrimQuotes(`"abc"`))
	assert.Equal(t, "abc", TrimQuotes(`""abc""`))
	assert.Equal(t, "abc", TrimQuotes("abc"))
	assert.Equal(t, "", TrimQuotes(`""`))
}
