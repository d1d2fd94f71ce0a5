package scalar

import (
	"math"
	"math/big"
	"strings"

	"github.com/viant/jsonio/errs"
)

// BigIntFrom converts a decoded JSON scalar into *big.Int. Blank text yields nil.
func BigIntFrom(value interface{}) (*big.Int, error) {
	switch actual := value.(type) {
	case nil:
		return nil, nil
	case *big.Int:
		return actual, nil
	case *big.Float:
		result, _ := actual.Int(nil)
		return result, nil
	case string:
		text := strings.TrimSpace(actual)
		if text == "" {
			return nil, nil
		}
		result, ok := new(big.Int).SetString(TrimQuotes(text), 10)
		if !ok {
			return nil, errs.New(errs.CodeConversion, "Could not parse '%v' as BigInteger.", value)
		}
		return result, nil
	case bool:
		if actual {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case float64:
		return floatToInt(actual, value)
	case float32:
		return floatToInt(float64(actual), value)
	case int64:
		return big.NewInt(actual), nil
	case int:
		return big.NewInt(int64(actual)), nil
	case int32:
		return big.NewInt(int64(actual)), nil
	case int16:
		return big.NewInt(int64(actual)), nil
	case int8:
		return big.NewInt(int64(actual)), nil
	case uint64:
		return new(big.Int).SetUint64(actual), nil
	case uint:
		return new(big.Int).SetUint64(uint64(actual)), nil
	case uint32:
		return big.NewInt(int64(actual)), nil
	case uint16:
		return big.NewInt(int64(actual)), nil
	case uint8:
		return big.NewInt(int64(actual)), nil
	}
	return nil, errs.New(errs.CodeConversion, "Could not convert value: %v to BigInteger.", value)
}

func floatToInt(f float64, value interface{}) (*big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errs.New(errs.CodeConversion, "Could not convert value: %v to BigInteger.", value)
	}
	result, _ := big.NewFloat(f).Int(nil)
	return result, nil
}

// BigFloatFrom converts a decoded JSON scalar into *big.Float. Blank text yields nil.
func BigFloatFrom(value interface{}) (*big.Float, error) {
	switch actual := value.(type) {
	case nil:
		return nil, nil
	case *big.Float:
		return actual, nil
	case *big.Int:
		return new(big.Float).SetPrec(precisionOf(actual.String())).SetInt(actual), nil
	case string:
		text := strings.TrimSpace(actual)
		if text == "" {
			return nil, nil
		}
		text = TrimQuotes(text)
		result, _, err := big.ParseFloat(text, 10, precisionOf(text), big.ToNearestEven)
		if err != nil {
			return nil, errs.Wrap(errs.CodeConversion, err, "Could not parse '%v' as BigDecimal.", text)
		}
		return result, nil
	case bool:
		if actual {
			return big.NewFloat(1), nil
		}
		return big.NewFloat(0), nil
	case float64:
		if math.IsNaN(actual) || math.IsInf(actual, 0) {
			return nil, errs.New(errs.CodeConversion, "Could not convert value: %v to BigDecimal.", value)
		}
		return big.NewFloat(actual), nil
	case float32:
		return big.NewFloat(float64(actual)), nil
	case int64, int, int32, int16, int8, uint64, uint, uint32, uint16, uint8:
		i, err := BigIntFrom(actual)
		if err != nil {
			return nil, err
		}
		return BigFloatFrom(i)
	}
	return nil, errs.New(errs.CodeConversion, "Could not convert value: %v to BigDecimal.", value)
}

// precisionOf returns a mantissa precision wide enough to hold every decimal digit of text.
func precisionOf(text string) uint {
	digits := 0
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits++
		}
		if r == 'e' || r == 'E' {
			break
		}
	}
	prec := uint(float64(digits)*math.Log2(10)) + 8
	if prec < 64 {
		prec = 64
	}
	return prec
}

// FormatBigFloat renders f with the shortest decimal text that round-trips.
func FormatBigFloat(f *big.Float) string {
	if f.IsInt() {
		i, _ := f.Int(nil)
		return i.String()
	}
	return f.Text('f', -1)
}
