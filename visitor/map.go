package visitor

import (
	"fmt"
	"reflect"
	"sort"
)

// MapOf returns a visitor over map entries in sorted key order.
func MapOf(value reflect.Value) Visitor[reflect.Value, reflect.Value] {
	return func(f func(key reflect.Value, element reflect.Value) (bool, error)) error {
		for _, key := range SortedKeys(value) {
			continueVisit, err := f(key, value.MapIndex(key))
			if err != nil {
				return err
			}
			if !continueVisit {
				break
			}
		}
		return nil
	}
}

// SortedKeys returns map keys ordered by value, keys of mixed dynamic types are
// ordered by type name first.
func SortedKeys(value reflect.Value) []reflect.Value {
	keys := value.MapKeys()
	sort.SliceStable(keys, func(i, j int) bool {
		return compare(keys[i], keys[j]) < 0
	})
	return keys
}

func compare(a, b reflect.Value) int {
	if a.Kind() == reflect.Interface {
		a = a.Elem()
	}
	if b.Kind() == reflect.Interface {
		b = b.Elem()
	}
	if !a.IsValid() || !b.IsValid() {
		switch {
		case !a.IsValid() && !b.IsValid():
			return 0
		case !a.IsValid():
			return -1
		}
		return 1
	}
	if a.Type() != b.Type() {
		return compareOrdered(a.Type().String(), b.Type().String())
	}
	switch a.Kind() {
	case reflect.String:
		return compareOrdered(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return compareOrdered(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return compareOrdered(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return compareOrdered(a.Float(), b.Float())
	case reflect.Bool:
		switch {
		case a.Bool() == b.Bool():
			return 0
		case !a.Bool():
			return -1
		}
		return 1
	case reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
		return compareOrdered(a.Pointer(), b.Pointer())
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if c := compare(a.Index(i), b.Index(i)); c != 0 {
				return c
			}
		}
		return 0
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if c := compare(a.Field(i), b.Field(i)); c != 0 {
				return c
			}
		}
		return 0
	}
	return compareOrdered(fmt.Sprint(a), fmt.Sprint(b))
}

func compareOrdered[T int64 | uint64 | float64 | uintptr | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
