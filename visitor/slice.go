package visitor

import (
	"container/list"
	"reflect"
)

// SliceOf returns a visitor over slice or array elements.
func SliceOf(value reflect.Value) Visitor[int, reflect.Value] {
	return func(f func(key int, element reflect.Value) (bool, error)) error {
		for i := 0; i < value.Len(); i++ {
			continueVisit, err := f(i, value.Index(i))
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

// ListOf returns a visitor over list values by position.
func ListOf(aList *list.List) Visitor[int, reflect.Value] {
	return func(f func(key int, element reflect.Value) (bool, error)) error {
		i := 0
		for e := aList.Front(); e != nil; e = e.Next() {
			continueVisit, err := f(i, reflect.ValueOf(&e.Value).Elem())
			if err != nil {
				return err
			}
			if !continueVisit {
				break
			}
			i++
		}
		return nil
	}
}
