package meta

import (
	"math"
	"reflect"

	"github.com/viant/jsonio/visitor"
)

// Infinite is the distance between unrelated types
const Infinite = math.MaxInt32

type typePair struct {
	base     reflect.Type
	concrete reflect.Type
}

var distanceCache = visitor.NewSyncMap[typePair, int]()

// Distance returns how far concrete is from base: 0 for the same type, the
// embedding depth for an embedded struct, the interface distance when base is
// an interface, Infinite when unrelated.
func Distance(base, concrete reflect.Type) int {
	if base == nil || concrete == nil {
		return Infinite
	}
	key := typePair{base: base, concrete: concrete}
	if d, ok := distanceCache.Get(key); ok {
		return d
	}
	d := distance(base, concrete)
	distanceCache.Put(key, d)
	return d
}

func distance(base, concrete reflect.Type) int {
	if base == concrete {
		return 0
	}
	if base.Kind() == reflect.Interface {
		if !implements(concrete, base) {
			return Infinite
		}
		return interfaceDistance(base, deref(concrete), map[reflect.Type]bool{})
	}
	base, concrete = deref(base), deref(concrete)
	if base == concrete {
		return 0
	}
	if base.Kind() != reflect.Struct || concrete.Kind() != reflect.Struct {
		return Infinite
	}
	return classDistance(base, concrete)
}

// classDistance walks embedded structs breadth first, returning the minimal depth
func classDistance(base, concrete reflect.Type) int {
	type node struct {
		t     reflect.Type
		depth int
	}
	queue := []node{{t: concrete}}
	seen := map[reflect.Type]bool{concrete: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.t == base {
			return current.depth
		}
		for _, ancestor := range ancestors(current.t) {
			if seen[ancestor] {
				continue
			}
			seen[ancestor] = true
			queue = append(queue, node{t: ancestor, depth: current.depth + 1})
		}
	}
	return Infinite
}

// interfaceDistance is 1 when no embedded ancestor satisfies iface, otherwise 1 plus the closest ancestor distance
func interfaceDistance(iface, t reflect.Type, visiting map[reflect.Type]bool) int {
	visiting[t] = true
	best := Infinite
	for _, ancestor := range ancestors(t) {
		if visiting[ancestor] || !implements(ancestor, iface) {
			continue
		}
		if d := interfaceDistance(iface, ancestor, visiting); d < best {
			best = d
		}
	}
	delete(visiting, t)
	if best == Infinite {
		return 1
	}
	return 1 + best
}

func ancestors(t reflect.Type) []reflect.Type {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var result []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		if embedded := deref(sf.Type); embedded.Kind() == reflect.Struct {
			result = append(result, embedded)
		}
	}
	return result
}

func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface && reflect.PtrTo(t).Implements(iface)
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}
