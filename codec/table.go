package codec

import (
	"reflect"
	"sync"

	"github.com/viant/jsonio/meta"
	"github.com/viant/jsonio/visitor"
)

// Entry binds a type to its reader and writer, either may be nil
type Entry struct {
	Type   reflect.Type
	Reader Reader
	Writer Writer
}

// Table dispatches types to the closest registered codec. A concrete entry
// matches its own type and pointer; an interface entry matches implementing
// types, the smallest interface distance wins with ties broken by table order.
type Table struct {
	mu        sync.RWMutex
	entries   []*Entry
	notCustom map[reflect.Type]bool
	readers   *visitor.SyncMap[reflect.Type, Reader]
	writers   *visitor.SyncMap[reflect.Type, Writer]
}

// NewTable creates a table with the supplied entries
func NewTable(entries ...*Entry) *Table {
	ret := &Table{
		notCustom: map[reflect.Type]bool{},
		readers:   visitor.NewSyncMap[reflect.Type, Reader](),
		writers:   visitor.NewSyncMap[reflect.Type, Writer](),
	}
	for _, entry := range entries {
		ret.Register(entry.Type, entry.Reader, entry.Writer)
	}
	return ret
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Default returns the process wide table of built-in codecs
func Default() *Table {
	defaultTableOnce.Do(func() {
		defaultTable = NewTable(Builtins()...)
	})
	return defaultTable
}

// Clone returns a copy that can be customized without affecting t
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ret := NewTable()
	for _, entry := range t.entries {
		clone := *entry
		ret.entries = append(ret.entries, &clone)
	}
	for k, v := range t.notCustom {
		ret.notCustom[k] = v
	}
	return ret
}

// Register adds or replaces the codec for rType, nil reader or writer keeps the existing one
func (t *Table) Register(rType reflect.Type, reader Reader, writer Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.readers = visitor.NewSyncMap[reflect.Type, Reader]()
	t.writers = visitor.NewSyncMap[reflect.Type, Writer]()
	for _, entry := range t.entries {
		if entry.Type != rType {
			continue
		}
		if reader != nil {
			entry.Reader = reader
		}
		if writer != nil {
			entry.Writer = writer
		}
		return
	}
	t.entries = append(t.entries, &Entry{Type: rType, Reader: reader, Writer: writer})
}

// SetNotCustom excludes types from dispatch
func (t *Table) SetNotCustom(types ...reflect.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rType := range types {
		t.notCustom[rType] = true
	}
	t.readers = visitor.NewSyncMap[reflect.Type, Reader]()
	t.writers = visitor.NewSyncMap[reflect.Type, Writer]()
}

// IsNotCustom returns true if rType is excluded from dispatch
func (t *Table) IsNotCustom(rType reflect.Type) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.notCustom[rType]
}

// Reader returns the closest reader for rType
func (t *Table) Reader(rType reflect.Type) (Reader, bool) {
	t.mu.RLock()
	cache := t.readers
	t.mu.RUnlock()
	reader := cache.GetOrPut(rType, func() Reader {
		entry := t.closest(rType, func(entry *Entry) bool { return entry.Reader != nil })
		if entry == nil {
			return nil
		}
		return entry.Reader
	})
	return reader, reader != nil
}

// Writer returns the closest writer for rType
func (t *Table) Writer(rType reflect.Type) (Writer, bool) {
	t.mu.RLock()
	cache := t.writers
	t.mu.RUnlock()
	writer := cache.GetOrPut(rType, func() Writer {
		entry := t.closest(rType, func(entry *Entry) bool { return entry.Writer != nil })
		if entry == nil {
			return nil
		}
		return entry.Writer
	})
	return writer, writer != nil
}

func (t *Table) closest(rType reflect.Type, accept func(entry *Entry) bool) *Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.notCustom[rType] {
		return nil
	}
	var best *Entry
	bestDistance := meta.Infinite
	for _, entry := range t.entries {
		if !accept(entry) || t.notCustom[entry.Type] {
			continue
		}
		d := meta.Distance(entry.Type, rType)
		if entry.Type.Kind() != reflect.Interface && d != 0 {
			continue
		}
		if d < bestDistance {
			best, bestDistance = entry, d
		}
	}
	return best
}
