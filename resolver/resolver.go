// Package resolver turns the element tree produced by the scanner into either
// a typed Go object graph (Objects) or a generic element graph (Maps). Both
// walk the tree with an explicit LIFO work stack, defer forward references and
// map insertions until the whole graph is materialized, then patch them in a
// single cleanup pass.
package resolver

import (
	"reflect"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/viant/jsonio/codec"
	"github.com/viant/jsonio/conv"
	"github.com/viant/jsonio/element"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/meta"
)

// UnknownPolicy controls what an untyped object becomes in an interface slot
type UnknownPolicy int

const (
	// UnknownAsMap decodes untyped objects as map[string]interface{}
	UnknownAsMap UnknownPolicy = iota
	// UnknownAsType decodes untyped objects as Config.UnknownType
	UnknownAsType
	// UnknownFail rejects untyped objects in interface slots
	UnknownFail
)

type (
	// MissingFieldHandler is notified about input keys without a matching member
	MissingFieldHandler func(target interface{}, name string, value interface{})

	// Resolver materializes a parsed value
	Resolver interface {
		Resolve(value interface{}, declared reflect.Type) (reflect.Value, error)
		CreateInstance(declared reflect.Type, e *element.Element) (reflect.Value, error)
		ReadIfMatching(value interface{}, declared reflect.Type, stack *Stack) (reflect.Value, bool, error)
		TraverseFields(stack *Stack, e *element.Element) error
		TraverseArray(stack *Stack, e *element.Element) error
		TraverseCollection(stack *Stack, e *element.Element) error
		TraverseMap(stack *Stack, e *element.Element) error
		Cleanup() error
	}

	// Config represents resolver settings
	Config struct {
		Registry          *meta.Registry
		Table             *codec.Table
		Codec             *codec.Options
		FailOnUnknownType bool
		Unknown           UnknownPolicy
		UnknownType       string
		// TypeNames maps wire names to registry names
		TypeNames    map[string]string
		MissingField MissingFieldHandler
		Logger       *log.Logger
	}

	location struct {
		field string
		index int
	}

	unresolved struct {
		holder *element.Element
		at     location
		slot   reflect.Value
		id     int64
	}

	missingField struct {
		target reflect.Value
		name   string
		value  reflect.Value
	}

	deferredPut struct {
		e         *element.Element
		container reflect.Value
		keys      reflect.Value
		values    reflect.Value
		items     []interface{}
		keyItems  []interface{}
	}

	base struct {
		config     *Config
		index      element.Index
		converter  *conv.Converter
		logger     *log.Logger
		unresolved []*unresolved
		pending    []func() error
		puts       []*deferredPut
		missing    []*missingField
	}
)

func fieldAt(name string) location {
	return location{field: name, index: -1}
}

func indexAt(i int) location {
	return location{index: i}
}

func (l location) String() string {
	if l.index >= 0 {
		return "[" + strconv.Itoa(l.index) + "]"
	}
	return l.field
}

func newBase(index element.Index, config *Config) *base {
	if config == nil {
		config = &Config{}
	}
	if config.Registry == nil {
		config.Registry = meta.Default()
	}
	if config.Table == nil {
		config.Table = codec.Default()
	}
	if config.Codec == nil {
		config.Codec = &codec.Options{}
	}
	if config.Codec.Registry == nil {
		config.Codec.Registry = config.Registry
	}
	if config.Codec.Converter == nil {
		config.Codec.Converter = conv.NewConverter(conv.Options{DateLayout: config.Codec.DateLayout, Location: time.Local})
	}
	if config.Logger == nil {
		config.Logger = config.Registry.Logger()
	}
	if index == nil {
		index = element.Index{}
	}
	return &base{config: config, index: index, converter: config.Codec.Converter, logger: config.Logger}
}

// Stack is the LIFO work stack of elements awaiting traversal
type Stack struct {
	items []*element.Element
}

// Push adds e on top
func (s *Stack) Push(e *element.Element) {
	s.items = append(s.items, e)
}

// Pop removes the top element, nil when empty
func (s *Stack) Pop() *element.Element {
	if len(s.items) == 0 {
		return nil
	}
	last := len(s.items) - 1
	e := s.items[last]
	s.items[last] = nil
	s.items = s.items[:last]
	return e
}

// Len returns the number of pending elements
func (s *Stack) Len() int {
	return len(s.items)
}

// drain classifies and traverses elements until the stack is empty
func drain(r Resolver, stack *Stack) error {
	for stack.Len() > 0 {
		e := stack.Pop()
		var err error
		switch {
		case e.IsArray():
			err = r.TraverseArray(stack, e)
		case e.IsCollection():
			err = r.TraverseCollection(stack, e)
		case e.IsMap():
			err = r.TraverseMap(stack, e)
		default:
			var value reflect.Value
			var ok bool
			if value, ok, err = r.ReadIfMatching(e, nil, stack); err == nil {
				if ok {
					e.Target = value
				} else {
					err = r.TraverseFields(stack, e)
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *base) lookup(name string) (reflect.Type, error) {
	if mapped, ok := b.config.TypeNames[name]; ok {
		name = mapped
	}
	return b.config.Registry.Lookup(name)
}

// referenced returns the element defining id
func (b *base) referenced(id int64, at *element.Element) (*element.Element, error) {
	target, ok := b.index[id]
	if !ok {
		return nil, errs.New(errs.CodeReference, "Forward reference @ref: %d, but no object defined (@id) with that value", id).WithPosition(at.Line, at.Col)
	}
	return target, nil
}

// normalize rewrites a plain keyed object into parallel @keys/@items arrays
func normalize(e *element.Element) {
	if e.Has(element.KeyKeys) || e.IsReference() {
		return
	}
	keys := e.Keys()
	keyItems := make([]interface{}, 0, len(keys))
	items := make([]interface{}, 0, len(keys))
	for _, key := range keys {
		keyItems = append(keyItems, key)
		items = append(items, e.Get(key))
	}
	typeName := e.Type
	e.Clear()
	e.Type = typeName
	e.Put(element.KeyKeys, keyItems)
	e.Put(element.KeyItems, items)
}

// mapEntries validates @keys/@items, both nil means nothing to put
func mapEntries(e *element.Element) ([]interface{}, []interface{}, error) {
	keys, items := e.KeyItems(), e.Items()
	if keys == nil || items == nil {
		if (keys == nil) != (items == nil) {
			return nil, nil, errs.New(errs.CodeShape, "Map written where one of @keys or @items is empty").WithPosition(e.Line, e.Col)
		}
		return nil, nil, nil
	}
	if len(keys) != len(items) {
		return nil, nil, errs.New(errs.CodeShape, "Map written with @keys and @items entries of different sizes").WithPosition(e.Line, e.Col)
	}
	return keys, items, nil
}

func synthetic(items []interface{}) *element.Element {
	e := element.New()
	e.Put(element.KeyItems, items)
	return e
}

func (b *base) flushMissing() {
	handler := b.config.MissingField
	if handler == nil {
		return
	}
	for _, missing := range b.missing {
		var value interface{}
		if missing.value.IsValid() && missing.value.CanInterface() {
			value = missing.value.Interface()
		}
		var target interface{}
		if missing.target.IsValid() && missing.target.CanInterface() {
			target = missing.target.Interface()
		}
		handler(target, missing.name, value)
	}
}

func (b *base) reset() {
	b.unresolved = nil
	b.pending = nil
	b.puts = nil
	b.missing = nil
}

func isMetaKey(key string) bool {
	switch key {
	case element.KeyKeys, element.KeyItems, element.KeyRef:
		return true
	}
	return false
}
