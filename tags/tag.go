// Package tags parses the `jsonio` struct tag.
//
//	type Account struct {
//	    Owner   Party  `jsonio:"type=github.com/acme/bank.Person"`
//	    session *Token `jsonio:"transient"`
//	    ID      int    `jsonio:"name=id"`
//	    cache   []byte `jsonio:"-"`
//	}
package tags

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag key
const TagName = "jsonio"

// Tag represents a parsed jsonio tag
type Tag struct {
	// Name overrides the JSON key of a member
	Name string
	// Transient members are skipped by the writer unless explicitly allowed
	Transient bool
	// Ignore removes the member entirely
	Ignore bool
	// Type names the concrete type used for an untyped value of an interface member
	Type string
}

// Parse parses the jsonio tag of a struct field, it returns nil when the tag is absent
func Parse(tag reflect.StructTag) (*Tag, error) {
	literal, ok := tag.Lookup(TagName)
	if !ok {
		return nil, nil
	}
	ret := &Tag{}
	if strings.TrimSpace(literal) == "-" {
		ret.Ignore = true
		return ret, nil
	}
	err := Values(literal).MatchPairs(func(key, value string) error {
		switch strings.ToLower(key) {
		case "name":
			ret.Name = value
		case "transient":
			ret.Transient = value == "" || strings.EqualFold(value, "true")
		case "type":
			ret.Type = value
		case "-", "ignore":
			ret.Ignore = true
		default:
			return fmt.Errorf("unsupported %s tag option: %v", TagName, key)
		}
		return nil
	})
	return ret, err
}
