package meta

import (
	"reflect"
	"strings"
	"sync"

	"github.com/viant/jsonio/tags"
	"github.com/viant/tagly/format"
	ftime "github.com/viant/tagly/format/time"
)

// FieldTag captures the effective json, format and jsonio tag attributes of a struct field.
type FieldTag struct {
	Name        string
	Explicit    bool
	Ignore      bool
	Transient   bool
	DefaultType string
	TimeLayout  string
}

var fieldTagCache sync.Map // map[reflect.StructTag]*FieldTag

// ResolveFieldTag resolves precedence among json, jsonio and format tags.
// Precedence:
// 1) json explicit name, then jsonio name, then format name/case, then the Go field name.
// 2) ignore is enabled by json:"-" or jsonio:"-".
// 3) transient is enabled by jsonio:"transient" or format:"ignore".
func ResolveFieldTag(sf reflect.StructField) (*FieldTag, error) {
	cached, err := loadFieldTag(sf.Tag)
	if err != nil {
		return nil, err
	}
	ret := *cached
	if ret.Name == "" {
		ret.Name = sf.Name
	} else if strings.HasPrefix(ret.Name, "\x00") {
		ret.Name = caseFormatName(sf.Name, ret.Name[1:])
	}
	return &ret, nil
}

func loadFieldTag(tag reflect.StructTag) (*FieldTag, error) {
	if v, ok := fieldTagCache.Load(tag); ok {
		return v.(*FieldTag), nil
	}
	ret := &FieldTag{}
	if jsonTag, ok := tag.Lookup("json"); ok {
		name := jsonTag
		if index := strings.IndexByte(jsonTag, ','); index != -1 {
			name = jsonTag[:index]
		}
		if name == "-" && jsonTag == "-" {
			ret.Ignore = true
		} else if name != "" {
			ret.Name = name
			ret.Explicit = true
		}
	}
	ioTag, err := tags.Parse(tag)
	if err != nil {
		return nil, err
	}
	if ioTag != nil {
		ret.Ignore = ret.Ignore || ioTag.Ignore
		ret.Transient = ioTag.Transient
		ret.DefaultType = ioTag.Type
		if !ret.Explicit && ioTag.Name != "" {
			ret.Name = ioTag.Name
			ret.Explicit = true
		}
	}
	if fTag, err := format.Parse(tag); err == nil && fTag != nil {
		ret.Transient = ret.Transient || fTag.Ignore
		if fTag.TimeLayout != "" {
			ret.TimeLayout = fTag.TimeLayout
		} else if fTag.DateFormat != "" {
			ret.TimeLayout = ftime.DateFormatToTimeLayout(fTag.DateFormat)
		}
		if !ret.Explicit {
			if fTag.Name != "" {
				ret.Name = fTag.Name
				ret.Explicit = true
			} else if fTag.CaseFormat != "" {
				// resolved against the field name
				ret.Name = "\x00" + fTag.CaseFormat
			}
		}
	}
	fieldTagCache.Store(tag, ret)
	return ret, nil
}

func caseFormatName(fieldName, caseFormat string) string {
	tag := &format.Tag{Name: fieldName, CaseFormat: caseFormat}
	if name := tag.CaseFormatName(""); name != "" {
		return name
	}
	return fieldName
}
