package jsonio

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/viant/jsonio/errs"
	"github.com/viant/jsonio/reader"
	"github.com/viant/jsonio/resolver"
	"github.com/viant/jsonio/writer"
)

type (
	// Config represents file based reader and writer settings
	Config struct {
		Reader ReaderConfig `toml:"reader"`
		Writer WriterConfig `toml:"writer"`
	}

	// ReaderConfig represents reader settings
	ReaderConfig struct {
		Maps bool `toml:"maps"`
		// FailOnUnknownType defaults to true when unset
		FailOnUnknownType *bool `toml:"fail_on_unknown_type"`
		// UnknownObject is one of map, type or fail
		UnknownObject string            `toml:"unknown_object"`
		UnknownType   string            `toml:"unknown_type"`
		DateLayout    string            `toml:"date_layout"`
		MaxDepth      int               `toml:"max_depth"`
		TypeNames     map[string]string `toml:"type_names"`
	}

	// WriterConfig represents writer settings
	WriterConfig struct {
		// ShowType is one of auto, always or never
		ShowType       string            `toml:"show_type"`
		PrettyPrint    bool              `toml:"pretty_print"`
		ShortMetaKeys  bool              `toml:"short_meta_keys"`
		LongsAsStrings bool              `toml:"longs_as_strings"`
		SkipNullFields bool              `toml:"skip_null_fields"`
		EnumPublicOnly bool              `toml:"enum_public_only"`
		DateFormat     string            `toml:"date_format"`
		TypeNames      map[string]string `toml:"type_names"`
	}
)

// LoadConfig loads TOML configuration from path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.CodeConfig, err, "failed to read config %v", path)
	}
	return ParseConfig(data)
}

// ParseConfig parses TOML configuration, unknown keys are rejected
func ParseConfig(data []byte) (*Config, error) {
	ret := &Config{}
	md, err := toml.Decode(string(data), ret)
	if err != nil {
		return nil, errs.Wrap(errs.CodeConfig, err, "invalid config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, errs.New(errs.CodeConfig, "unknown config keys: %v", strings.Join(keys, ", "))
	}
	if _, err = ret.ReaderOptions(nil); err != nil {
		return nil, err
	}
	if _, err = ret.WriterOptions(nil); err != nil {
		return nil, err
	}
	return ret, nil
}

// ReaderOptions returns reader options
func (c *Config) ReaderOptions(logger *log.Logger) ([]reader.Option, error) {
	r := c.Reader
	opts := []reader.Option{
		reader.WithMaps(r.Maps),
		reader.WithDateLayout(r.DateLayout),
		reader.WithMaxDepth(r.MaxDepth),
		reader.WithLogger(logger),
	}
	if r.FailOnUnknownType != nil {
		opts = append(opts, reader.WithFailOnUnknownType(*r.FailOnUnknownType))
	}
	switch strings.ToLower(r.UnknownObject) {
	case "", "map":
	case "type":
		if r.UnknownType == "" {
			return nil, errs.New(errs.CodeConfig, "reader.unknown_type is required when reader.unknown_object is type")
		}
		opts = append(opts, reader.WithUnknownObject(resolver.UnknownAsType, r.UnknownType))
	case "fail":
		opts = append(opts, reader.WithUnknownObject(resolver.UnknownFail, ""))
	default:
		return nil, errs.New(errs.CodeConfig, "invalid reader.unknown_object: %v, expected map, type or fail", r.UnknownObject)
	}
	if len(r.TypeNames) > 0 {
		opts = append(opts, reader.WithTypeNameMap(r.TypeNames))
	}
	return opts, nil
}

// WriterOptions returns writer options
func (c *Config) WriterOptions(logger *log.Logger) ([]writer.Option, error) {
	w := c.Writer
	showType, ok := writer.ParseShowType(strings.ToLower(w.ShowType))
	if !ok {
		return nil, errs.New(errs.CodeConfig, "invalid writer.show_type: %v, expected auto, always or never", w.ShowType)
	}
	opts := []writer.Option{
		writer.WithShowType(showType),
		writer.WithPrettyPrint(w.PrettyPrint),
		writer.WithShortMetaKeys(w.ShortMetaKeys),
		writer.WithLongsAsStrings(w.LongsAsStrings),
		writer.WithSkipNullFields(w.SkipNullFields),
		writer.WithEnumPublicOnly(w.EnumPublicOnly),
		writer.WithDateFormat(w.DateFormat),
		writer.WithLogger(logger),
	}
	if len(w.TypeNames) > 0 {
		opts = append(opts, writer.WithTypeNameMap(w.TypeNames))
	}
	return opts, nil
}
