package element

// Meta keys recognised inside JSON objects.
const (
	KeyType  = "@type"
	KeyID    = "@id"
	KeyRef   = "@ref"
	KeyKeys  = "@keys"
	KeyItems = "@items"
)

// Short forms of the meta keys.
const (
	ShortType  = "@t"
	ShortID    = "@i"
	ShortRef   = "@r"
	ShortKeys  = "@k"
	ShortItems = "@e"
)

var shortToLong = map[string]string{
	ShortType:  KeyType,
	ShortID:    KeyID,
	ShortRef:   KeyRef,
	ShortKeys:  KeyKeys,
	ShortItems: KeyItems,
}

var longToShort = map[string]string{
	KeyType:  ShortType,
	KeyID:    ShortID,
	KeyRef:   ShortRef,
	KeyKeys:  ShortKeys,
	KeyItems: ShortItems,
}

// Normalize maps a short meta key to its long form, other keys are returned as is.
func Normalize(key string) string {
	if len(key) == 2 && key[0] == '@' {
		if long, ok := shortToLong[key]; ok {
			return long
		}
	}
	return key
}

// Key returns the long or short spelling of a meta key.
func Key(key string, short bool) string {
	if !short {
		return key
	}
	if s, ok := longToShort[key]; ok {
		return s
	}
	return key
}
