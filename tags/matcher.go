package tags

import (
	"bytes"
	"strings"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	spaceCode = iota
	comaCode
	assignCode
	blockCode
	quoteCode
)

var (
	spaceToken  = parsly.NewToken(spaceCode, "space", matcher.NewWhiteSpace())
	comaToken   = parsly.NewToken(comaCode, ",", matcher.NewTerminator(',', true))
	assignToken = parsly.NewToken(assignCode, "=", matcher.NewTerminator('=', true))
	blockToken  = parsly.NewToken(blockCode, "{...}", matcher.NewBlock('{', '}', '\\'))
	quoteToken  = parsly.NewToken(quoteCode, "'...'", matcher.NewQuote('\'', '\\'))
)

// Values represents the raw text of a tag
type Values string

// MatchPairs calls onMatch for each coma separated key=value pair, a bare flag has an empty value
func (v Values) MatchPairs(onMatch func(key, value string) error) error {
	cursor := parsly.NewCursor("", []byte(v), 0)
	for cursor.Pos < len(cursor.Input) {
		key, value := matchPair(cursor)
		if key == "" {
			continue
		}
		if err := onMatch(key, value); err != nil {
			return err
		}
	}
	return nil
}

func matchPair(cursor *parsly.Cursor) (string, string) {
	rest := cursor.Input[cursor.Pos:]
	assignAt := bytes.IndexByte(rest, '=')
	comaAt := bytes.IndexByte(rest, ',')
	if assignAt == -1 || (comaAt != -1 && comaAt < assignAt) {
		return strings.TrimSpace(matchValue(cursor)), ""
	}
	key := cursor.MatchAny(assignToken).Text(cursor)
	return strings.TrimSpace(strings.TrimSuffix(key, "=")), matchValue(cursor)
}

// matchValue matches {block}, 'quoted' or plain text up to the next coma
func matchValue(cursor *parsly.Cursor) string {
	match := cursor.MatchAfterOptional(spaceToken, blockToken, quoteToken, comaToken)
	switch match.Code {
	case blockCode, quoteCode:
		value := match.Text(cursor)
		cursor.MatchAny(comaToken)
		if len(value) >= 2 {
			value = value[1 : len(value)-1]
		}
		return value
	case comaCode:
		return strings.TrimSuffix(match.Text(cursor), ",")
	}
	if cursor.Pos >= len(cursor.Input) {
		return ""
	}
	value := string(cursor.Input[cursor.Pos:])
	cursor.Pos = len(cursor.Input)
	return value
}
