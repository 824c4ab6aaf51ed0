package expression

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	selectorStartCode = iota
	identifierCode
	closeBraceCode
)

// Token definitions
var (
	selectorStartToken = parsly.NewToken(selectorStartCode, "${", newSelectorStartMatcher())
	identifierToken    = parsly.NewToken(identifierCode, "Identifier", newIdentifierMatcher())
	closeBraceToken    = parsly.NewToken(closeBraceCode, "}", matcher.NewByte('}'))
)

// Custom matchers
func newSelectorStartMatcher() parsly.Matcher {
	return &selectorStartMatcher{}
}

func newIdentifierMatcher() parsly.Matcher {
	return &identifierMatcher{}
}

// selectorStartMatcher matches the ${ selector prefix
type selectorStartMatcher struct{}

func (m *selectorStartMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos+1 >= size {
		return 0
	}
	if input[pos] == '$' && input[pos+1] == '{' {
		return 2
	}
	return 0
}

// identifierMatcher matches valid variable names, including dot paths
type identifierMatcher struct{}

func (m *identifierMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	size := cursor.InputSize

	if pos >= size {
		return 0
	}

	// First character must be a letter or underscore
	if !isLetter(input[pos]) && input[pos] != '_' {
		return 0
	}

	matched := 1
	for i := pos + 1; i < size; i++ {
		if isLetter(input[i]) || isDigit(input[i]) || input[i] == '_' || input[i] == '.' {
			matched++
			continue
		}
		break
	}

	return matched
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
