package tag

import (
	"markup-translator/internal/types"
)

// Pair associates an opening tag with its closing tag
type Pair struct {
	Opening string
	Closing string
}

// Map is a bidirectional map from opening to closing tags and vice versa.
// Pairs iterate in insertion order.
type Map struct {
	opening2Closing map[string]string
	closing2Opening map[string]string
	pairs           []Pair
}

// NewMap creates an empty tag map
func NewMap() *Map {
	return &Map{
		opening2Closing: make(map[string]string),
		closing2Opening: make(map[string]string),
	}
}

// NewMapFromTokens creates a tag map by matching opening and closing tags
// of the given tokens with a stack scan. A closing tag without a pending
// opening tag is a markup inconsistency and yields an error.
func NewMapFromTokens(tokens []string) (*Map, error) {
	m := NewMap()
	var stack []string
	for _, token := range tokens {
		switch {
		case IsOpening(token):
			stack = append(stack, token)
		case IsClosing(token):
			if len(stack) == 0 {
				return nil, types.NewAppError(
					types.ErrMarkup, "closing tag without pending opening tag", nil)
			}
			opening := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			m.Put(opening, token)
		}
	}
	return m, nil
}

// Put adds the given mapping between opening and closing tag
func (m *Map) Put(openingTag, closingTag string) {
	if _, ok := m.opening2Closing[openingTag]; !ok {
		m.pairs = append(m.pairs, Pair{Opening: openingTag, Closing: closingTag})
	}
	m.opening2Closing[openingTag] = closingTag
	m.closing2Opening[closingTag] = openingTag
}

// ClosingOf returns the closing tag associated with the given opening tag
func (m *Map) ClosingOf(openingTag string) (string, bool) {
	closing, ok := m.opening2Closing[openingTag]
	return closing, ok
}

// OpeningOf returns the opening tag associated with the given closing tag
func (m *Map) OpeningOf(closingTag string) (string, bool) {
	opening, ok := m.closing2Opening[closingTag]
	return opening, ok
}

// Pairs returns all tag pairs in insertion order
func (m *Map) Pairs() []Pair {
	return m.pairs
}

// Len returns the number of stored tag pairs
func (m *Map) Len() int {
	return len(m.pairs)
}
