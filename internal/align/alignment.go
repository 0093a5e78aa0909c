// Package align provides token index alignments between a source sentence
// and its translation, as reported by the translation engine. Two kinds are
// supported: exact alignments listing index pairs and probabilistic
// alignments carrying a score matrix.
package align

import (
	"regexp"

	"markup-translator/internal/types"
)

// Alignment maps target token indexes to the source token indexes they are
// translated from
type Alignment interface {
	// SourceTokenIndexes returns the source token indexes aligned with the
	// given target token index, sorted; empty if none
	SourceTokenIndexes(targetTokenIndex int) []int
	// PointedSourceTokens returns all source token indexes some target
	// token points to, sorted and deduplicated
	PointedSourceTokens() []int
	// ShiftSourceIndexes shifts all source indexes by the given offset
	ShiftSourceIndexes(offset int)
	// ShiftTargetIndexes shifts all target indexes by the given offset
	ShiftTargetIndexes(offset int)
	// String returns the alignment in the engine's native text format
	String() string
}

// exactPattern detects the index pair format of exact alignments
var exactPattern = regexp.MustCompile(`\d-\d`)

// Parse creates an alignment from the raw engine output. Input containing
// index pairs is parsed as exact alignment, everything else as
// probabilistic alignment.
func Parse(rawAlignments string) (Alignment, error) {
	if exactPattern.MatchString(rawAlignments) {
		return NewExact(rawAlignments)
	}
	return NewProbabilistic(rawAlignments)
}

func malformed(raw string, cause error) error {
	return types.NewAppErrorWithDetails(
		types.ErrAlignment, "malformed alignment", raw, cause)
}
