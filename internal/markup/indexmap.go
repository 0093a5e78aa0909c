package markup

import (
	"sort"

	"markup-translator/internal/tag"
)

// indexTags maps source token indexes to the tags bound to that token.
// Tag order within a list is insertion order and carries meaning.
type indexTags map[int][]string

// sortedIndexes returns the token indexes in ascending order. The map is
// mutated while moving tags around, so all passes iterate over a sorted
// snapshot of the keys.
func (m indexTags) sortedIndexes() []int {
	indexes := make([]int, 0, len(m))
	for i := range m {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	return indexes
}

// removeTag removes the first occurrence of the given tag at the given
// index; the index is dropped from the map when its tag list runs empty
func (m indexTags) removeTag(index int, tagToken string) {
	tags := removeToken(m[index], tagToken)
	if len(tags) == 0 {
		delete(m, index)
	} else {
		m[index] = tags
	}
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// removeToken returns the tokens without the first occurrence of the given
// token; the input slice is not modified
func removeToken(tokens []string, token string) []string {
	for i, t := range tokens {
		if t == token {
			return append(tokens[:i:i], tokens[i+1:]...)
		}
	}
	return tokens
}

// buildIndexMapBaseline binds every tag to the index of the following
// non-tag token.
func buildIndexMapBaseline(tokensWithTags []string) indexTags {
	index2tags := make(indexTags)

	offset := 0
	for i, currentToken := range tokensWithTags {
		if tag.IsTag(currentToken) {
			currentIndex := i - offset
			index2tags[currentIndex] = append(index2tags[currentIndex], currentToken)
			offset++
		}
	}
	return index2tags
}

// buildIndexMapImproved binds tags by their direction. Opening and isolated
// tags are bound to the next non-tag token, closing tags to the previous
// non-tag token.
func buildIndexMapImproved(sourceSentence *tag.SplitSentence) indexTags {
	index2tags := make(indexTags)

	offset := 0
	for i, currentToken := range sourceSentence.TokensWithTags() {
		if tag.IsTag(currentToken) {
			currentIndex := i - offset
			if tag.IsBackward(currentToken) {
				currentIndex--
			}
			index2tags[currentIndex] = append(index2tags[currentIndex], currentToken)
			offset++
		}
	}
	return index2tags
}

// buildIndexMapComplete binds to each non-tag token all tags that apply to
// it, i.e. all tag pairs covering the token plus the isolated tags directly
// preceding it. Closing tags of covering pairs are appended in the reverse
// order of their openings.
func buildIndexMapComplete(sourceSentence *tag.SplitSentence, tagMap *tag.Map) indexTags {
	index2tags := make(indexTags)

	var currentTagStack []string
	offset := 0
	for i, currentToken := range sourceSentence.TokensWithTags() {
		currentIndex := i - offset
		if tag.IsTag(currentToken) {
			offset++
			if tag.IsOpening(currentToken) || tag.IsIsolated(currentToken) {
				currentTagStack = append(currentTagStack, currentToken)
			} else {
				matchingOpeningTag, _ := tagMap.OpeningOf(currentToken)
				currentTagStack = removeToken(currentTagStack, matchingOpeningTag)
			}
			continue
		}
		if len(currentTagStack) == 0 {
			continue
		}
		// the token gets all currently open tags followed by the
		// matching closing tags in reverse order
		index2tags[currentIndex] = append(index2tags[currentIndex], currentTagStack...)
		for j := len(currentTagStack) - 1; j >= 0; j-- {
			oneTag := currentTagStack[j]
			if tag.IsIsolated(oneTag) {
				// isolated tags apply exactly once, to the next non-tag token
				currentTagStack = removeToken(currentTagStack, oneTag)
			} else {
				closingTag, _ := tagMap.ClosingOf(oneTag)
				index2tags[currentIndex] = append(index2tags[currentIndex], closingTag)
			}
		}
	}
	return index2tags
}

// moveSourceTagsToPointedTokens makes sure that all source tokens with
// associated tags are actually pointed to by at least one target token.
// Tag pairs with no pointed token in between are removed. Opening and
// isolated tags move forward to the next pointed token, closing tags move
// backward to the previous pointed token. The map is adapted in place.
// Returned are the tags that could not be assigned to any pointed token.
func moveSourceTagsToPointedTokens(
	sourceTokenIndex2Tags indexTags, tagMap *tag.Map,
	pointedSourceTokens []int, sourceTokensLength int) []string {

	pointed := make(map[int]bool)
	for _, i := range pointedSourceTokens {
		pointed[i] = true
	}

	var unusedTags []string

	// remove tag pairs with no pointed token between opening and closing tag
	for _, sourceTokenIndex := range sourceTokenIndex2Tags.sortedIndexes() {
		if pointed[sourceTokenIndex] {
			continue
		}
		for _, oneTag := range append([]string(nil), sourceTokenIndex2Tags[sourceTokenIndex]...) {
			if !tag.IsClosing(oneTag) {
				continue
			}
			// find the source token holding the corresponding opening tag;
			// the source tags are balanced, so there always is one
			openingTag, _ := tagMap.OpeningOf(oneTag)
			openingTagSourceTokenIndex := -1
			for i := sourceTokenIndex; i >= 0; i-- {
				if containsToken(sourceTokenIndex2Tags[i], openingTag) {
					openingTagSourceTokenIndex = i
					break
				}
			}
			if openingTagSourceTokenIndex == -1 {
				continue
			}
			foundPointingToken := false
			for i := openingTagSourceTokenIndex; i <= sourceTokenIndex; i++ {
				if pointed[i] {
					foundPointingToken = true
					break
				}
			}
			if !foundPointingToken {
				sourceTokenIndex2Tags.removeTag(sourceTokenIndex, oneTag)
				sourceTokenIndex2Tags.removeTag(openingTagSourceTokenIndex, openingTag)
				unusedTags = append(unusedTags, oneTag)
				unusedTags = append([]string{openingTag}, unusedTags...)
			}
		}
	}

	// all remaining tags are either isolated or have at least one pointed
	// token between opening and closing tag; move them
	for _, sourceTokenIndex := range sourceTokenIndex2Tags.sortedIndexes() {
		if pointed[sourceTokenIndex] {
			continue
		}
		for _, oneTag := range append([]string(nil), sourceTokenIndex2Tags[sourceTokenIndex]...) {
			switch {
			case tag.IsOpening(oneTag) || tag.IsIsolated(oneTag):
				pointedSourceTokenFound := false
				for i := sourceTokenIndex + 1; i < sourceTokensLength; i++ {
					if pointed[i] {
						sourceTokenIndex2Tags[i] = append([]string{oneTag}, sourceTokenIndex2Tags[i]...)
						pointedSourceTokenFound = true
						break
					}
				}
				sourceTokenIndex2Tags.removeTag(sourceTokenIndex, oneTag)
				if !pointedSourceTokenFound {
					// only isolated tags can end up here
					unusedTags = append(unusedTags, oneTag)
				}
			case tag.IsClosing(oneTag):
				for i := sourceTokenIndex - 1; i >= 0; i-- {
					if pointed[i] {
						sourceTokenIndex2Tags[i] = append(sourceTokenIndex2Tags[i], oneTag)
						sourceTokenIndex2Tags.removeTag(sourceTokenIndex, oneTag)
						break
					}
				}
			}
		}
	}

	return unusedTags
}

// moveIsoTagsToPointedTokens moves isolated tags forward to the next
// pointed token. Isolated tags with no following pointed token are removed
// and returned. The map is adapted in place.
func moveIsoTagsToPointedTokens(
	sourceTokenIndex2Tags indexTags, pointedSourceTokens []int, sourceTokensLength int) []string {

	pointed := make(map[int]bool)
	for _, i := range pointedSourceTokens {
		pointed[i] = true
	}

	var unusedTags []string
	for _, sourceTokenIndex := range sourceTokenIndex2Tags.sortedIndexes() {
		if pointed[sourceTokenIndex] {
			continue
		}
		for _, oneTag := range append([]string(nil), sourceTokenIndex2Tags[sourceTokenIndex]...) {
			if !tag.IsIsolated(oneTag) {
				continue
			}
			pointedSourceTokenFound := false
			for i := sourceTokenIndex + 1; i < sourceTokensLength; i++ {
				if pointed[i] {
					sourceTokenIndex2Tags[i] = append([]string{oneTag}, sourceTokenIndex2Tags[i]...)
					pointedSourceTokenFound = true
					break
				}
			}
			sourceTokenIndex2Tags.removeTag(sourceTokenIndex, oneTag)
			if !pointedSourceTokenFound {
				unusedTags = append(unusedTags, oneTag)
			}
		}
	}
	return unusedTags
}

// tagsForSourceTokenIndex returns all tags associated with the given source
// token index. If the index points into a byte pair encoded fragment
// sequence, the tags of all fragments belonging to the original token are
// collected.
func tagsForSourceTokenIndex(
	sourceTokenIndex int, sourceTokenIndex2Tags indexTags, sourceTokensWithoutTags []string) []string {

	// the index one behind the last source token refers to the end of the
	// sentence; there is no end-of-sentence token in the token slice
	if sourceTokenIndex == len(sourceTokensWithoutTags) {
		return sourceTokenIndex2Tags[sourceTokenIndex]
	}

	currentIndex := -1
	if isBpeFragment(sourceTokensWithoutTags[sourceTokenIndex]) {
		currentIndex = sourceTokenIndex
	} else if sourceTokenIndex > 0 && isBpeFragment(sourceTokensWithoutTags[sourceTokenIndex-1]) {
		currentIndex = sourceTokenIndex - 1
	}
	if currentIndex == -1 {
		return sourceTokenIndex2Tags[sourceTokenIndex]
	}

	// go to the first fragment belonging to the token
	for currentIndex >= 0 && isBpeFragment(sourceTokensWithoutTags[currentIndex]) {
		currentIndex--
	}
	currentIndex++

	var resultTags []string
	for i := currentIndex; i < len(sourceTokensWithoutTags); i++ {
		resultTags = append(resultTags, sourceTokenIndex2Tags[i]...)
		if !isBpeFragment(sourceTokensWithoutTags[i]) {
			// last fragment found
			break
		}
	}
	return resultTags
}
