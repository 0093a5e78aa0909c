package markup

import (
	"markup-translator/internal/tag"
	"markup-translator/internal/types"
)

// replaceEmptyTagPairsWithIsos replaces tag pairs that cover no non-tag
// token with newly created isolated tags. The new tags use ids above the
// highest id in the sentence. The replacements are recorded in
// isoReplacements so that replaceIsosWithEmptyTagPairs can restore the
// original tokens.
func replaceEmptyTagPairsWithIsos(
	tokensWithTags []string, tagMap *tag.Map, isoReplacements map[string][]string) []string {

	maxID := -1
	for _, oneToken := range tokensWithTags {
		if id := tag.ID(oneToken); id > maxID {
			maxID = id
		}
	}

	var resultTokens []string
	currentID := maxID + 1
	for i := 0; i < len(tokensWithTags); i++ {
		oneToken := tokensWithTags[i]
		if !tag.IsOpening(oneToken) {
			resultTokens = append(resultTokens, oneToken)
			continue
		}
		matchClosingTag, _ := tagMap.ClosingOf(oneToken)
		// collect everything between the opening and the closing tag
		covered := []string{oneToken}
		for j := i + 1; j < len(tokensWithTags); j++ {
			nextToken := tokensWithTags[j]
			if !tag.IsTag(nextToken) {
				covered = nil
				break
			}
			covered = append(covered, nextToken)
			if nextToken == matchClosingTag {
				i = j
				break
			}
		}
		if covered == nil {
			resultTokens = append(resultTokens, oneToken)
			continue
		}
		newIso := tag.Isolated(currentID)
		currentID++
		resultTokens = append(resultTokens, newIso)
		isoReplacements[newIso] = covered
	}
	return resultTokens
}

// replaceIsosWithEmptyTagPairs restores the empty tag pairs replaced by
// replaceEmptyTagPairsWithIsos.
func replaceIsosWithEmptyTagPairs(
	tokensWithTags []string, isoReplacements map[string][]string) []string {

	var resultTokens []string
	for _, oneToken := range tokensWithTags {
		if tag.IsIsolated(oneToken) {
			if replacements, ok := isoReplacements[oneToken]; ok {
				resultTokens = append(resultTokens, replacements...)
				continue
			}
		}
		resultTokens = append(resultTokens, oneToken)
	}
	return resultTokens
}

// moveTagsFromBetweenBpeFragments collects the tags inside every byte pair
// encoded fragment sequence and positions them around the sequence in a
// valid order.
func moveTagsFromBetweenBpeFragments(tokens []string, tagMap *tag.Map) []string {
	var tokenList []string

	for i := 0; i < len(tokens); i++ {
		oneToken := tokens[i]
		if !isBpeFragment(oneToken) {
			tokenList = append(tokenList, oneToken)
			continue
		}

		// widen the range to the opening and isolated tags in front
		fragSeqStart := i
		for j := i - 1; j >= 0; j-- {
			prevToken := tokens[j]
			if !tag.IsIsolated(prevToken) && !tag.IsOpening(prevToken) {
				break
			}
			fragSeqStart = j
			// this tag has already been added to the result
			tokenList = tokenList[:len(tokenList)-1]
		}
		// find the last fragment and widen the range to the closing tags after it
		fragSeqEnd := -1
		for j := i + 1; j < len(tokens); j++ {
			nextToken := tokens[j]
			if tag.IsTag(nextToken) {
				continue
			}
			if !isBpeFragment(nextToken) {
				fragSeqEnd = j
				for k := j + 1; k < len(tokens); k++ {
					if !tag.IsClosing(tokens[k]) {
						break
					}
					fragSeqEnd = k
				}
				break
			}
		}
		// incomplete fragment sequences run to the end of the sentence
		if fragSeqEnd == -1 {
			fragSeqEnd = len(tokens) - 1
		}

		var frags, tagsToInsertBefore, tagsToInsertAfter []string
		for j := fragSeqStart; j <= fragSeqEnd; j++ {
			oneToken = tokens[j]
			switch {
			case tag.IsOpening(oneToken) || tag.IsIsolated(oneToken):
				if !containsToken(tagsToInsertBefore, oneToken) {
					tagsToInsertBefore = append(tagsToInsertBefore, oneToken)
				}
			case tag.IsClosing(oneToken):
				if !containsToken(tagsToInsertAfter, oneToken) {
					tagsToInsertAfter = append(tagsToInsertAfter, oneToken)
				}
			default:
				frags = append(frags, oneToken)
			}
		}

		tokenList = append(tokenList, tagsToInsertBefore...)
		tokenList = append(tokenList, frags...)
		// close the surrounding pairs in the inverse order of their openings
		for j := len(tagsToInsertBefore) - 1; j >= 0; j-- {
			oneTag := tagsToInsertBefore[j]
			if tag.IsIsolated(oneTag) {
				continue
			}
			matchClosingTag, _ := tagMap.ClosingOf(oneTag)
			if containsToken(tagsToInsertAfter, matchClosingTag) {
				tokenList = append(tokenList, matchClosingTag)
				tagsToInsertAfter = removeToken(tagsToInsertAfter, matchClosingTag)
			}
		}
		tokenList = append(tokenList, tagsToInsertAfter...)
		i = fragSeqEnd
	}

	return tokenList
}

// undoBytePairEncoding concatenates byte pair encoded fragment sequences
// back into single tokens. A tag inside an incomplete sequence flushes the
// fragments collected so far.
func undoBytePairEncoding(tokens []string) []string {
	var tokenList []string

	currentToken := ""
	for _, oneToken := range tokens {
		if isBpeFragment(oneToken) {
			currentToken += oneToken[:len(oneToken)-2]
			continue
		}
		if currentToken == "" {
			tokenList = append(tokenList, oneToken)
			continue
		}
		if !tag.IsTag(oneToken) {
			tokenList = append(tokenList, currentToken+oneToken)
		} else {
			tokenList = append(tokenList, currentToken, oneToken)
		}
		currentToken = ""
	}
	if currentToken != "" {
		tokenList = append(tokenList, currentToken)
	}

	return tokenList
}

// swapInvertedTags fixes inverted tag pairs by swapping the closing tag
// with a following opening tag of the same pair. Tags are left in place
// otherwise.
func swapInvertedTags(tagMap *tag.Map, targetTokensWithTags []string) []string {
	tokens := append([]string(nil), targetTokensWithTags...)

	for _, pair := range tagMap.Pairs() {
		openingTag := pair.Opening
		closingTag := pair.Closing

		// tracks whether the current position is between an opening and a
		// closing tag of this pair
		betweenTags := false
		for i := 0; i < len(tokens); i++ {
			oneToken := tokens[i]
			if oneToken != openingTag && oneToken != closingTag {
				continue
			}
			if betweenTags {
				if tag.IsClosing(oneToken) {
					betweenTags = false
				}
				continue
			}
			if tag.IsOpening(oneToken) {
				betweenTags = true
				continue
			}
			// closing tag in front of its opening tag
			for j := i + 1; j < len(tokens); j++ {
				if tokens[j] == openingTag {
					tokens[i], tokens[j] = tokens[j], tokens[i]
					break
				}
			}
		}
	}
	return tokens
}

// handleInvertedTags fixes inverted tag pairs by swapping the tags and
// widening the pair to the surrounding non-tag tokens. Closing tags
// without a following opening tag are removed.
func handleInvertedTags(tagMap *tag.Map, targetTokensWithTags []string) []string {
	tokens := append([]string(nil), targetTokensWithTags...)

	for _, pair := range tagMap.Pairs() {
		openingTag := pair.Opening
		closingTag := pair.Closing

		betweenTags := false
		for i := 0; i < len(tokens); i++ {
			oneToken := tokens[i]
			if oneToken != openingTag && oneToken != closingTag {
				continue
			}
			if betweenTags {
				if tag.IsClosing(oneToken) {
					betweenTags = false
				}
				continue
			}
			if tag.IsOpening(oneToken) {
				betweenTags = true
				continue
			}
			// closing tag in front of its opening tag
			swapped := false
			for j := i + 1; j < len(tokens); j++ {
				if tokens[j] != openingTag {
					continue
				}
				swapped = true
				tokens[i], tokens[j] = tokens[j], tokens[i]
				// move the opening tag in front of the closest preceding non-tag
				for precIndex := i - 1; precIndex >= 0; precIndex-- {
					tokens[precIndex], tokens[precIndex+1] = tokens[precIndex+1], tokens[precIndex]
					if !tag.IsTag(tokens[precIndex+1]) {
						break
					}
				}
				// move the closing tag behind the closest following non-tag
				follIndex := j + 1
				i = follIndex
				for follIndex < len(tokens) {
					i = follIndex
					tokens[follIndex-1], tokens[follIndex] = tokens[follIndex], tokens[follIndex-1]
					if !tag.IsTag(tokens[follIndex-1]) {
						break
					}
					follIndex++
				}
				break
			}
			if !swapped {
				// no following opening tag, remove the closing tag
				tokens = append(tokens[:i], tokens[i+1:]...)
				i--
			}
		}
	}
	return tokens
}

// removeRedundantTags removes all but the outer tags of nested occurrences
// of the same tag pair.
func removeRedundantTags(tagMap *tag.Map, targetTokensWithTags []string) []string {
	tokens := append([]string(nil), targetTokensWithTags...)

	for _, pair := range tagMap.Pairs() {
		openingTag := pair.Opening
		closingTag := pair.Closing

		betweenTags := false
		previousClosingTagIndex := -1
		for i := 0; i < len(tokens); i++ {
			oneToken := tokens[i]
			if oneToken != openingTag && oneToken != closingTag {
				continue
			}
			if betweenTags {
				if tag.IsOpening(oneToken) {
					tokens = append(tokens[:i], tokens[i+1:]...)
					i--
				} else {
					betweenTags = false
					previousClosingTagIndex = i
				}
			} else {
				if tag.IsOpening(oneToken) {
					betweenTags = true
					previousClosingTagIndex = -1
				} else if previousClosingTagIndex != -1 {
					tokens = append(tokens[:previousClosingTagIndex], tokens[previousClosingTagIndex+1:]...)
					i--
					previousClosingTagIndex = i
				}
			}
		}
		if betweenTags {
			// opening tag without corresponding closing tag, remove it
			for i := len(tokens) - 1; i >= 0; i-- {
				if tokens[i] == openingTag {
					tokens = append(tokens[:i], tokens[i+1:]...)
					break
				}
			}
		}
	}
	return tokens
}

// balanceTags rearranges tags so that pairs nest properly. Runs of
// adjacent opening and closing tags are sorted to match their
// counterparts, then overlapping pair ranges are repaired by closing and
// reopening the overlapped pairs.
func balanceTags(tagMap *tag.Map, targetTokensWithTags []string) ([]string, error) {
	tokens := append([]string(nil), targetTokensWithTags...)

	// sort consecutive sequences of opening tags
	openingStartIndex := -1
	for i := 0; i < len(tokens); i++ {
		if tag.IsOpening(tokens[i]) {
			if openingStartIndex == -1 {
				openingStartIndex = i
			}
			continue
		}
		if openingStartIndex != -1 && i-openingStartIndex > 1 {
			if err := sortOpeningTags(openingStartIndex, i, tokens, tagMap); err != nil {
				return nil, err
			}
		}
		openingStartIndex = -1
	}

	// sort consecutive sequences of closing tags
	closingStartIndex := -1
	for i := 0; i < len(tokens); i++ {
		if tag.IsClosing(tokens[i]) {
			if closingStartIndex == -1 {
				closingStartIndex = i
			}
			continue
		}
		if closingStartIndex != -1 && i-closingStartIndex > 1 {
			if err := sortClosingTags(closingStartIndex, i, tokens, tagMap); err != nil {
				return nil, err
			}
		}
		closingStartIndex = -1
	}
	if closingStartIndex != -1 && len(tokens)-closingStartIndex > 1 {
		if err := sortClosingTags(closingStartIndex, len(tokens), tokens, tagMap); err != nil {
			return nil, err
		}
	}

	// repair overlapping tag ranges; pass one simulates a tag stack over
	// the tokens and records the closing and reopening tags to insert at
	// each position, pass two flattens the result
	insertBefore := make(map[int][]string)
	insertAfter := make(map[int][]string)
	dropped := make(map[int]bool)
	var openingTags []string

	for i, oneToken := range tokens {
		if !tag.IsTag(oneToken) || tag.IsIsolated(oneToken) {
			continue
		}
		if tag.IsOpening(oneToken) {
			openingTags = append(openingTags, oneToken)
			continue
		}
		matchingOpeningTag, _ := tagMap.OpeningOf(oneToken)
		if !containsToken(openingTags, matchingOpeningTag) {
			// closing tag without open counterpart, drop it
			dropped[i] = true
			continue
		}
		// pop until the matching tag, the popped pairs overlap this one;
		// close them before the current closing tag and reopen them after it
		var popped []string
		for openingTags[len(openingTags)-1] != matchingOpeningTag {
			popped = append(popped, openingTags[len(openingTags)-1])
			openingTags = openingTags[:len(openingTags)-1]
		}
		openingTags = openingTags[:len(openingTags)-1]
		for _, onePopped := range popped {
			closingTag, _ := tagMap.ClosingOf(onePopped)
			insertBefore[i] = append(insertBefore[i], closingTag)
		}
		for j := len(popped) - 1; j >= 0; j-- {
			insertAfter[i] = append(insertAfter[i], popped[j])
			openingTags = append(openingTags, popped[j])
		}
	}

	var result []string
	for i, oneToken := range tokens {
		if dropped[i] {
			continue
		}
		result = append(result, insertBefore[i]...)
		result = append(result, oneToken)
		result = append(result, insertAfter[i]...)
	}
	return result, nil
}

// sortOpeningTags sorts the opening tag sequence in the given range in the
// reversed order of their following corresponding closing tags.
func sortOpeningTags(startIndex, endIndex int, tokens []string, tagMap *tag.Map) error {
	var openingTags []string
	for i := startIndex; i < endIndex; i++ {
		if !tag.IsOpening(tokens[i]) {
			return types.NewAppErrorWithDetails(
				types.ErrMarkup, "non-opening tag in opening tag sequence", tokens[i], nil)
		}
		openingTags = append(openingTags, tokens[i])
	}

	var sortedOpeningTags []string
	for i := endIndex; i < len(tokens); i++ {
		oneToken := tokens[i]
		if !tag.IsClosing(oneToken) {
			continue
		}
		matchingOpeningTag, ok := tagMap.OpeningOf(oneToken)
		if !ok || !containsToken(openingTags, matchingOpeningTag) {
			continue
		}
		sortedOpeningTags = append([]string{matchingOpeningTag}, sortedOpeningTags...)
		openingTags = removeToken(openingTags, matchingOpeningTag)
		if len(openingTags) == 0 {
			break
		}
	}
	if len(openingTags) > 0 {
		return types.NewAppError(
			types.ErrMarkup, "could not find closing tags for all opening tags", nil)
	}

	copy(tokens[startIndex:endIndex], sortedOpeningTags)
	return nil
}

// sortClosingTags sorts the closing tag sequence in the given range in the
// reversed order of their preceding corresponding opening tags.
func sortClosingTags(startIndex, endIndex int, tokens []string, tagMap *tag.Map) error {
	var closingTags []string
	for i := startIndex; i < endIndex; i++ {
		if !tag.IsClosing(tokens[i]) {
			return types.NewAppErrorWithDetails(
				types.ErrMarkup, "non-closing tag in closing tag sequence", tokens[i], nil)
		}
		closingTags = append(closingTags, tokens[i])
	}

	var sortedClosingTags []string
	for i := startIndex - 1; i >= 0; i-- {
		oneToken := tokens[i]
		if !tag.IsOpening(oneToken) {
			continue
		}
		matchingClosingTag, ok := tagMap.ClosingOf(oneToken)
		if !ok || !containsToken(closingTags, matchingClosingTag) {
			continue
		}
		sortedClosingTags = append(sortedClosingTags, matchingClosingTag)
		closingTags = removeToken(closingTags, matchingClosingTag)
		if len(closingTags) == 0 {
			break
		}
	}
	if len(closingTags) > 0 {
		return types.NewAppError(
			types.ErrMarkup, "could not find opening tags for all closing tags", nil)
	}

	copy(tokens[startIndex:endIndex], sortedClosingTags)
	return nil
}

// mergeNeighborTagPairs merges tag pairs of the same tags that are
// immediate neighbors, repeatedly until nothing changes.
func mergeNeighborTagPairs(tagMap *tag.Map, targetTokensWithTags []string) []string {
	tokens := append([]string(nil), targetTokensWithTags...)

	for {
		tagsRemoved := false
		for _, pair := range tagMap.Pairs() {
			openingTag := pair.Opening
			closingTag := pair.Closing

			for i := 1; i < len(tokens); i++ {
				if tokens[i] == openingTag && tokens[i-1] == closingTag {
					tokens = append(tokens[:i-1], tokens[i+1:]...)
					if i -= 2; i < 0 {
						i = 0
					}
					tagsRemoved = true
				}
			}
		}
		if !tagsRemoved {
			return tokens
		}
	}
}

// collectUnusedTags collects all tags that appear in the source sentence
// but not in the target sentence.
func collectUnusedTags(sourceTokensWithTags, targetTokensWithTags []string) []string {
	targetTags := make(map[string]bool)
	for _, oneToken := range targetTokensWithTags {
		if tag.IsTag(oneToken) {
			targetTags[oneToken] = true
		}
	}

	var unusedTags []string
	for _, oneToken := range sourceTokensWithTags {
		if tag.IsTag(oneToken) && !targetTags[oneToken] {
			unusedTags = append(unusedTags, oneToken)
		}
	}
	return unusedTags
}
