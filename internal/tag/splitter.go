package tag

// SplitSentence is a sentence where isolated tags and tags of pairs covering
// the whole sentence have been split from the beginning and end. The split
// boundary tags are carried over to the translation unchanged, the interior
// tokens go through alignment based reinsertion.
type SplitSentence struct {
	tokensWithTags    []string
	tokensWithoutTags []string
	beginningTags     []string
	endTags           []string
}

// NewSplitSentence creates a new split sentence from the given tokens with
// tags, using the tag map to decide which boundary tags really wrap the
// whole sentence.
func NewSplitSentence(tokensWithTags []string, tagMap *Map) *SplitSentence {
	s := &SplitSentence{}

	// collect tags before the first real token;
	// isolated tags and empty tag pairs are possible
	for _, token := range tokensWithTags {
		if !IsTag(token) {
			break
		}
		s.beginningTags = append(s.beginningTags, token)
	}

	// collect tags after the last real token
	for i := len(tokensWithTags) - 1; i >= 0; i-- {
		token := tokensWithTags[i]
		if !IsTag(token) {
			break
		}
		s.endTags = append([]string{token}, s.endTags...)
	}

	// filter opening and closing tags of pairs not covering the whole sentence
	var keptClosingTags []string
	for _, oneTag := range append([]string(nil), s.beginningTags...) {
		if IsOpening(oneTag) {
			closingTag, _ := tagMap.ClosingOf(oneTag)
			if contains(s.endTags, closingTag) {
				keptClosingTags = append(keptClosingTags, closingTag)
			} else if !contains(s.beginningTags, closingTag) {
				s.beginningTags = remove(s.beginningTags, oneTag)
			}
		}
	}
	// keptClosingTags now holds all closing tags at the end of the sentence
	// whose opening tag is at the beginning, i.e. the ones to keep
	for _, oneTag := range append([]string(nil), s.endTags...) {
		if IsClosing(oneTag) {
			openingTag, _ := tagMap.OpeningOf(oneTag)
			if contains(keptClosingTags, oneTag) || contains(s.endTags, openingTag) {
				continue
			}
			s.endTags = remove(s.endTags, oneTag)
		}
	}

	// remove collected beginning and end of sentence tags from the interior;
	// tags are assumed to occur exactly once per sentence
	for _, token := range tokensWithTags {
		if IsTag(token) &&
			(contains(s.beginningTags, token) || contains(s.endTags, token)) {
			continue
		}
		s.tokensWithTags = append(s.tokensWithTags, token)
	}

	return s
}

// TokensWithTags returns the interior tokens including tags
func (s *SplitSentence) TokensWithTags() []string {
	return s.tokensWithTags
}

// TokensWithoutTags returns the interior tokens with all tags removed
func (s *SplitSentence) TokensWithoutTags() []string {
	if s.tokensWithoutTags == nil {
		s.tokensWithoutTags = StripTokens(s.tokensWithTags)
	}
	return s.tokensWithoutTags
}

// BeginningTags returns the tags split from the sentence beginning
func (s *SplitSentence) BeginningTags() []string {
	return s.beginningTags
}

// EndTags returns the tags split from the sentence end
func (s *SplitSentence) EndTags() []string {
	return s.endTags
}

func contains(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// remove deletes the first occurrence of token; removing the last element
// yields nil, not an empty slice
func remove(tokens []string, token string) []string {
	for i, t := range tokens {
		if t == token {
			result := append(tokens[:i:i], tokens[i+1:]...)
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
	return tokens
}
