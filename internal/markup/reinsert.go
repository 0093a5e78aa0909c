package markup

import (
	"sort"

	"markup-translator/internal/align"
	"markup-translator/internal/tag"
)

// reinsertBaseline copies the tags of every aligned source token in front
// of the target token. Tags of source tokens no target token points to are
// appended at the end in source order.
func reinsertBaseline(
	sourceTokenIndex2Tags indexTags, targetTokensWithoutTags []string, algn align.Alignment) []string {

	consumed := make(map[int]bool)
	var targetTokensWithTags []string

	for targetTokenIndex, targetToken := range targetTokensWithoutTags {
		for _, oneSourceTokenIndex := range algn.SourceTokenIndexes(targetTokenIndex) {
			if consumed[oneSourceTokenIndex] {
				continue
			}
			if sourceTags, ok := sourceTokenIndex2Tags[oneSourceTokenIndex]; ok {
				targetTokensWithTags = append(targetTokensWithTags, sourceTags...)
				consumed[oneSourceTokenIndex] = true
			}
		}
		targetTokensWithTags = append(targetTokensWithTags, targetToken)
	}

	// tags bound one behind the last token follow the sentence directly
	lastTargetTokenIndex := len(targetTokensWithoutTags)
	if sourceTags, ok := sourceTokenIndex2Tags[lastTargetTokenIndex]; ok && !consumed[lastTargetTokenIndex] {
		targetTokensWithTags = append(targetTokensWithTags, sourceTags...)
		consumed[lastTargetTokenIndex] = true
	}

	// remaining tags are appended in the order of their source indexes
	var leftover []int
	for sourceTokenIndex := range sourceTokenIndex2Tags {
		if !consumed[sourceTokenIndex] {
			leftover = append(leftover, sourceTokenIndex)
		}
	}
	sort.Ints(leftover)
	for _, sourceTokenIndex := range leftover {
		targetTokensWithTags = append(targetTokensWithTags, sourceTokenIndex2Tags[sourceTokenIndex]...)
	}

	return targetTokensWithTags
}

// reinsertImproved re-inserts tags using alignments, honoring tag
// direction. Forward tags go in front of the aligned target token, backward
// tags behind it. Isolated tags are inserted at most once.
func reinsertImproved(
	sourceSentence *tag.SplitSentence, sourceTokenIndex2Tags indexTags,
	targetTokensWithoutTags []string, algn align.Alignment) []string {

	// the end-of-sentence marker picks up tags bound behind the last token
	targetTokens := append(append([]string(nil), targetTokensWithoutTags...), eos)

	var targetTokensWithTags []string
	targetTokensWithTags = append(targetTokensWithTags, sourceSentence.BeginningTags()...)

	usedIsolatedTags := make(map[string]bool)
	for targetTokenIndex, targetToken := range targetTokens {
		var tagsToInsertBefore, tagsToInsertAfter []string

		for _, oneSourceTokenIndex := range algn.SourceTokenIndexes(targetTokenIndex) {
			sourceTags := tagsForSourceTokenIndex(
				oneSourceTokenIndex, sourceTokenIndex2Tags, sourceSentence.TokensWithoutTags())
			for _, oneSourceTag := range sourceTags {
				if tag.IsBackward(oneSourceTag) {
					tagsToInsertAfter = append(tagsToInsertAfter, oneSourceTag)
					continue
				}
				if tag.IsIsolated(oneSourceTag) {
					if usedIsolatedTags[oneSourceTag] {
						continue
					}
					usedIsolatedTags[oneSourceTag] = true
				}
				tagsToInsertBefore = append(tagsToInsertBefore, oneSourceTag)
			}
		}
		targetTokensWithTags = append(targetTokensWithTags, tagsToInsertBefore...)
		if targetToken != eos {
			targetTokensWithTags = append(targetTokensWithTags, targetToken)
		}
		targetTokensWithTags = append(targetTokensWithTags, tagsToInsertAfter...)
	}

	targetTokensWithTags = append(targetTokensWithTags, sourceSentence.EndTags()...)
	return targetTokensWithTags
}

// reinsertComplete re-inserts tags using the complete token-to-tags
// mapping. Target tokens without usable alignment get their tags
// interpolated from their neighbors, bounded by maxGapSize.
func reinsertComplete(
	sourceSentence *tag.SplitSentence, sourceTokenIndex2Tags indexTags,
	targetTokensWithoutTags []string, algn align.Alignment, maxGapSize int) []string {

	targetTokens := append(append([]string(nil), targetTokensWithoutTags...), eos)

	var targetTokensWithTags []string
	targetTokensWithTags = append(targetTokensWithTags, sourceSentence.BeginningTags()...)

	sourceEosIndex := len(sourceSentence.TokensWithoutTags())

	usedIsolatedTags := make(map[string]bool)
	for targetTokenIndex, targetToken := range targetTokens {
		// alignments to the source end-of-sentence are treated as if the
		// target token had no alignment, making it subject to interpolation
		var sourceTokenIndexes []int
		for _, oneSourceTokenIndex := range algn.SourceTokenIndexes(targetTokenIndex) {
			if oneSourceTokenIndex != sourceEosIndex {
				sourceTokenIndexes = append(sourceTokenIndexes, oneSourceTokenIndex)
			}
		}

		tags := collectNeighborTags(sourceTokenIndexes, sourceTokenIndex2Tags, usedIsolatedTags, false)
		if (len(sourceTokenIndexes) == 0 || tags.isEmpty()) &&
			targetTokenIndex < len(targetTokens)-1 && maxGapSize > 0 {
			if len(sourceTokenIndexes) == 0 {
				tags = interpolateTagsForUnalignedToken(
					targetTokenIndex, algn, maxGapSize, targetTokens,
					sourceTokenIndex2Tags, usedIsolatedTags)
			} else {
				tags = interpolateTagsForTaglessToken(
					targetTokenIndex, algn, maxGapSize, targetTokens,
					sourceTokenIndex2Tags, usedIsolatedTags)
			}
		}

		if targetToken == eos {
			// tag pairs never wrap the end of the sentence, isolated tags do apply
			for _, oneTag := range tags.beforeTags {
				if tag.IsIsolated(oneTag) {
					targetTokensWithTags = append(targetTokensWithTags, oneTag)
				}
			}
			for _, oneTag := range tags.afterTags {
				if tag.IsIsolated(oneTag) {
					targetTokensWithTags = append(targetTokensWithTags, oneTag)
				}
			}
			continue
		}
		targetTokensWithTags = append(targetTokensWithTags, tags.beforeTags...)
		targetTokensWithTags = append(targetTokensWithTags, targetToken)
		targetTokensWithTags = append(targetTokensWithTags, tags.afterTags...)
	}

	targetTokensWithTags = append(targetTokensWithTags, sourceSentence.EndTags()...)
	return targetTokensWithTags
}

// neighborTags wraps the tags surrounding a single token.
type neighborTags struct {
	beforeTags []string
	afterTags  []string
}

func (n *neighborTags) isEmpty() bool {
	return len(n.beforeTags) == 0 && len(n.afterTags) == 0
}

func (n *neighborTags) addToBeforeTags(tagToken string) {
	if !containsToken(n.beforeTags, tagToken) {
		n.beforeTags = append(n.beforeTags, tagToken)
	}
}

func (n *neighborTags) addToAfterTags(tagToken string) {
	if !containsToken(n.afterTags, tagToken) {
		n.afterTags = append(n.afterTags, tagToken)
	}
}

// intersect removes all tags not contained in the given neighbor tags
func (n *neighborTags) intersect(other *neighborTags) {
	var beforeTags []string
	for _, oneTag := range n.beforeTags {
		if containsToken(other.beforeTags, oneTag) {
			beforeTags = append(beforeTags, oneTag)
		}
	}
	n.beforeTags = beforeTags

	var afterTags []string
	for _, oneTag := range n.afterTags {
		if containsToken(other.afterTags, oneTag) {
			afterTags = append(afterTags, oneTag)
		}
	}
	n.afterTags = afterTags
}

// collectNeighborTags collects the tags of the given source token indexes,
// split into tags inserted before and after the target token. Isolated
// tags are skipped when interpolating, otherwise they are consumed via
// usedIsolatedTags so that each appears at most once.
func collectNeighborTags(
	sourceTokenIndexes []int, sourceTokenIndex2Tags indexTags,
	usedIsolatedTags map[string]bool, ignoreIsolated bool) *neighborTags {

	tags := &neighborTags{}
	for _, oneSourceTokenIndex := range sourceTokenIndexes {
		for _, oneSourceTag := range sourceTokenIndex2Tags[oneSourceTokenIndex] {
			if tag.IsBackward(oneSourceTag) {
				tags.addToAfterTags(oneSourceTag)
				continue
			}
			if tag.IsIsolated(oneSourceTag) {
				if ignoreIsolated {
					continue
				}
				if usedIsolatedTags[oneSourceTag] {
					continue
				}
				usedIsolatedTags[oneSourceTag] = true
			}
			tags.addToBeforeTags(oneSourceTag)
		}
	}
	return tags
}

// interpolateTagsForUnalignedToken interpolates the tags of a target token
// without any alignment from the closest aligned tokens around it. The gap
// between those neighbors must not exceed maxGapSize. The end-of-sentence
// marker at the end of targetTokens is ignored.
func interpolateTagsForUnalignedToken(
	targetTokenIndex int, algn align.Alignment, maxGapSize int,
	targetTokens []string, sourceTokenIndex2Tags indexTags,
	usedIsolatedTags map[string]bool) *neighborTags {

	prevIndexWithAlgn := -1
	folIndexWithAlgn := -1
	var previousSourceTokenIndexes, followingSourceTokenIndexes []int

	for i := targetTokenIndex - 1; i >= 0; i-- {
		if sourceTokenIndexes := algn.SourceTokenIndexes(i); len(sourceTokenIndexes) > 0 {
			previousSourceTokenIndexes = sourceTokenIndexes
			prevIndexWithAlgn = i
			break
		}
	}
	for i := targetTokenIndex + 1; i < len(targetTokens)-1; i++ {
		if sourceTokenIndexes := algn.SourceTokenIndexes(i); len(sourceTokenIndexes) > 0 {
			followingSourceTokenIndexes = sourceTokenIndexes
			folIndexWithAlgn = i
			break
		}
	}

	var tags *neighborTags
	switch {
	case prevIndexWithAlgn == -1 && folIndexWithAlgn == -1:
		tags = &neighborTags{}
	case prevIndexWithAlgn == -1 && folIndexWithAlgn <= maxGapSize:
		tags = collectNeighborTags(
			followingSourceTokenIndexes, sourceTokenIndex2Tags, usedIsolatedTags, true)
	case folIndexWithAlgn == -1 && len(targetTokens)-prevIndexWithAlgn-2 <= maxGapSize:
		tags = collectNeighborTags(
			previousSourceTokenIndexes, sourceTokenIndex2Tags, usedIsolatedTags, true)
	case prevIndexWithAlgn != -1 && folIndexWithAlgn != -1 &&
		folIndexWithAlgn-prevIndexWithAlgn-1 <= maxGapSize:
		tags = collectNeighborTags(
			previousSourceTokenIndexes, sourceTokenIndex2Tags, usedIsolatedTags, true)
		folTokenTags := collectNeighborTags(
			followingSourceTokenIndexes, sourceTokenIndex2Tags, usedIsolatedTags, true)
		tags.intersect(folTokenTags)
	default:
		tags = &neighborTags{}
	}

	if tags.isEmpty() {
		return interpolateTagsForTaglessToken(
			targetTokenIndex, algn, maxGapSize, targetTokens,
			sourceTokenIndex2Tags, usedIsolatedTags)
	}
	return tags
}

// interpolateTagsForTaglessToken interpolates the tags of a target token
// whose aligned source tokens carry no tags. This compensates for
// erroneous alignments: if the closest neighbors with tags around the
// token agree on tags within maxGapSize, those tags are used.
func interpolateTagsForTaglessToken(
	targetTokenIndex int, algn align.Alignment, maxGapSize int,
	targetTokens []string, sourceTokenIndex2Tags indexTags,
	usedIsolatedTags map[string]bool) *neighborTags {

	prevIndexWithTags := -1
	folIndexWithTags := -1
	var prevTokenTags, folTokenTags *neighborTags

	for i := targetTokenIndex - 1; i >= 0; i-- {
		tags := collectNeighborTags(
			algn.SourceTokenIndexes(i), sourceTokenIndex2Tags, usedIsolatedTags, true)
		if !tags.isEmpty() {
			prevTokenTags = tags
			prevIndexWithTags = i
			break
		}
	}
	for i := targetTokenIndex + 1; i < len(targetTokens)-1; i++ {
		tags := collectNeighborTags(
			algn.SourceTokenIndexes(i), sourceTokenIndex2Tags, usedIsolatedTags, true)
		if !tags.isEmpty() {
			folTokenTags = tags
			folIndexWithTags = i
			break
		}
	}

	if prevIndexWithTags == -1 || folIndexWithTags == -1 {
		// tags are only interpolated for tokens between tokens with tags
		return &neighborTags{}
	}
	if folIndexWithTags-prevIndexWithTags-1 <= maxGapSize {
		prevTokenTags.intersect(folTokenTags)
		return prevTokenTags
	}
	return &neighborTags{}
}
