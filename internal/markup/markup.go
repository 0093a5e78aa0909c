// Package markup re-inserts inline markup from a source sentence into its
// translation using token alignments. Markup is represented as tag tokens,
// see the tag package. Three strategies are supported, from a naive
// forward-binding insertion to a complete token-to-tags mapping with gap
// interpolation.
package markup

import (
	"markup-translator/internal/align"
	"markup-translator/internal/logger"
	"markup-translator/internal/tag"
	"markup-translator/internal/types"
)

// eos explicitly marks the end of the target sentence during re-insertion
const eos = "end-of-target-sentence-marker"

// Options control the re-insertion strategy.
type Options struct {
	// Strategy selects the re-insertion strategy
	Strategy types.Strategy
	// MaxGapSize is the maximum gap size for interpolation with the
	// complete mapping strategy
	MaxGapSize int
}

// Insert re-inserts the markup of the given source tokens into the given
// target tokens using the given alignments. The source tokens are expected
// to carry balanced tags.
func Insert(sourceTokensWithTags, targetTokensWithoutTags []string, algn align.Alignment, opts Options) ([]string, error) {
	switch opts.Strategy {
	case types.StrategyBaseline:
		return insertBaseline(sourceTokensWithTags, targetTokensWithoutTags, algn)
	case types.StrategyImproved:
		return insertImproved(sourceTokensWithTags, targetTokensWithoutTags, algn)
	case types.StrategyComplete:
		return insertComplete(sourceTokensWithTags, targetTokensWithoutTags, algn, opts.MaxGapSize)
	default:
		return insertComplete(sourceTokensWithTags, targetTokensWithoutTags, algn, opts.MaxGapSize)
	}
}

// insertBaseline binds every tag to the following token and copies it to
// the aligned target position. Naive, kept for comparison.
func insertBaseline(sourceTokensWithTags, targetTokensWithoutTags []string, algn align.Alignment) ([]string, error) {
	tagMap, err := tag.NewMapFromTokens(sourceTokensWithTags)
	if err != nil {
		return nil, err
	}

	sourceTokenIndex2Tags := buildIndexMapBaseline(sourceTokensWithTags)

	targetTokensWithTags := reinsertBaseline(sourceTokenIndex2Tags, targetTokensWithoutTags, algn)
	logger.Debug("target sentence with inserted tags", logger.Tokens("tokens", targetTokensWithTags))

	targetTokensWithTags = moveTagsFromBetweenBpeFragments(targetTokensWithTags, tagMap)
	targetTokensWithTags = undoBytePairEncoding(targetTokensWithTags)
	targetTokensWithTags = swapInvertedTags(tagMap, targetTokensWithTags)
	return balanceTags(tagMap, targetTokensWithTags)
}

// insertImproved takes tag direction into account, moves tags to pointed
// tokens and runs the full set of cleanup passes afterwards.
func insertImproved(sourceTokensWithTags, targetTokensWithoutTags []string, algn align.Alignment) ([]string, error) {
	sourceTokensWithoutTags := tag.StripTokens(sourceTokensWithTags)

	tagMap, err := tag.NewMapFromTokens(sourceTokensWithTags)
	if err != nil {
		return nil, err
	}

	isoReplacements := make(map[string][]string)
	sourceTokensWithTags = replaceEmptyTagPairsWithIsos(sourceTokensWithTags, tagMap, isoReplacements)

	sourceSentence := tag.NewSplitSentence(sourceTokensWithTags, tagMap)

	sourceTokenIndex2Tags := buildIndexMapImproved(sourceSentence)

	// tags of source tokens no target token points to would get lost,
	// so move them to pointed tokens first
	moveSourceTagsToPointedTokens(sourceTokenIndex2Tags, tagMap,
		algn.PointedSourceTokens(), len(sourceTokensWithoutTags))

	targetTokensWithTags := reinsertImproved(sourceSentence, sourceTokenIndex2Tags, targetTokensWithoutTags, algn)
	logger.Debug("target sentence with inserted tags", logger.Tokens("tokens", targetTokensWithTags))

	targetTokensWithTags = moveTagsFromBetweenBpeFragments(targetTokensWithTags, tagMap)
	targetTokensWithTags = undoBytePairEncoding(targetTokensWithTags)
	targetTokensWithTags = handleInvertedTags(tagMap, targetTokensWithTags)
	targetTokensWithTags = removeRedundantTags(tagMap, targetTokensWithTags)
	targetTokensWithTags, err = balanceTags(tagMap, targetTokensWithTags)
	if err != nil {
		return nil, err
	}
	targetTokensWithTags = mergeNeighborTagPairs(tagMap, targetTokensWithTags)

	unusedTags := collectUnusedTags(sourceTokensWithTags, targetTokensWithTags)
	targetTokensWithTags = append(targetTokensWithTags, unusedTags...)

	targetTokensWithTags = replaceIsosWithEmptyTagPairs(targetTokensWithTags, isoReplacements)
	logger.Debug("target sentence with cleaned tags", logger.Tokens("tokens", targetTokensWithTags))

	return targetTokensWithTags, nil
}

// insertComplete assigns each source token all tags that apply to it and
// wraps every aligned target token accordingly. Gaps in the alignment are
// interpolated from the neighbor tokens, bounded by maxGapSize.
func insertComplete(sourceTokensWithTags, targetTokensWithoutTags []string, algn align.Alignment, maxGapSize int) ([]string, error) {
	sourceTokensWithoutTags := tag.StripTokens(sourceTokensWithTags)

	tagMap, err := tag.NewMapFromTokens(sourceTokensWithTags)
	if err != nil {
		return nil, err
	}

	isoReplacements := make(map[string][]string)
	sourceTokensWithTags = replaceEmptyTagPairsWithIsos(sourceTokensWithTags, tagMap, isoReplacements)

	sourceSentence := tag.NewSplitSentence(sourceTokensWithTags, tagMap)

	sourceTokenIndex2Tags := buildIndexMapComplete(sourceSentence, tagMap)

	moveIsoTagsToPointedTokens(sourceTokenIndex2Tags,
		algn.PointedSourceTokens(), len(sourceTokensWithoutTags))

	targetTokensWithTags := reinsertComplete(sourceSentence, sourceTokenIndex2Tags, targetTokensWithoutTags, algn, maxGapSize)
	logger.Debug("target sentence with inserted tags", logger.Tokens("tokens", targetTokensWithTags))

	targetTokensWithTags = moveTagsFromBetweenBpeFragments(targetTokensWithTags, tagMap)
	targetTokensWithTags = undoBytePairEncoding(targetTokensWithTags)
	targetTokensWithTags = mergeNeighborTagPairs(tagMap, targetTokensWithTags)

	unusedTags := collectUnusedTags(sourceTokensWithTags, targetTokensWithTags)
	targetTokensWithTags = append(targetTokensWithTags, unusedTags...)

	targetTokensWithTags = replaceIsosWithEmptyTagPairs(targetTokensWithTags, isoReplacements)
	logger.Debug("target sentence with cleaned tags", logger.Tokens("tokens", targetTokensWithTags))

	return targetTokensWithTags, nil
}

// isBpeFragment checks if the given token is a byte pair encoding fragment.
func isBpeFragment(token string) bool {
	return len(token) >= 2 && token[len(token)-2:] == "@@"
}
