package markup

import (
	"math/rand"
	"strings"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markup-translator/internal/align"
	"markup-translator/internal/tag"
	"markup-translator/internal/types"
)

// tag constants used throughout the markup tests; opening and closing tags
// of a pair carry different ids, pairing is established via the tag map only
var (
	open1  = tag.Opening(0)
	close1 = tag.Closing(1)
	open2  = tag.Opening(2)
	close2 = tag.Closing(3)
	open3  = tag.Opening(4)
	close3 = tag.Closing(5)
	iso1   = tag.Isolated(6)
	iso2   = tag.Isolated(7)
)

// symbols maps readable tag names to coded tags
var symbols = map[string]string{
	"OPEN1": open1, "CLOSE1": close1,
	"OPEN2": open2, "CLOSE2": close2,
	"OPEN3": open3, "CLOSE3": close3,
	"ISO1": iso1, "ISO2": iso2,
}

// toks converts a whitespace separated string with readable tag names into
// a token slice with coded tags
func toks(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	for i, f := range fields {
		if coded, ok := symbols[f]; ok {
			fields[i] = coded
		}
	}
	return fields
}

func testMap() *tag.Map {
	m := tag.NewMap()
	m.Put(open1, close1)
	m.Put(open2, close2)
	m.Put(open3, close3)
	return m
}

func exact(t *testing.T, rawAlignments string) *align.Exact {
	t.Helper()
	algn, err := align.NewExact(rawAlignments)
	require.NoError(t, err)
	return algn
}

func probabilistic(t *testing.T, rawAlignments string) *align.Probabilistic {
	t.Helper()
	algn, err := align.NewProbabilistic(rawAlignments)
	require.NoError(t, err)
	return algn
}

func TestInsert(t *testing.T) {
	source := toks("ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2")
	target := toks("Das ist ein Test .")
	algn := exact(t, "0-0 1-1 2-2 3-3 4-4 5-5")
	expected := toks("ISO1 OPEN1 Das CLOSE1 ist ein OPEN2 Test . CLOSE2 ISO2")

	for _, strategy := range []types.Strategy{
		types.StrategyBaseline, types.StrategyImproved, types.StrategyComplete,
	} {
		result, err := Insert(source, target, algn, Options{Strategy: strategy, MaxGapSize: 1})
		require.NoError(t, err)
		assert.Equal(t, expected, result, "strategy %s", strategy)
	}
}

func TestInsertDefaultsToComplete(t *testing.T) {
	source := toks("OPEN1 x CLOSE1 y")
	target := toks("a b")
	result, err := Insert(source, target, exact(t, "0-0 1-1"), Options{})
	require.NoError(t, err)
	assert.Equal(t, toks("OPEN1 a CLOSE1 b"), result)
}

func TestInsertInconsistentMarkup(t *testing.T) {
	// closing tag in front of its opening tag cannot be paired
	source := toks("x CLOSE1 y OPEN1 z")
	for _, strategy := range []types.Strategy{
		types.StrategyBaseline, types.StrategyImproved, types.StrategyComplete,
	} {
		_, err := Insert(source, toks("a b c"), exact(t, "0-0 1-1 2-2"),
			Options{Strategy: strategy, MaxGapSize: 1})
		require.Error(t, err, "strategy %s", strategy)
		assert.True(t, types.IsCode(err, types.ErrMarkup), "strategy %s", strategy)
	}
}

func quickConfig() *quick.Config {
	return &quick.Config{
		MaxCount: 100,
		Rand:     rand.New(rand.NewSource(42)),
	}
}

// runCleanupChain applies the shared cleanup passes in pipeline order
func runCleanupChain(tagMap *tag.Map, tokens []string) ([]string, error) {
	cleaned := moveTagsFromBetweenBpeFragments(tokens, tagMap)
	cleaned = undoBytePairEncoding(cleaned)
	cleaned = handleInvertedTags(tagMap, cleaned)
	cleaned = removeRedundantTags(tagMap, cleaned)
	cleaned, err := balanceTags(tagMap, cleaned)
	if err != nil {
		return nil, err
	}
	return mergeNeighborTagPairs(tagMap, cleaned), nil
}

// randomTaggedTokens sprinkles 1-20 random tags over a fixed token sequence
// with sub-word fragments
func randomTaggedTokens(rng *rand.Rand) []string {
	baseTokens := []string{"x", "y@@", "z", "a", "b@@", "c@@", "i", "j", "k"}
	allTags := []string{iso1, iso2, open1, close1, open2, close2, open3, close3}
	tokens := append([]string(nil), baseTokens...)
	numberOfTags := rng.Intn(20) + 1
	for i := 0; i < numberOfTags; i++ {
		oneTag := allTags[rng.Intn(len(allTags))]
		pos := rng.Intn(len(tokens) + 1)
		tokens = append(tokens[:pos:pos], append([]string{oneTag}, tokens[pos:]...)...)
	}
	return tokens
}

// Whatever tag salad the reinsertion produces, the cleanup chain must end
// in properly nested markup.
func TestTagCleanupChainProperty(t *testing.T) {
	tagMap := testMap()

	f := func(seed int64) bool {
		tokens := randomTaggedTokens(rand.New(rand.NewSource(seed)))
		cleaned, err := runCleanupChain(tagMap, tokens)
		if err != nil {
			return false
		}
		return isProperlyNested(cleaned, tagMap)
	}
	if err := quick.Check(f, quickConfig()); err != nil {
		t.Error(err)
	}
}

// Running the cleanup chain on its own output must not change it.
func TestTagCleanupChainIdempotence(t *testing.T) {
	tagMap := testMap()

	f := func(seed int64) bool {
		tokens := randomTaggedTokens(rand.New(rand.NewSource(seed)))
		once, err := runCleanupChain(tagMap, tokens)
		if err != nil {
			return false
		}
		twice, err := runCleanupChain(tagMap, once)
		if err != nil {
			return false
		}
		if len(once) != len(twice) {
			return false
		}
		for i := range once {
			if once[i] != twice[i] {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, quickConfig()); err != nil {
		t.Error(err)
	}
}

// Every tag of the source sentence must reappear in the reinserted target,
// for every strategy and regardless of alignment coverage.
func TestInsertConservesTags(t *testing.T) {
	source := toks("ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2")
	testCases := []struct {
		name          string
		target        string
		rawAlignments string
	}{
		{"full alignment", "Das ist ein Test .", "0-0 1-1 2-2 3-3 4-4 5-5"},
		{"reordering alignment", "Das ist ein Test .", "0-3 1-2 2-1 3-0 4-4 5-5"},
		{"sparse alignment", "Das", "0-0"},
		{"empty alignment", "Das ist ein Test .", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for _, strategy := range []types.Strategy{
				types.StrategyBaseline, types.StrategyImproved, types.StrategyComplete,
			} {
				result, err := Insert(source, toks(tc.target), exact(t, tc.rawAlignments),
					Options{Strategy: strategy, MaxGapSize: 1})
				require.NoError(t, err, "strategy %s", strategy)
				for _, oneToken := range source {
					if tag.IsTag(oneToken) {
						assert.Contains(t, result, oneToken, "strategy %s", strategy)
					}
				}
			}
		})
	}
}

// isProperlyNested checks that all tag pairs in the tokens nest like XML
// elements; isolated tags are ignored
func isProperlyNested(tokens []string, tagMap *tag.Map) bool {
	var stack []string
	for _, oneToken := range tokens {
		switch {
		case tag.IsOpening(oneToken):
			stack = append(stack, oneToken)
		case tag.IsClosing(oneToken):
			openingTag, ok := tagMap.OpeningOf(oneToken)
			if !ok {
				return false
			}
			if len(stack) == 0 || stack[len(stack)-1] != openingTag {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}
