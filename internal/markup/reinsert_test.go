package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"markup-translator/internal/align"
	"markup-translator/internal/tag"
)

func runReinsertImproved(source, target string, algn align.Alignment) []string {
	sourceSentence := tag.NewSplitSentence(toks(source), testMap())
	index2tags := buildIndexMapImproved(sourceSentence)
	return reinsertImproved(sourceSentence, index2tags, toks(target), algn)
}

func runReinsertComplete(source, target string, algn align.Alignment, maxGapSize int) []string {
	tagMap := testMap()
	sourceSentence := tag.NewSplitSentence(toks(source), tagMap)
	index2tags := buildIndexMapComplete(sourceSentence, tagMap)
	return reinsertComplete(sourceSentence, index2tags, toks(target), algn, maxGapSize)
}

func TestReinsertBaseline(t *testing.T) {
	// parallel alignment
	m := buildIndexMapBaseline(toks("ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2"))
	result := reinsertBaseline(m, toks("Das ist ein Test ."), exact(t, "0-0 1-1 2-2 3-3 4-4 5-5"))
	assert.Equal(t, toks("ISO1 OPEN1 Das CLOSE1 ist ein OPEN2 Test . CLOSE2 ISO2"), result)

	// tags of unaligned source tokens are appended at the end
	m = buildIndexMapBaseline(toks("OPEN1 x CLOSE1 y"))
	result = reinsertBaseline(m, toks("a"), exact(t, "0-0"))
	assert.Equal(t, toks("OPEN1 a CLOSE1"), result)
}

func TestReinsertImprovedWithExactAlignments(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		target   string
		raw      string
		expected string
	}{
		{
			"parallel alignment",
			"ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2",
			"Das ist ein Test .",
			"0-0 1-1 2-2 3-3 4-4 5-5",
			"ISO1 OPEN1 Das CLOSE1 ist ein OPEN2 Test . CLOSE2 ISO2",
		},
		{
			"reversed alignment",
			"ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2",
			"Test ein ist das .",
			"0-3 1-2 2-1 3-0 4-4 5-5",
			"ISO1 OPEN2 Test ein ist OPEN1 das CLOSE1 . CLOSE2 ISO2",
		},
		{
			"end of sentence points to source token with tag",
			"ISO1 OPEN1 Zum Inhalt springen CLOSE1 ISO2",
			"aller au contenu",
			"0-0 1-2 2-3",
			"ISO1 OPEN1 aller au contenu CLOSE1 ISO2",
		},
		{
			"tags enclosing the whole sentence",
			"ISO1 OPEN1 a b c d CLOSE1 ISO2",
			"b a d c",
			"0-1 1-0 2-3 4-2",
			"ISO1 OPEN1 b a d c CLOSE1 ISO2",
		},
		{
			"tag pair over the whole sentence",
			"OPEN1 a b c d CLOSE1",
			"b a d c",
			"0-1 1-0 2-3 4-2",
			"OPEN1 b a d c CLOSE1",
		},
		{
			"multiple tag pairs over the whole sentence",
			"OPEN1 OPEN2 OPEN3 a b c d CLOSE3 CLOSE2 CLOSE1",
			"b a d c",
			"0-1 1-0 2-3 4-2",
			"OPEN1 OPEN2 OPEN3 b a d c CLOSE3 CLOSE2 CLOSE1",
		},
		{
			"tokens with isolated tags are pointed to multiple times",
			"x ISO1 ISO2 OPEN1 y z CLOSE1",
			"a b c",
			"1-0 1-1 2-2",
			"ISO1 ISO2 OPEN1 a OPEN1 b c CLOSE1",
		},
		{
			"one target token to multiple source tokens with same tags",
			"x ISO1 ISO2 OPEN1 y z CLOSE1",
			"a b c",
			"1-0 2-0 2-2",
			"ISO1 ISO2 OPEN1 a CLOSE1 b c CLOSE1",
		},
		{
			"single tag pair with isolated tag at end",
			"x OPEN1 y z ISO1 CLOSE1",
			"a b c",
			"0-0 1-1 2-2",
			"a OPEN1 b c CLOSE1 ISO1",
		},
		{
			"single tag pair with isolated tag at beginning",
			"ISO1 OPEN1 x y CLOSE1 z",
			"a b c",
			"0-0 1-1 2-2",
			"ISO1 OPEN1 a b CLOSE1 c",
		},
		{
			"split tag pair",
			"OPEN1 x y z CLOSE1 a b c",
			"X1 N Z X2 N N",
			"0-0 0-3 2-2",
			"OPEN1 X1 N Z CLOSE1 OPEN1 X2 N N",
		},
		{
			"closing tags in front of opening tag",
			"OPEN1 x y z CLOSE1 a b c",
			"Z1 Z2 X N N N",
			"0-2 2-0 2-1",
			"Z1 CLOSE1 Z2 CLOSE1 OPEN1 X N N N",
		},
		{
			"interleaved tags",
			"OPEN1 x y z CLOSE1 a b c",
			"Z1 N X1 Z2 N X2",
			"0-2 0-5 2-0 2-3",
			"Z1 CLOSE1 N OPEN1 X1 Z2 CLOSE1 N OPEN1 X2",
		},
	}

	for _, tc := range testCases {
		result := runReinsertImproved(tc.source, tc.target, exact(t, tc.raw))
		assert.Equal(t, toks(tc.expected), result, tc.name)
	}
}

func TestReinsertImprovedWithProbabilisticAlignments(t *testing.T) {
	source := "ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2"

	// parallel alignment
	algn := probabilistic(t,
		"1,0,0,0,0,0 0,1,0,0,0,0 0,0,1,0,0,0 0,0,0,1,0,0 0,0,0,0,1,0 0,0,0,0,0,1")
	result := runReinsertImproved(source, "Das ist ein Test .", algn)
	assert.Equal(t, toks("ISO1 OPEN1 Das CLOSE1 ist ein OPEN2 Test . CLOSE2 ISO2"), result)

	// reversed alignment
	algn = probabilistic(t,
		"0,0,0,1,0,0 0,0,1,0,0,0 0,1,0,0,0,0 1,0,0,0,0,0 0,0,0,0,1,0 0,0,0,0,0,1")
	result = runReinsertImproved(source, "Test ein ist das .", algn)
	assert.Equal(t, toks("ISO1 OPEN2 Test ein ist OPEN1 das CLOSE1 . CLOSE2 ISO2"), result)
}

func TestReinsertCompleteWithExactAlignments(t *testing.T) {
	testCases := []struct {
		name     string
		source   string
		target   string
		raw      string
		expected string
	}{
		{
			"parallel alignment",
			"ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2",
			"Das ist ein Test .",
			"0-0 1-1 2-2 3-3 4-4 5-5",
			"ISO1 OPEN1 Das CLOSE1 ist ein OPEN2 Test CLOSE2 OPEN2 . CLOSE2 ISO2",
		},
		{
			"reversed alignment",
			"ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2",
			"Test ein ist das .",
			"0-3 1-2 2-1 3-0 4-4 5-5",
			"ISO1 OPEN2 Test CLOSE2 ein ist OPEN1 das CLOSE1 OPEN2 . CLOSE2 ISO2",
		},
		{
			"end of sentence points to source token with isolated tag",
			"ISO1 OPEN1 Zum Inhalt ISO2 springen CLOSE1 end",
			"aller au contenu",
			"0-0 1-2 2-3",
			"ISO1 OPEN1 aller CLOSE1 au OPEN1 contenu CLOSE1 ISO2",
		},
		{
			"tags enclosing the whole sentence",
			"ISO1 OPEN1 a b c d CLOSE1 ISO2",
			"b a d c",
			"0-1 1-0 2-3 4-2",
			"ISO1 OPEN1 b a d c CLOSE1 ISO2",
		},
		{
			"tag pair over the whole sentence",
			"OPEN1 a b c d CLOSE1",
			"b a d c",
			"0-1 1-0 2-3 4-2",
			"OPEN1 b a d c CLOSE1",
		},
		{
			"multiple tag pairs over the whole sentence",
			"OPEN1 OPEN2 OPEN3 a b c d CLOSE3 CLOSE2 CLOSE1",
			"b a d c",
			"0-1 1-0 2-3 4-2",
			"OPEN1 OPEN2 OPEN3 b a d c CLOSE3 CLOSE2 CLOSE1",
		},
		{
			"tokens with isolated tags are pointed to multiple times",
			"x ISO1 ISO2 OPEN1 y z CLOSE1",
			"a b c",
			"1-0 1-1 2-2",
			"ISO1 ISO2 OPEN1 a CLOSE1 OPEN1 b CLOSE1 OPEN1 c CLOSE1",
		},
		{
			"one target token to multiple source tokens with same tags",
			"x ISO1 ISO2 OPEN1 y z CLOSE1",
			"a b c",
			"1-0 2-0 2-2",
			"ISO1 ISO2 OPEN1 a CLOSE1 b OPEN1 c CLOSE1",
		},
		{
			"single tag pair with isolated tag at end",
			"x OPEN1 y z ISO1 CLOSE1",
			"a b c",
			"0-0 1-1 2-2",
			"a OPEN1 b CLOSE1 OPEN1 c CLOSE1 ISO1",
		},
		{
			"single tag pair with isolated tag at beginning",
			"ISO1 OPEN1 x y CLOSE1 z",
			"a b c",
			"0-0 1-1 2-2",
			"ISO1 OPEN1 a CLOSE1 OPEN1 b CLOSE1 c",
		},
		{
			"split tag pair",
			"OPEN1 x y z CLOSE1 a b c",
			"X1 N Z X2 N N",
			"0-0 0-3 2-2",
			"OPEN1 X1 CLOSE1 N OPEN1 Z CLOSE1 OPEN1 X2 CLOSE1 N N",
		},
		{
			"closing tags in front of opening tag",
			"OPEN1 x y z CLOSE1 a b c",
			"Z1 Z2 X N N N",
			"0-2 2-0 2-1",
			"OPEN1 Z1 CLOSE1 OPEN1 Z2 CLOSE1 OPEN1 X CLOSE1 N N N",
		},
		{
			"interleaved tags",
			"OPEN1 x y z CLOSE1 a b c",
			"Z1 N X1 Z2 N X2",
			"0-2 0-5 2-0 2-3",
			"OPEN1 Z1 CLOSE1 N OPEN1 X1 CLOSE1 OPEN1 Z2 CLOSE1 N OPEN1 X2 CLOSE1",
		},
	}

	for _, tc := range testCases {
		result := runReinsertComplete(tc.source, tc.target, exact(t, tc.raw), 0)
		assert.Equal(t, toks(tc.expected), result, tc.name)
	}
}

func TestReinsertCompleteWithProbabilisticAlignments(t *testing.T) {
	source := "ISO1 OPEN1 This CLOSE1 is a OPEN2 test . CLOSE2 ISO2"

	// parallel alignment
	algn := probabilistic(t,
		"1,0,0,0,0,0 0,1,0,0,0,0 0,0,1,0,0,0 0,0,0,1,0,0 0,0,0,0,1,0 0,0,0,0,0,1")
	result := runReinsertComplete(source, "Das ist ein Test .", algn, 0)
	assert.Equal(t,
		toks("ISO1 OPEN1 Das CLOSE1 ist ein OPEN2 Test CLOSE2 OPEN2 . CLOSE2 ISO2"), result)

	// reversed alignment
	algn = probabilistic(t,
		"0,0,0,1,0,0 0,0,1,0,0,0 0,1,0,0,0,0 1,0,0,0,0,0 0,0,0,0,1,0 0,0,0,0,0,1")
	result = runReinsertComplete(source, "Test ein ist das .", algn, 0)
	assert.Equal(t,
		toks("ISO1 OPEN2 Test CLOSE2 ein ist OPEN1 das CLOSE1 OPEN2 . CLOSE2 ISO2"), result)
}

func TestReinsertCompleteInterpolation(t *testing.T) {
	// an unaligned token between two tokens with the same tags gets those
	// tags when the gap is small enough
	result := runReinsertComplete(
		"OPEN1 x y z CLOSE1 a b c", "X1 N Z X2 N N", exact(t, "0-0 0-3 2-2"), 1)
	assert.Equal(t,
		toks("OPEN1 X1 CLOSE1 OPEN1 N CLOSE1 OPEN1 Z CLOSE1 OPEN1 X2 CLOSE1 N N"), result)

	// a larger gap size also covers the trailing unaligned tokens
	result = runReinsertComplete(
		"OPEN1 x y z CLOSE1 a b c", "X1 N Z X2 N N", exact(t, "0-0 0-3 2-2"), 2)
	assert.Equal(t,
		toks("OPEN1 X1 CLOSE1 OPEN1 N CLOSE1 OPEN1 Z CLOSE1 OPEN1 X2 CLOSE1 "+
			"OPEN1 N CLOSE1 OPEN1 N CLOSE1"), result)

	// an unaligned token at sentence start takes the tags of the first
	// aligned token
	result = runReinsertComplete("a OPEN1 b CLOSE1", "N X", exact(t, "1-1"), 1)
	assert.Equal(t, toks("OPEN1 N CLOSE1 OPEN1 X CLOSE1"), result)
}
