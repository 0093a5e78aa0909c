package align

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"markup-translator/internal/logger"
)

// Exact provides token alignments based on explicit index pairs, as
// reported by engines running with hard attention output. Index shifts are
// applied eagerly by rewriting the mapping.
type Exact struct {
	// mapping of target token index to sorted source token indexes
	target2Sources map[int][]int
}

// NewExact creates a new exact alignment from the raw alignment pairs in
// "source-target" format. An empty input yields a valid empty alignment.
func NewExact(rawAlignments string) (*Exact, error) {
	a := &Exact{target2Sources: make(map[int][]int)}
	if strings.TrimSpace(rawAlignments) == "" {
		// no alignments provided
		return a, nil
	}

	for _, pair := range strings.Split(rawAlignments, " ") {
		indices := strings.Split(pair, "-")
		if len(indices) != 2 {
			continue
		}
		sourceIndex, err := strconv.Atoi(indices[0])
		if err != nil {
			return nil, malformed(rawAlignments, err)
		}
		targetIndex, err := strconv.Atoi(indices[1])
		if err != nil {
			return nil, malformed(rawAlignments, err)
		}
		a.target2Sources[targetIndex] = append(a.target2Sources[targetIndex], sourceIndex)
	}

	for _, sourceIndexes := range a.target2Sources {
		sort.Ints(sourceIndexes)
	}
	return a, nil
}

// ShiftSourceIndexes shifts all source indexes by the given offset.
// Indexes that become negative are dropped.
func (a *Exact) ShiftSourceIndexes(offset int) {
	shifted := make(map[int][]int)
	for targetIndex, sourceIndexes := range a.target2Sources {
		var newSourceIndexes []int
		for _, oldSourceIndex := range sourceIndexes {
			sourceIndexWithOffset := oldSourceIndex + offset
			if sourceIndexWithOffset < 0 {
				logger.Warn("shifting source index resulted in negative index, ignoring this index")
			} else {
				newSourceIndexes = append(newSourceIndexes, sourceIndexWithOffset)
			}
		}
		if len(newSourceIndexes) > 0 {
			shifted[targetIndex] = newSourceIndexes
		}
	}
	a.target2Sources = shifted
}

// ShiftTargetIndexes shifts all target indexes by the given offset.
// Indexes that become negative are dropped.
func (a *Exact) ShiftTargetIndexes(offset int) {
	shifted := make(map[int][]int)
	for targetIndex, sourceIndexes := range a.target2Sources {
		targetIndexWithOffset := targetIndex + offset
		if targetIndexWithOffset < 0 {
			logger.Warn("shifting target index resulted in negative index, ignoring this index")
		} else {
			shifted[targetIndexWithOffset] = sourceIndexes
		}
	}
	a.target2Sources = shifted
}

// SourceTokenIndexes returns the source token indexes aligned with the
// given target token index, sorted; empty if none
func (a *Exact) SourceTokenIndexes(targetTokenIndex int) []int {
	return a.target2Sources[targetTokenIndex]
}

// PointedSourceTokens returns all source token indexes some target token
// points to, sorted and deduplicated
func (a *Exact) PointedSourceTokens() []int {
	collected := make(map[int]bool)
	for _, sourceIndexes := range a.target2Sources {
		for _, sourceIndex := range sourceIndexes {
			collected[sourceIndex] = true
		}
	}
	pointed := make([]int, 0, len(collected))
	for sourceIndex := range collected {
		pointed = append(pointed, sourceIndex)
	}
	sort.Ints(pointed)
	return pointed
}

func (a *Exact) sortedTargetIndexes() []int {
	targets := make([]int, 0, len(a.target2Sources))
	for targetIndex := range a.target2Sources {
		targets = append(targets, targetIndex)
	}
	sort.Ints(targets)
	return targets
}

// String returns the raw alignment pairs in the engine's native
// "source-target" format, sorted by source index
func (a *Exact) String() string {
	source2Targets := make(map[int][]int)
	for _, targetIndex := range a.sortedTargetIndexes() {
		for _, sourceIndex := range a.target2Sources[targetIndex] {
			source2Targets[sourceIndex] = append(source2Targets[sourceIndex], targetIndex)
		}
	}
	sources := make([]int, 0, len(source2Targets))
	for sourceIndex := range source2Targets {
		sources = append(sources, sourceIndex)
	}
	sort.Ints(sources)

	var sb strings.Builder
	for _, sourceIndex := range sources {
		targetIndexes := source2Targets[sourceIndex]
		sort.Ints(targetIndexes)
		for _, targetIndex := range targetIndexes {
			fmt.Fprintf(&sb, "%d-%d ", sourceIndex, targetIndex)
		}
	}
	return strings.TrimSpace(sb.String())
}

// TargetSourcePairs returns the alignment pairs in "target-source" format,
// sorted by target index. This inverted rendering is used in debug logs.
func (a *Exact) TargetSourcePairs() string {
	var sb strings.Builder
	for _, targetIndex := range a.sortedTargetIndexes() {
		for _, sourceIndex := range a.target2Sources[targetIndex] {
			fmt.Fprintf(&sb, "%d-%d ", targetIndex, sourceIndex)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Len returns the number of target token indexes with alignments
func (a *Exact) Len() int {
	return len(a.target2Sources)
}
