package align

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"markup-translator/internal/logger"
)

// Probabilistic provides token alignments based on a score matrix, one row
// per target token and one column per source token. Index shifts are stored
// as offsets and applied lazily at read time.
type Probabilistic struct {
	// scores[targetIndex][sourceIndex], in unshifted engine coordinates
	scores [][]float64

	targetIndexOffset int
	sourceIndexOffset int
}

// NewProbabilistic creates a new probabilistic alignment from raw score
// rows, comma-separated scores within a row and space-separated rows. An
// empty input yields a valid empty alignment.
func NewProbabilistic(rawAlignments string) (*Probabilistic, error) {
	a := &Probabilistic{}
	if strings.TrimSpace(rawAlignments) == "" {
		// no alignments provided
		return a, nil
	}

	// one row for each target token
	targetRows := strings.Split(rawAlignments, " ")
	a.scores = make([][]float64, len(targetRows))
	width := -1
	for targetIndex, row := range targetRows {
		sourceScores := strings.Split(row, ",")
		if width == -1 {
			width = len(sourceScores)
		} else if len(sourceScores) != width {
			return nil, malformed(rawAlignments, nil)
		}
		a.scores[targetIndex] = make([]float64, len(sourceScores))
		for sourceIndex, s := range sourceScores {
			score, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, malformed(rawAlignments, err)
			}
			a.scores[targetIndex][sourceIndex] = score
		}
	}
	return a, nil
}

// Scores returns the underlying score matrix in unshifted coordinates;
// nil if no alignments were provided
func (a *Probabilistic) Scores() [][]float64 {
	return a.scores
}

// TargetIndexOffset returns the accumulated target index offset
func (a *Probabilistic) TargetIndexOffset() int {
	return a.targetIndexOffset
}

// SourceIndexOffset returns the accumulated source index offset
func (a *Probabilistic) SourceIndexOffset() int {
	return a.sourceIndexOffset
}

// ShiftSourceIndexes shifts all source indexes by the given offset.
// With a negative total offset, reads ignore the source indexes that
// shifted below zero.
func (a *Probabilistic) ShiftSourceIndexes(offset int) {
	a.sourceIndexOffset += offset
	if a.sourceIndexOffset < 0 {
		logger.Warn("shifting source indexes resulted in negative indexes, reads ignore them",
			logger.Int("offset", a.sourceIndexOffset))
	}
}

// ShiftTargetIndexes shifts all target indexes by the given offset.
// With a negative total offset, reads ignore the target indexes that
// shifted below zero.
func (a *Probabilistic) ShiftTargetIndexes(offset int) {
	a.targetIndexOffset += offset
	if a.targetIndexOffset < 0 {
		logger.Warn("shifting target indexes resulted in negative indexes, reads ignore them",
			logger.Int("offset", a.targetIndexOffset))
	}
}

// row maps the external target token index to a score row; ok is false if
// the index points outside the matrix
func (a *Probabilistic) row(targetTokenIndex int) ([]float64, bool) {
	rawIndex := targetTokenIndex - a.targetIndexOffset
	if rawIndex < 0 || rawIndex >= len(a.scores) {
		return nil, false
	}
	return a.scores[rawIndex], true
}

// SourceTokenIndexes returns the single best aligned source token index for
// the given target token index; empty if no score qualifies
func (a *Probabilistic) SourceTokenIndexes(targetTokenIndex int) []int {
	best := a.BestSourceTokenIndex(targetTokenIndex, 0.0)
	if best < 0 {
		return nil
	}
	return []int{best}
}

// BestSourceTokenIndex returns the source token index with the highest
// alignment score equal or above the threshold, or -1 if no source token
// qualifies. Ties break to the lowest source index.
func (a *Probabilistic) BestSourceTokenIndex(targetTokenIndex int, threshold float64) int {
	row, ok := a.row(targetTokenIndex)
	if !ok {
		return -1
	}
	maxScore := 0.0
	maxScoreIndex := -1
	for i, score := range row {
		if score >= threshold && score > maxScore && i+a.sourceIndexOffset >= 0 {
			maxScore = score
			maxScoreIndex = i
		}
	}
	if maxScoreIndex < 0 {
		return -1
	}
	return maxScoreIndex + a.sourceIndexOffset
}

// SourceTokenIndexesAbove returns all source token indexes with an
// alignment score equal or above the threshold, sorted; empty if none
func (a *Probabilistic) SourceTokenIndexesAbove(targetTokenIndex int, threshold float64) []int {
	row, ok := a.row(targetTokenIndex)
	if !ok {
		return nil
	}
	var sourceTokenIndexes []int
	for i, score := range row {
		if score >= threshold {
			sourceIndexWithOffset := i + a.sourceIndexOffset
			if sourceIndexWithOffset >= 0 {
				sourceTokenIndexes = append(sourceTokenIndexes, sourceIndexWithOffset)
			}
		}
	}
	return sourceTokenIndexes
}

// PointedSourceTokens returns the best source token index of every target
// token, sorted and deduplicated
func (a *Probabilistic) PointedSourceTokens() []int {
	collected := make(map[int]bool)
	for rawIndex := range a.scores {
		best := a.BestSourceTokenIndex(rawIndex+a.targetIndexOffset, 0.0)
		if best >= 0 {
			collected[best] = true
		}
	}
	pointed := make([]int, 0, len(collected))
	for sourceIndex := range collected {
		pointed = append(pointed, sourceIndex)
	}
	sort.Ints(pointed)
	return pointed
}

// ToExactPairs returns the alignment as index pairs in the engine's native
// "source-target" format, keeping all links with a score equal or above
// the threshold
func (a *Probabilistic) ToExactPairs(threshold float64) string {
	var sb strings.Builder
	if len(a.scores) == 0 {
		return ""
	}
	// iterate over source tokens
	for sourceIndex := 0; sourceIndex < len(a.scores[0]); sourceIndex++ {
		for targetIndex := 0; targetIndex < len(a.scores); targetIndex++ {
			if a.scores[targetIndex][sourceIndex] >= threshold {
				sourceIndexWithOffset := sourceIndex + a.sourceIndexOffset
				targetIndexWithOffset := targetIndex + a.targetIndexOffset
				if sourceIndexWithOffset >= 0 && targetIndexWithOffset >= 0 {
					fmt.Fprintf(&sb, "%d-%d ", sourceIndexWithOffset, targetIndexWithOffset)
				}
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// BestPairs returns the best source token index for every target token as
// "target-source" pairs, independent of any threshold; -1 marks target
// tokens without a qualifying source token
func (a *Probabilistic) BestPairs() string {
	var sb strings.Builder
	for targetIndex := range a.scores {
		maxSourceIndex := -1
		maxSourceScore := 0.0
		for sourceIndex, score := range a.scores[targetIndex] {
			if score > maxSourceScore && sourceIndex+a.sourceIndexOffset >= 0 {
				maxSourceIndex = sourceIndex + a.sourceIndexOffset
				maxSourceScore = score
			}
		}
		targetIndexWithOffset := targetIndex + a.targetIndexOffset
		if targetIndexWithOffset >= 0 {
			fmt.Fprintf(&sb, "%d-%d ", targetIndexWithOffset, maxSourceIndex)
		}
	}
	return strings.TrimSpace(sb.String())
}

// String returns the score matrix in the engine's native row format
func (a *Probabilistic) String() string {
	rows := make([]string, len(a.scores))
	for targetIndex, row := range a.scores {
		cells := make([]string, len(row))
		for sourceIndex, score := range row {
			cells[sourceIndex] = strconv.FormatFloat(score, 'g', -1, 64)
		}
		rows[targetIndex] = strings.Join(cells, ",")
	}
	return strings.Join(rows, " ")
}
