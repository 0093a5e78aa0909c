// Package translator runs the sentence translation pipeline: strip markup,
// query the translation engine, parse the returned alignment and re-insert
// the markup into the translated tokens. Translation engines are attached
// via the Engine interface.
package translator

import (
	"context"
	"strings"

	"markup-translator/internal/align"
	"markup-translator/internal/errors"
	"markup-translator/internal/logger"
	"markup-translator/internal/markup"
	"markup-translator/internal/tag"
	"markup-translator/internal/types"
)

const (
	// DefaultConcurrency is the default number of sentences translated in
	// parallel per document
	DefaultConcurrency = 3
)

// Result is the engine's answer for a single sentence.
type Result struct {
	// TargetTokens are the translated tokens, without tags
	TargetTokens []string
	// RawAlignment is the token alignment in the engine's native text
	// format, either exact index pairs or a score matrix
	RawAlignment string
	// LeadingTokens is the number of synthetic tokens the engine prepended
	// to the source, e.g. a target language marker. Source indexes in the
	// alignment are off by this amount.
	LeadingTokens int
}

// Engine translates a tokenized sentence. Implementations wrap the actual
// translation backend.
type Engine interface {
	Translate(ctx context.Context, sourceTokens []string) (*Result, error)
}

// Options configure the markup re-insertion of a Translator.
type Options struct {
	// Strategy selects the re-insertion strategy
	Strategy types.Strategy
	// MaxGapSize is the maximum unaligned gap bridged by neighbor tag
	// interpolation with the complete mapping strategy
	MaxGapSize int
	// Concurrency is the number of sentences translated in parallel per
	// document
	Concurrency int
}

// SentenceResult is the outcome of translating a single sentence.
type SentenceResult struct {
	// TokensWithTags are the translated tokens with re-inserted tags
	TokensWithTags []string
	// Sentence is the translation with masked tags, ready for detokenization
	Sentence string
	// Recovered is true when the markup could not be transferred and the
	// bare translation was returned instead
	Recovered bool
}

// Translator translates tagged sentences with an Engine and re-inserts the
// markup into the result.
type Translator struct {
	engine      Engine
	opts        markup.Options
	concurrency int
	errorMgr    *errors.ErrorManager
	contexts    *contextRegistry
}

// New creates a Translator for the given engine. The error manager is
// optional; without it failures are only logged.
func New(engine Engine, opts Options, errorMgr *errors.ErrorManager) *Translator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Translator{
		engine: engine,
		opts: markup.Options{
			Strategy:   opts.Strategy,
			MaxGapSize: opts.MaxGapSize,
		},
		concurrency: concurrency,
		errorMgr:    errorMgr,
		contexts:    newContextRegistry(),
	}
}

// TranslateSentence translates a single tagged sentence of the given
// document. Markup and alignment inconsistencies are not fatal: the bare
// translation is returned with Recovered set and the failure is recorded.
func (t *Translator) TranslateSentence(
	ctx context.Context, docID string, sentenceIndex int,
	sourceTokensWithTags []string) (*SentenceResult, error) {

	docCtx := t.contexts.get(docID)

	cacheKey := strings.Join(sourceTokensWithTags, " ")
	if cached, ok := docCtx.cached(cacheKey); ok {
		logger.Debug("sentence cache hit",
			logger.String("docID", docID), logger.Int("sentence", sentenceIndex))
		return cached, nil
	}

	result, err := t.translateSentence(ctx, docID, sentenceIndex, sourceTokensWithTags)
	if err != nil {
		return nil, err
	}
	docCtx.store(cacheKey, result)
	return result, nil
}

func (t *Translator) translateSentence(
	ctx context.Context, docID string, sentenceIndex int,
	sourceTokensWithTags []string) (*SentenceResult, error) {

	sourceTokensWithoutTags := tag.StripTokens(sourceTokensWithTags)
	hasTags := len(sourceTokensWithoutTags) < len(sourceTokensWithTags)

	engineResult, err := t.engine.Translate(ctx, sourceTokensWithoutTags)
	if err != nil {
		logger.Error("engine translation failed", err,
			logger.String("docID", docID), logger.Int("sentence", sentenceIndex))
		t.record(docID, sentenceIndex, sourceTokensWithTags, errors.StageTranslation, err, false)
		return nil, types.NewAppError(types.ErrTranslation, "engine translation failed", err)
	}

	if !hasTags {
		return untagged(engineResult.TargetTokens, false), nil
	}

	algn, err := align.Parse(engineResult.RawAlignment)
	if err != nil {
		logger.Warn("malformed alignment, returning translation without tags",
			logger.String("docID", docID), logger.Int("sentence", sentenceIndex),
			logger.Err(err))
		t.record(docID, sentenceIndex, sourceTokensWithTags, errors.StageAlignment, err, true)
		return untagged(engineResult.TargetTokens, true), nil
	}

	// source indexes in the alignment include the synthetic leading tokens
	if engineResult.LeadingTokens > 0 {
		algn.ShiftSourceIndexes(-engineResult.LeadingTokens)
	}

	targetTokensWithTags, err := markup.Insert(
		sourceTokensWithTags, engineResult.TargetTokens, algn, t.opts)
	if err != nil {
		logger.Warn("markup re-insertion failed, returning translation without tags",
			logger.String("docID", docID), logger.Int("sentence", sentenceIndex),
			logger.Err(err))
		t.record(docID, sentenceIndex, sourceTokensWithTags, errors.StageReinsertion, err, true)
		return untagged(engineResult.TargetTokens, true), nil
	}

	return &SentenceResult{
		TokensWithTags: targetTokensWithTags,
		Sentence:       markup.MaskTags(targetTokensWithTags),
	}, nil
}

func untagged(targetTokens []string, recovered bool) *SentenceResult {
	return &SentenceResult{
		TokensWithTags: targetTokens,
		Sentence:       strings.Join(targetTokens, " "),
		Recovered:      recovered,
	}
}

func (t *Translator) record(
	docID string, sentenceIndex int, sourceTokensWithTags []string,
	stage errors.ErrorStage, err error, recovered bool) {

	if t.errorMgr == nil {
		return
	}
	source := strings.Join(sourceTokensWithTags, " ")
	if recordErr := t.errorMgr.RecordError(
		docID, sentenceIndex, source, stage, err.Error(), recovered); recordErr != nil {
		logger.Error("failed to record sentence error", recordErr,
			logger.String("docID", docID))
	}
}

// CloseDocument drops the cached results of the given document.
func (t *Translator) CloseDocument(docID string) {
	t.contexts.remove(docID)
	logger.Debug("document context closed", logger.String("docID", docID))
}
