package translator

import (
	"context"
	"fmt"
	"sync"

	"markup-translator/internal/logger"
	"markup-translator/internal/types"
)

// documentContext 单个文档的翻译上下文，缓存句子级结果
type documentContext struct {
	mu    sync.RWMutex
	cache map[string]*SentenceResult // key: 源句（含标签，空格连接）
}

func (d *documentContext) cached(key string) (*SentenceResult, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result, ok := d.cache[key]
	return result, ok
}

func (d *documentContext) store(key string, result *SentenceResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache[key] = result
}

// contextRegistry 按文档 ID 管理翻译上下文
type contextRegistry struct {
	mu       sync.Mutex
	contexts map[string]*documentContext
}

func newContextRegistry() *contextRegistry {
	return &contextRegistry{contexts: make(map[string]*documentContext)}
}

func (r *contextRegistry) get(docID string) *documentContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	docCtx, ok := r.contexts[docID]
	if !ok {
		docCtx = &documentContext{cache: make(map[string]*SentenceResult)}
		r.contexts[docID] = docCtx
	}
	return docCtx
}

func (r *contextRegistry) remove(docID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contexts, docID)
}

// TranslateDocument translates all sentences of a document, at most
// Concurrency sentences in parallel. The result slice is ordered like the
// input. The first engine failure is returned after all sentences finished;
// recovered markup failures do not fail the document.
func (t *Translator) TranslateDocument(
	ctx context.Context, docID string, sentences [][]string) ([]*SentenceResult, error) {

	totalSentences := len(sentences)
	logger.Info("translating document",
		logger.String("docID", docID), logger.Int("sentences", totalSentences))

	results := make([]*SentenceResult, totalSentences)
	sentenceErrors := make([]error, totalSentences)

	// Use semaphore for concurrency control
	sem := make(chan struct{}, t.concurrency)
	var wg sync.WaitGroup

	for i, sentence := range sentences {
		wg.Add(1)
		go func(idx int, sourceTokens []string) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := t.TranslateSentence(ctx, docID, idx, sourceTokens)
			results[idx] = result
			sentenceErrors[idx] = err
		}(i, sentence)
	}

	wg.Wait()

	for i, err := range sentenceErrors {
		if err != nil {
			if appErr, ok := err.(*types.AppError); ok {
				appErr.Details = fmt.Sprintf("sentence %d: %s", i, appErr.Details)
				return results, appErr
			}
			return results, types.NewAppErrorWithDetails(types.ErrTranslation,
				"document translation failed", fmt.Sprintf("sentence %d", i), err)
		}
	}

	logger.Info("document translated",
		logger.String("docID", docID), logger.Int("sentences", totalSentences))
	return results, nil
}
