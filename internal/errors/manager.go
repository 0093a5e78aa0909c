// Package errors provides error tracking for markup reinsertion runs
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrorStage 错误阶段枚举
type ErrorStage string

const (
	StageTranslation ErrorStage = "translation" // 翻译引擎调用阶段
	StageAlignment   ErrorStage = "alignment"   // 对齐解析阶段
	StageReinsertion ErrorStage = "reinsertion" // 标签重插入阶段
	StageMasking     ErrorStage = "masking"     // 标签掩码阶段
	StageInput       ErrorStage = "input"       // 输入读取阶段
)

// ErrorRecord 错误记录
type ErrorRecord struct {
	DocID     string     `json:"doc_id"`         // 文档标识符
	Sentence  int        `json:"sentence"`       // 句子序号（从 0 开始）
	Source    string     `json:"source"`         // 源句（含标签）
	Stage     ErrorStage `json:"stage"`          // 出错阶段
	ErrorMsg  string     `json:"error_msg"`      // 错误信息
	Timestamp time.Time  `json:"timestamp"`      // 错误发生时间
	Recovered bool       `json:"recovered"`      // 是否已降级处理（输出未带标签的译文）
}

// ErrorManager 错误管理器，按文档收集句子级错误
type ErrorManager struct {
	baseDir string
	mu      sync.RWMutex
	errors  map[string][]*ErrorRecord // key: DocID
}

// NewErrorManager 创建新的错误管理器。baseDir 为空时仅在内存中记录。
func NewErrorManager(baseDir string) (*ErrorManager, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create errors directory: %w", err)
		}
	}

	em := &ErrorManager{
		baseDir: baseDir,
		errors:  make(map[string][]*ErrorRecord),
	}

	// 加载现有错误记录
	if err := em.load(); err != nil {
		return nil, err
	}

	return em, nil
}

// RecordError 记录错误
func (em *ErrorManager) RecordError(docID string, sentence int, source string, stage ErrorStage, errorMsg string, recovered bool) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	record := &ErrorRecord{
		DocID:     docID,
		Sentence:  sentence,
		Source:    source,
		Stage:     stage,
		ErrorMsg:  errorMsg,
		Timestamp: time.Now(),
		Recovered: recovered,
	}
	em.errors[docID] = append(em.errors[docID], record)

	return em.save()
}

// ListErrors 列出某个文档的所有错误记录，按句子序号排序
func (em *ErrorManager) ListErrors(docID string) []*ErrorRecord {
	em.mu.RLock()
	defer em.mu.RUnlock()

	records := make([]*ErrorRecord, 0, len(em.errors[docID]))
	for _, record := range em.errors[docID] {
		// 创建副本以避免并发修改
		recordCopy := *record
		records = append(records, &recordCopy)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Sentence < records[j].Sentence
	})

	return records
}

// CountByStage 统计某个文档各阶段的错误数
func (em *ErrorManager) CountByStage(docID string) map[ErrorStage]int {
	em.mu.RLock()
	defer em.mu.RUnlock()

	counts := make(map[ErrorStage]int)
	for _, record := range em.errors[docID] {
		counts[record.Stage]++
	}
	return counts
}

// RemoveErrors 移除某个文档的错误记录（重新翻译成功后）
func (em *ErrorManager) RemoveErrors(docID string) error {
	em.mu.Lock()
	defer em.mu.Unlock()

	delete(em.errors, docID)
	return em.save()
}

// ClearAll 清除所有错误记录
func (em *ErrorManager) ClearAll() error {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.errors = make(map[string][]*ErrorRecord)
	return em.save()
}

// load 从文件加载错误记录
func (em *ErrorManager) load() error {
	if em.baseDir == "" {
		return nil
	}
	filePath := filepath.Join(em.baseDir, "errors.json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件不存在是正常的
			return nil
		}
		return fmt.Errorf("failed to read errors file: %w", err)
	}

	var records []*ErrorRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal errors: %w", err)
	}

	for _, record := range records {
		em.errors[record.DocID] = append(em.errors[record.DocID], record)
	}

	return nil
}

// save 保存错误记录到文件。调用方持有锁。
func (em *ErrorManager) save() error {
	if em.baseDir == "" {
		return nil
	}

	records := make([]*ErrorRecord, 0)
	for _, docRecords := range em.errors {
		records = append(records, docRecords...)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DocID != records[j].DocID {
			return records[i].DocID < records[j].DocID
		}
		return records[i].Sentence < records[j].Sentence
	})

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}

	filePath := filepath.Join(em.baseDir, "errors.json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write errors file: %w", err)
	}

	return nil
}
