// Package types defines core data types and enums for the markup translator.
package types

import "strings"

// Config 应用配置
type Config struct {
	Strategy       string  `json:"strategy"`        // baseline / improved / complete-mapping
	MaxGapSize     int     `json:"max_gap_size"`    // 邻居标签插值允许的最大未对齐间隔
	ScoreThreshold float64 `json:"score_threshold"` // 软对齐的最低分数阈值
	EngineEndpoint string  `json:"engine_endpoint"` // 翻译引擎地址（由外部适配器使用）
	EngineAPIKey   string  `json:"engine_api_key"`
	LeadingTokens  int     `json:"leading_tokens"` // 引擎输入前缀 token 数量，如目标语言标记
	Concurrency    int     `json:"concurrency"`    // 句子级并发数
	WorkDirectory  string  `json:"work_directory"`
	LogFilePath    string  `json:"log_file_path"`
	LogLevel       string  `json:"log_level"`
}

// Strategy 标签重插入策略枚举
type Strategy string

const (
	// StrategyBaseline binds every tag forward to the next real token
	StrategyBaseline Strategy = "baseline"
	// StrategyImproved is direction-aware and migrates tags to aligned tokens
	StrategyImproved Strategy = "improved"
	// StrategyComplete annotates every token with all tags in whose scope it lies
	StrategyComplete Strategy = "complete-mapping"
)

// String returns the config string of the strategy
func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy maps a config string to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyBaseline:
		return StrategyBaseline, nil
	case StrategyImproved, "":
		return StrategyImproved, nil
	case StrategyComplete:
		return StrategyComplete, nil
	default:
		return "", NewAppError(ErrInvalidInput, "unknown reinsertion strategy: "+s, nil)
	}
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrAlignment    ErrorCode = "ALIGNMENT_ERROR"
	ErrMarkup       ErrorCode = "MARKUP_ERROR"
	ErrTranslation  ErrorCode = "TRANSLATION_ERROR"
	ErrIO           ErrorCode = "IO_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// IsCode reports whether err is an AppError carrying the given code
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
