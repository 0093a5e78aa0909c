// Command transins re-inserts inline markup into pre-translated files. The
// three input files are parallel line by line: tagged source tokens,
// translated tokens without tags, and the raw alignment reported by the
// engine. Lines whose alignment or markup cannot be processed are emitted
// untagged and counted in the summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"markup-translator/internal/align"
	"markup-translator/internal/config"
	"markup-translator/internal/encoding"
	"markup-translator/internal/errors"
	"markup-translator/internal/logger"
	"markup-translator/internal/markup"
	"markup-translator/internal/tag"
	"markup-translator/internal/types"
)

func main() {
	var (
		sourceFile = flag.String("source", "", "file with tagged source token lines (required)")
		targetFile = flag.String("target", "", "file with translated token lines (required)")
		alignFile  = flag.String("align", "", "file with raw alignment lines (required)")
		outFile    = flag.String("out", "", "output file; stdout if empty")
		strategyF  = flag.String("strategy", "", "reinsertion strategy: baseline, improved, complete-mapping")
		maxGap     = flag.Int("max-gap", -1, "max unaligned gap bridged by interpolation (complete-mapping)")
		encName    = flag.String("enc", "", "input encoding: UTF-8, UTF-8-BOM, UTF-16LE, UTF-16BE, GBK, LATIN-1; auto-detected if empty")
		configPath = flag.String("config", "", "config file path")
		errorsDir  = flag.String("errors", "", "directory for the error record file; in-memory if empty")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		readable   = flag.Bool("readable", false, "emit human-readable tags instead of coded tags")
	)
	flag.Parse()

	if *sourceFile == "" || *targetFile == "" || *alignFile == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(&logger.Config{
		Level:         logger.ParseLevel(*logLevel),
		EnableConsole: true,
	}); err != nil {
		fatal(fmt.Errorf("failed to initialize logger: %w", err))
	}
	defer logger.Close()

	cm := loadConfig(*configPath)

	strategy := cm.GetStrategy()
	if *strategyF != "" {
		var err error
		strategy, err = types.ParseStrategy(*strategyF)
		if err != nil {
			fatal(err)
		}
	}
	maxGapSize := *maxGap
	if maxGapSize < 0 {
		maxGapSize = cm.GetMaxGapSize()
	}

	sourceLines, err := encoding.ReadLines(*sourceFile, *encName)
	if err != nil {
		fatal(err)
	}
	targetLines, err := encoding.ReadLines(*targetFile, *encName)
	if err != nil {
		fatal(err)
	}
	alignLines, err := encoding.ReadLines(*alignFile, *encName)
	if err != nil {
		fatal(err)
	}
	if len(targetLines) != len(sourceLines) || len(alignLines) != len(sourceLines) {
		fatal(fmt.Errorf("input files are not line-parallel: %d source, %d target, %d alignment lines",
			len(sourceLines), len(targetLines), len(alignLines)))
	}

	errorRecordDir := *errorsDir
	if errorRecordDir == "" {
		errorRecordDir = cm.GetWorkDirectory()
	}
	errorMgr, err := errors.NewErrorManager(errorRecordDir)
	if err != nil {
		fatal(err)
	}

	docID := filepath.Base(*sourceFile)
	opts := markup.Options{Strategy: strategy, MaxGapSize: maxGapSize}

	// lines are independent, process them concurrently in input order
	concurrency := cm.GetConcurrency()
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	outLines := make([]string, len(sourceLines))
	for i := range sourceLines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outLines[i] = processLine(
				docID, i, sourceLines[i], targetLines[i], alignLines[i],
				opts, *readable, errorMgr)
		}(i)
	}
	wg.Wait()

	if err := writeLines(*outFile, outLines); err != nil {
		fatal(err)
	}

	counts := errorMgr.CountByStage(docID)
	logger.Info("batch finished",
		logger.String("docID", docID),
		logger.Int("sentences", len(sourceLines)),
		logger.String("strategy", strategy.String()),
		logger.Int("alignmentFailures", counts[errors.StageAlignment]),
		logger.Int("reinsertionFailures", counts[errors.StageReinsertion]))
}

// loadConfig loads the configuration file if one is given and falls back
// to defaults otherwise.
func loadConfig(path string) *config.ConfigManager {
	cm, err := config.NewConfigManager(path)
	if err != nil {
		fatal(err)
	}
	if err := cm.Load(); err != nil {
		fatal(err)
	}
	return cm
}

// processLine re-inserts the markup of one source line into its translated
// line. Failures degrade to the bare translation.
func processLine(
	docID string, lineIndex int, sourceLine, targetLine, alignLine string,
	opts markup.Options, readable bool, errorMgr *errors.ErrorManager) string {

	sourceTokens := strings.Fields(sourceLine)
	targetTokens := strings.Fields(targetLine)

	if len(tag.StripTokens(sourceTokens)) == len(sourceTokens) {
		// nothing to re-insert
		return strings.Join(targetTokens, " ")
	}

	algn, err := align.Parse(alignLine)
	if err != nil {
		logger.Warn("skipping markup for line with malformed alignment",
			logger.Int("line", lineIndex), logger.Err(err))
		record(errorMgr, docID, lineIndex, sourceLine, errors.StageAlignment, err)
		return strings.Join(targetTokens, " ")
	}

	resultTokens, err := markup.Insert(sourceTokens, targetTokens, algn, opts)
	if err != nil {
		logger.Warn("skipping markup for line with inconsistent tags",
			logger.Int("line", lineIndex), logger.Err(err))
		record(errorMgr, docID, lineIndex, sourceLine, errors.StageReinsertion, err)
		return strings.Join(targetTokens, " ")
	}

	if readable {
		tagMap, mapErr := tag.NewMapFromTokens(sourceTokens)
		if mapErr != nil {
			tagMap = nil
		}
		return tag.Format(resultTokens, tagMap)
	}
	return strings.Join(resultTokens, " ")
}

func record(
	errorMgr *errors.ErrorManager, docID string, lineIndex int,
	sourceLine string, stage errors.ErrorStage, err error) {

	if recordErr := errorMgr.RecordError(
		docID, lineIndex, sourceLine, stage, err.Error(), true); recordErr != nil {
		logger.Error("failed to record line error", recordErr, logger.Int("line", lineIndex))
	}
}

func writeLines(path string, lines []string) error {
	content := strings.Join(lines, "\n") + "\n"
	if path == "" {
		_, err := fmt.Print(content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return types.NewAppError(types.ErrIO, "failed to write output file", err)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "transins:", err)
	os.Exit(1)
}
