package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/debatecards/internal/model"
	"github.com/ppiankov/debatecards/internal/pipeline"
)

// Analyzer runs one document through the evidence pipeline
type Analyzer interface {
	Analyze(ctx context.Context, text, prompt string, settings model.AnalysisSettings) (*pipeline.Result, error)
}

// AnalyzeJob analyzes a single text file
type AnalyzeJob struct {
	Index    int
	Path     string
	Prompt   string
	Settings model.AnalysisSettings
	Timeout  time.Duration
	Analyzer Analyzer
}

// Execute reads the file and analyzes its contents
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	res := &AnalyzeResult{Index: j.Index, Path: j.Path}

	data, err := os.ReadFile(j.Path)
	if err != nil {
		res.Error = fmt.Errorf("read %s: %w", j.Path, err)
		return res
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		res.Error = model.NewInputError("%s is empty", j.Path)
		return res
	}

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	res.Result, res.Error = j.Analyzer.Analyze(ctx, text, j.Prompt, j.Settings)
	return res
}

// AnalyzeResult represents the outcome for one file
type AnalyzeResult struct {
	Index  int
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the error from the analysis
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes many files concurrently; files share no state
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	timeout     time.Duration
}

// NewBatchProcessor creates a new batch processor. A zero timeout means no per-file limit.
func NewBatchProcessor(analyzer Analyzer, concurrency int, timeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// ProcessFiles analyzes files concurrently, returning results in input order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string, prompt string, settings model.AnalysisSettings) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, path := range paths {
			job := &AnalyzeJob{
				Index:    i,
				Path:     path,
				Prompt:   prompt,
				Settings: settings,
				Timeout:  b.timeout,
				Analyzer: b.analyzer,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	results := make([]*AnalyzeResult, 0, len(paths))
	for result := range pool.Results() {
		results = append(results, result.(*AnalyzeResult))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	return results
}

// ProcessFile reads a list of paths from listPath and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath, prompt string, settings model.AnalysisSettings) ([]*AnalyzeResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessFiles(ctx, paths, prompt, settings), nil
}

// ReadPathsFromFile reads file paths (one per line). Relative paths are
// resolved against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	baseDir := filepath.Dir(listPath)

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(baseDir, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
