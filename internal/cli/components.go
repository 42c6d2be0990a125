package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/debatecards/internal/cache"
	"github.com/ppiankov/debatecards/internal/llm"
	"github.com/ppiankov/debatecards/internal/model"
	"github.com/ppiankov/debatecards/internal/pipeline"
	"github.com/ppiankov/debatecards/internal/worker"
)

// buildPipeline wires the summarizer, its cache and rate limiter into a pipeline.
// The returned cleanup releases the cache backend.
func buildPipeline(cfg *model.Config) (*pipeline.Pipeline, func(), error) {
	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.Proxy))
	if err != nil {
		return nil, nil, fmt.Errorf("create summarizer: %w", err)
	}

	cleanup := func() {}
	if summarizer.IsEnabled() {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: summary cache disabled: %v\n", err)
		} else if c != nil {
			summarizer.WithCache(c)
			if closer, ok := c.(io.Closer); ok {
				cleanup = func() { _ = closer.Close() }
			}
		}

		summarizer.WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))
	} else if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Summarization disabled (provider %q)\n", cfg.LLM.Provider)
	}

	return pipeline.NewPipeline(cfg, summarizer), cleanup, nil
}
