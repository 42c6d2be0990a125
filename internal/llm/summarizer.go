package llm

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ppiankov/debatecards/internal/cache"
)

// RateLimiter throttles outbound calls per provider
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// Summarizer produces the narrative for a document through the configured provider
type Summarizer struct {
	provider Provider
	config   Config
	cache    cache.Cache // nil disables response caching
	limiter  RateLimiter // nil disables throttling
}

// NewSummarizer creates a summarizer. Provider "none" (or empty) yields a
// disabled summarizer whose output is always the empty string.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewSummarizerWithProvider(provider, config), nil
}

// NewSummarizerWithProvider wraps an already constructed provider (nil disables)
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	shortModel, longModel := defaultModels(config.Provider)
	if config.Model == "" {
		config.Model = shortModel
	}
	if config.LongModel == "" {
		config.LongModel = longModel
	}
	if config.LongModel == "" {
		config.LongModel = config.Model
	}
	if config.LongDocumentThreshold <= 0 {
		config.LongDocumentThreshold = DefaultConfig().LongDocumentThreshold
	}

	return &Summarizer{
		provider: provider,
		config:   config,
	}
}

// WithCache enables response caching
func (s *Summarizer) WithCache(c cache.Cache) *Summarizer {
	s.cache = c
	return s
}

// WithLimiter enables outbound throttling
func (s *Summarizer) WithLimiter(l RateLimiter) *Summarizer {
	s.limiter = l
	return s
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// SelectModel routes documents longer than the threshold (in characters) to the long model
func (s *Summarizer) SelectModel(documentText string) string {
	if utf8.RuneCountInString(documentText) > s.config.LongDocumentThreshold {
		return s.config.LongModel
	}
	return s.config.Model
}

// Summarize builds the instruction, routes it to a model and returns the narrative.
// Errors from the provider are returned as-is; nothing is retried.
func (s *Summarizer) Summarize(ctx context.Context, documentText, prompt string) (string, error) {
	if s.provider == nil {
		return "", nil
	}

	instruction := BuildPrompt(documentText, prompt)
	model := s.SelectModel(documentText)

	var key string
	if s.cache != nil {
		key = cache.CacheKey(s.provider.Name(), model, instruction)
		if val, ok := s.cache.Get(key); ok {
			return string(val), nil
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, s.provider.Name()); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Prompt:    instruction,
		Model:     model,
		MaxLength: s.config.MaxLength,
		MinLength: s.config.MinLength,
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.Set(key, []byte(resp.Summary), 0)
	}

	return resp.Summary, nil
}
