package llm

import (
	"context"
	"fmt"

	"github.com/ppiankov/debatecards/internal/model"
)

// Provider defines the interface for hosted summarization backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize sends the instruction to the model and returns its narrative output
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest contains the input for one summarization call
type SummarizeRequest struct {
	// Prompt is the complete instruction, document text included
	Prompt string

	// Model is the provider-specific model chosen by length routing
	Model string

	// MaxLength and MinLength bound the generated output (tokens)
	MaxLength int
	MinLength int
}

// SummarizeResponse contains the model output
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "huggingface", "openai", "ollama", "none"
	Provider string

	// Model is used for documents up to LongDocumentThreshold runes, LongModel above it
	Model                 string
	LongModel             string
	LongDocumentThreshold int

	// APIKey for Hugging Face / OpenAI
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests; zero means no limit beyond the caller's context
	Timeout int // seconds

	MaxLength int
	MinLength int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:              "huggingface",
		LongDocumentThreshold: 3500,
		MaxLength:             1024,
		MinLength:             200,
	}
}

// BuildPrompt constructs the debate-assistant instruction for a document and a user task
func BuildPrompt(documentText, task string) string {
	return fmt.Sprintf(`You are an expert debate assistant. Analyze the following document and extract:
- The main arguments and claims, each with a short explanation.
- Supporting evidence for each argument, including statistics, but only if they are relevant and explained in context.
- For each highlight, provide a brief explanation of its importance.

Document:
%s

Task: %s
`, documentText, task)
}

// ConfigFromModel converts model.LLMConfig and proxy settings to llm.Config
func ConfigFromModel(llmConfig model.LLMConfig, proxy model.ProxyConfig) Config {
	return Config{
		Provider:              llmConfig.Provider,
		Model:                 llmConfig.Model,
		LongModel:             llmConfig.LongModel,
		LongDocumentThreshold: llmConfig.LongDocumentThreshold,
		APIKey:                llmConfig.APIKey,
		BaseURL:               llmConfig.BaseURL,
		Timeout:               llmConfig.Timeout,
		MaxLength:             llmConfig.MaxLength,
		MinLength:             llmConfig.MinLength,
		HTTPProxy:             proxy.HTTPProxy,
		HTTPSProxy:            proxy.HTTPSProxy,
		NoProxy:               proxy.NoProxy,
	}
}
