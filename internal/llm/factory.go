package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "huggingface", "hf":
		return NewHuggingFaceProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", "none":
		// Summaries disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: huggingface, openai, ollama, none)", config.Provider)
	}
}

// defaultModels returns the short- and long-document models for a provider
func defaultModels(provider string) (short, long string) {
	switch strings.ToLower(provider) {
	case "huggingface", "hf":
		return huggingFaceShortModel, huggingFaceLongModel
	case "openai":
		return openAIShortModel, openAILongModel
	default:
		return "", ""
	}
}
