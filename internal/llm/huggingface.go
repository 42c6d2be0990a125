package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/debatecards/internal/util"
)

const (
	defaultHuggingFaceBaseURL = "https://api-inference.huggingface.co"

	huggingFaceShortModel = "facebook/bart-large-cnn"
	huggingFaceLongModel  = "google/bigbird-pegasus-large-bigpatent"
)

// HuggingFaceProvider implements the Provider interface for the Hugging Face Inference API
type HuggingFaceProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

type huggingFaceRequest struct {
	Inputs     string                `json:"inputs"`
	Parameters huggingFaceParameters `json:"parameters"`
}

type huggingFaceParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type huggingFaceSummary struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

type huggingFaceError struct {
	Error string `json:"error"`
}

// NewHuggingFaceProvider creates a new Hugging Face provider
func NewHuggingFaceProvider(config Config) (*HuggingFaceProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Hugging Face API key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}

	return &HuggingFaceProvider{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second, // Zero leaves the deadline to ctx
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *HuggingFaceProvider) Name() string {
	return "huggingface"
}

// Summarize runs the instruction through a hosted summarization model
func (p *HuggingFaceProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = huggingFaceShortModel
	}

	maxLength := req.MaxLength
	if maxLength == 0 {
		maxLength = 1024
	}
	minLength := req.MinLength
	if minLength == 0 {
		minLength = 200
	}

	apiReq := huggingFaceRequest{
		Inputs: req.Prompt,
		Parameters: huggingFaceParameters{
			MaxLength: maxLength,
			MinLength: minLength,
			DoSample:  false,
		},
	}

	summaries, err := p.makeRequest(ctx, model, apiReq)
	if err != nil {
		return nil, fmt.Errorf("hugging face API error: %w", err)
	}

	// An empty result list is a degraded but successful response
	var summary string
	if len(summaries) > 0 {
		summary = summaries[0].SummaryText
		if summary == "" {
			summary = summaries[0].GeneratedText
		}
	}

	return &SummarizeResponse{
		Summary: strings.TrimSpace(summary),
		Model:   model,
	}, nil
}

// makeRequest posts the payload to the model endpoint
func (p *HuggingFaceProvider) makeRequest(ctx context.Context, model string, apiReq huggingFaceRequest) ([]huggingFaceSummary, error) {
	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", p.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var apiErr huggingFaceError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, string(respBody))
	}

	var summaries []huggingFaceSummary
	if err := json.Unmarshal(respBody, &summaries); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return summaries, nil
}
