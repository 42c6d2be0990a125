package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHuggingFaceProvider_Summarize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/facebook/bart-large-cnn" {
			t.Errorf("Expected model path, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf-key" {
			t.Errorf("Expected bearer token, got %s", r.Header.Get("Authorization"))
		}

		var apiReq huggingFaceRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if apiReq.Inputs != "instruction" {
			t.Errorf("Expected inputs 'instruction', got %q", apiReq.Inputs)
		}
		if apiReq.Parameters.MaxLength != 1024 || apiReq.Parameters.MinLength != 200 {
			t.Errorf("Expected length bounds 1024/200, got %d/%d", apiReq.Parameters.MaxLength, apiReq.Parameters.MinLength)
		}
		if apiReq.Parameters.DoSample {
			t.Error("Expected do_sample=false")
		}

		_, _ = w.Write([]byte(`[{"summary_text": "The document argues for carbon pricing."}]`))
	}))
	defer server.Close()

	provider, err := NewHuggingFaceProvider(Config{APIKey: "hf-key", BaseURL: server.URL + "/"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Prompt: "instruction"})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if resp.Summary != "The document argues for carbon pricing." {
		t.Errorf("Unexpected summary: %s", resp.Summary)
	}
	if resp.Model != huggingFaceShortModel {
		t.Errorf("Expected default model %s, got %s", huggingFaceShortModel, resp.Model)
	}
}

func TestHuggingFaceProvider_Summarize_EmptyList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	provider, err := NewHuggingFaceProvider(Config{APIKey: "hf-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Summarize(context.Background(), SummarizeRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Expected no error for empty result list, got %v", err)
	}
	if resp.Summary != "" {
		t.Errorf("Expected empty summary, got %q", resp.Summary)
	}
}

func TestHuggingFaceProvider_Summarize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "Model facebook/bart-large-cnn is currently loading"}`))
	}))
	defer server.Close()

	provider, err := NewHuggingFaceProvider(Config{APIKey: "hf-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "currently loading") {
		t.Errorf("Expected status and upstream message in error, got %v", err)
	}
}

func TestHuggingFaceProvider_Summarize_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"summary_text": "not a list"}`))
	}))
	defer server.Close()

	provider, err := NewHuggingFaceProvider(Config{APIKey: "hf-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Summarize(context.Background(), SummarizeRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected error for unexpected response shape, got nil")
	}
}

func TestHuggingFaceProvider_Summarize_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	provider, err := NewHuggingFaceProvider(Config{APIKey: "hf-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = provider.Summarize(ctx, SummarizeRequest{Prompt: "p"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestHuggingFaceProvider_MissingKey(t *testing.T) {
	if _, err := NewHuggingFaceProvider(Config{}); err == nil {
		t.Fatal("Expected error without API key")
	}
}

func TestProviders_NoClientTimeoutByDefault(t *testing.T) {
	if DefaultConfig().Timeout != 0 {
		t.Errorf("Expected no default timeout, got %d", DefaultConfig().Timeout)
	}

	hf, err := NewHuggingFaceProvider(Config{APIKey: "hf-key"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if hf.httpClient.Timeout != 0 {
		t.Errorf("Expected HuggingFace client without timeout, got %v", hf.httpClient.Timeout)
	}

	ollama, err := NewOllamaProvider(Config{})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if ollama.httpClient.Timeout != 0 {
		t.Errorf("Expected Ollama client without timeout, got %v", ollama.httpClient.Timeout)
	}

	limited, err := NewHuggingFaceProvider(Config{APIKey: "hf-key", Timeout: 30})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if limited.httpClient.Timeout != 30*time.Second {
		t.Errorf("Expected configured 30s timeout, got %v", limited.httpClient.Timeout)
	}
}
