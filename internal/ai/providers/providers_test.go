package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dhiren507/skillsync/internal/config"
	"github.com/Dhiren507/skillsync/internal/domain/models"
)

func TestFactoryClient(t *testing.T) {
	cfg := &config.AIConfig{GeminiKey: "g-key", GroqKey: "q-key"}
	factory := NewFactory(cfg)

	tests := []struct {
		provider models.AIProvider
		wantErr  bool
	}{
		{models.AIProviderGemini, false},
		{models.AIProviderGroq, false},
		{models.AIProviderOpenAI, true}, // no key configured
		{models.AIProviderClaude, true},
		{models.AIProvider("nonsense"), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			client, err := factory.Client(tt.provider)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("error type = %T, want *ConfigurationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("nil client")
			}
		})
	}
}

func TestFactoryDefault(t *testing.T) {
	tests := []struct {
		configured string
		want       models.AIProvider
	}{
		{"groq", models.AIProviderGroq},
		{"openai", models.AIProviderOpenAI},
		{"", models.AIProviderGemini},
		{"bogus", models.AIProviderGemini},
	}

	for _, tt := range tests {
		factory := NewFactory(&config.AIConfig{DefaultProvider: tt.configured})
		if got := factory.Default(); got != tt.want {
			t.Errorf("Default() with %q = %q, want %q", tt.configured, got, tt.want)
		}
	}
}

func geminiSuccessBody(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
}

func TestGeminiGenerate(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(geminiSuccessBody("generated text"))
	}))
	defer server.Close()

	client := newGeminiClient("test-key", server.Client())
	client.baseURL = server.URL

	text, err := client.Generate(context.Background(), "the prompt", models.ContentSummary)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "generated text" {
		t.Errorf("text = %q", text)
	}

	genCfg, _ := gotBody["generationConfig"].(map[string]interface{})
	if genCfg["temperature"] != 0.3 {
		t.Errorf("summary temperature = %v, want 0.3", genCfg["temperature"])
	}
	if genCfg["maxOutputTokens"] != float64(1024) {
		t.Errorf("summary maxOutputTokens = %v, want 1024", genCfg["maxOutputTokens"])
	}
}

func TestGeminiErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "API key not valid", "code": 400},
		})
	}))
	defer server.Close()

	client := newGeminiClient("bad-key", server.Client())
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "p", models.ContentSummary)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Message != "API key not valid" {
		t.Errorf("message = %q", provErr.Message)
	}
}

func TestGeminiEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	client := newGeminiClient("key", server.Client())
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "p", models.ContentQuiz)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Message != "no response from Gemini" {
		t.Errorf("message = %q", provErr.Message)
	}
}

func TestGeminiNon2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newGeminiClient("key", server.Client())
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "p", models.ContentSummary)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", provErr.StatusCode)
	}
}

func TestTimeoutMapsToProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newGeminiClient("key", &http.Client{Timeout: 20 * time.Millisecond})
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "p", models.ContentSummary)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Message != "timeout" {
		t.Errorf("message = %q, want timeout", provErr.Message)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "openai says hi"}},
			},
		})
	}))
	defer server.Close()

	client := newOpenAIClient("sk-test", server.Client())
	client.baseURL = server.URL

	text, err := client.Generate(context.Background(), "p", models.ContentTutor)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "openai says hi" {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := newOpenAIClient("sk-test", server.Client())
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "p", models.ContentSummary)
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if provErr.Message != "no response from OpenAI" {
		t.Errorf("message = %q", provErr.Message)
	}
}

func TestParamsFor(t *testing.T) {
	tests := []struct {
		contentType models.ContentType
		temperature float64
		maxTokens   int
	}{
		{models.ContentSummary, 0.3, 1024},
		{models.ContentNotes, 0.3, 4096},
		{models.ContentQuiz, 0.7, 2048},
		{models.ContentTutor, 0.7, 1024},
	}

	for _, tt := range tests {
		got := paramsFor(tt.contentType)
		if got.Temperature != tt.temperature || got.MaxTokens != tt.maxTokens {
			t.Errorf("paramsFor(%s) = %+v", tt.contentType, got)
		}
	}
}
