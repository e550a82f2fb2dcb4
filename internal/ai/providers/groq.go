package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient is the free-tier fallback backend. It speaks the OpenAI chat
// completions dialect.
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newGroqClient(apiKey string, httpClient *http.Client) *GroqClient {
	return &GroqClient{
		apiKey:     apiKey,
		baseURL:    groqBaseURL,
		model:      "llama-3.3-70b-versatile",
		httpClient: httpClient,
	}
}

func (c *GroqClient) Name() string {
	return "Groq"
}

func (c *GroqClient) Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
	params := paramsFor(contentType)

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
		"top_p":       0.8,
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	body, status, err := postJSON(ctx, c.httpClient, models.AIProviderGroq, c.baseURL+"/chat/completions", headers, requestBody)
	if err != nil {
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Provider: models.AIProviderGroq, StatusCode: status, Message: "failed to parse Groq response: " + err.Error()}
	}

	if response.Error != nil {
		return "", &ProviderError{Provider: models.AIProviderGroq, StatusCode: status, Message: fmt.Sprintf("%s (%s)", response.Error.Message, response.Error.Type)}
	}

	if status < 200 || status >= 300 {
		return "", &ProviderError{Provider: models.AIProviderGroq, StatusCode: status, Message: fmt.Sprintf("unexpected status %d", status)}
	}

	if len(response.Choices) == 0 {
		return "", &ProviderError{Provider: models.AIProviderGroq, StatusCode: status, Message: "no response from Groq"}
	}

	return response.Choices[0].Message.Content, nil
}
