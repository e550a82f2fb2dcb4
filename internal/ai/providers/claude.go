package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

const claudeBaseURL = "https://api.anthropic.com/v1"

type ClaudeClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newClaudeClient(apiKey string, httpClient *http.Client) *ClaudeClient {
	return &ClaudeClient{
		apiKey:     apiKey,
		baseURL:    claudeBaseURL,
		model:      "claude-3-5-sonnet-20240620",
		httpClient: httpClient,
	}
}

func (c *ClaudeClient) Name() string {
	return "Claude"
}

func (c *ClaudeClient) Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
	params := paramsFor(contentType)

	requestBody := map[string]interface{}{
		"model":       c.model,
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": "2023-06-01",
	}
	body, status, err := postJSON(ctx, c.httpClient, models.AIProviderClaude, c.baseURL+"/messages", headers, requestBody)
	if err != nil {
		return "", err
	}

	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Provider: models.AIProviderClaude, StatusCode: status, Message: "failed to parse Claude response: " + err.Error()}
	}

	if response.Error != nil {
		return "", &ProviderError{Provider: models.AIProviderClaude, StatusCode: status, Message: response.Error.Message}
	}

	if status < 200 || status >= 300 {
		return "", &ProviderError{Provider: models.AIProviderClaude, StatusCode: status, Message: fmt.Sprintf("unexpected status %d", status)}
	}

	if len(response.Content) == 0 {
		return "", &ProviderError{Provider: models.AIProviderClaude, StatusCode: status, Message: "no response from Claude"}
	}

	return response.Content[0].Text, nil
}
