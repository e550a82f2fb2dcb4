package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

const openAIBaseURL = "https://api.openai.com/v1"

type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newOpenAIClient(apiKey string, httpClient *http.Client) *OpenAIClient {
	return &OpenAIClient{
		apiKey:     apiKey,
		baseURL:    openAIBaseURL,
		model:      "gpt-4o-mini",
		httpClient: httpClient,
	}
}

func (c *OpenAIClient) Name() string {
	return "OpenAI"
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
	params := paramsFor(contentType)

	requestBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  params.MaxTokens,
		"temperature": params.Temperature,
	}

	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	body, status, err := postJSON(ctx, c.httpClient, models.AIProviderOpenAI, c.baseURL+"/chat/completions", headers, requestBody)
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
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Provider: models.AIProviderOpenAI, StatusCode: status, Message: "failed to parse OpenAI response: " + err.Error()}
	}

	if response.Error != nil {
		return "", &ProviderError{Provider: models.AIProviderOpenAI, StatusCode: status, Message: response.Error.Message}
	}

	if status < 200 || status >= 300 {
		return "", &ProviderError{Provider: models.AIProviderOpenAI, StatusCode: status, Message: fmt.Sprintf("unexpected status %d", status)}
	}

	if len(response.Choices) == 0 {
		return "", &ProviderError{Provider: models.AIProviderOpenAI, StatusCode: status, Message: "no response from OpenAI"}
	}

	return response.Choices[0].Message.Content, nil
}
