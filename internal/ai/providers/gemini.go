package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func newGeminiClient(apiKey string, httpClient *http.Client) *GeminiClient {
	return &GeminiClient{
		apiKey:     apiKey,
		baseURL:    geminiBaseURL,
		model:      "gemini-1.5-flash",
		httpClient: httpClient,
	}
}

func (c *GeminiClient) Name() string {
	return "Gemini"
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
	params := paramsFor(contentType)

	requestBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": params.MaxTokens,
			"temperature":     params.Temperature,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	body, status, err := postJSON(ctx, c.httpClient, models.AIProviderGemini, url, nil, requestBody)
	if err != nil {
		return "", err
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return "", &ProviderError{Provider: models.AIProviderGemini, StatusCode: status, Message: "failed to parse Gemini response: " + err.Error()}
	}

	if response.Error != nil {
		return "", &ProviderError{Provider: models.AIProviderGemini, StatusCode: response.Error.Code, Message: response.Error.Message}
	}

	if status < 200 || status >= 300 {
		return "", &ProviderError{Provider: models.AIProviderGemini, StatusCode: status, Message: fmt.Sprintf("unexpected status %d", status)}
	}

	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", &ProviderError{Provider: models.AIProviderGemini, StatusCode: status, Message: "no response from Gemini"}
	}

	return response.Candidates[0].Content.Parts[0].Text, nil
}
