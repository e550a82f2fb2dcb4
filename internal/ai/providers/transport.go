package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// postJSON sends a JSON body and returns the raw response bytes plus status
// code. Transport-level failures come back as *ProviderError; a cancelled or
// expired context is surfaced with the literal message "timeout" so callers
// can tell it apart from other network trouble.
func postJSON(ctx context.Context, httpClient *http.Client, provider models.AIProvider, url string, headers map[string]string, requestBody interface{}) ([]byte, int, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, 0, &ProviderError{Provider: provider, Message: "failed to encode request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, 0, &ProviderError{Provider: provider, Message: err.Error()}
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, 0, &ProviderError{Provider: provider, Message: "timeout"}
		}
		return nil, 0, &ProviderError{Provider: provider, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &ProviderError{Provider: provider, StatusCode: resp.StatusCode, Message: err.Error()}
	}

	return body, resp.StatusCode, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
