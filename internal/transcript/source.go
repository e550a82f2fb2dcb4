package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/config"
	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// Source fetches a normalized transcript for a video. Fetch never returns an
// error: any failure (no captions, network trouble, disabled transcripts)
// yields a Transcript with Available=false and a human-readable reason, since
// callers treat transcript absence as a normal, handled case.
type Source interface {
	Fetch(ctx context.Context, videoID string) *models.Transcript
}

// captionItem mirrors the caption service's wire format. Offsets arrive in
// milliseconds and are converted to seconds internally.
type captionItem struct {
	OffsetMs   int64  `json:"offsetMs"`
	DurationMs int64  `json:"durationMs"`
	Text       string `json:"text"`
}

type captionResponse struct {
	Items []captionItem `json:"items"`
}

type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
	log        *logrus.Logger
}

func NewClient(cfg *config.TranscriptConfig, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

func (c *Client) Fetch(ctx context.Context, videoID string) *models.Transcript {
	if videoID == "" {
		return unavailable(videoID, "video ID is required")
	}

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", c.language)
	params.Set("fmt", "json3")
	apiURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return unavailable(videoID, "failed to build transcript request: "+err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("video_id", videoID).Warn("transcript fetch failed")
		return unavailable(videoID, "transcript request failed: "+err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return unavailable(videoID, "no captions found for this video")
	case http.StatusForbidden:
		return unavailable(videoID, "captions are disabled or region restricted")
	case http.StatusTooManyRequests:
		return unavailable(videoID, "transcript service rate limited the request")
	default:
		return unavailable(videoID, fmt.Sprintf("transcript service returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return unavailable(videoID, "failed to read transcript response: "+err.Error())
	}

	var parsed captionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return unavailable(videoID, "failed to parse transcript response: "+err.Error())
	}

	return buildTranscript(videoID, parsed.Items)
}

func unavailable(videoID, reason string) *models.Transcript {
	return &models.Transcript{
		VideoID:   videoID,
		Available: false,
		FullText:  "",
		Segments:  nil,
		Error:     reason,
	}
}
