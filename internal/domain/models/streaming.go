package models

import "time"

type StreamEventType string

const (
	EventGenerationStarted   StreamEventType = "generation_started"
	EventTranscriptReady     StreamEventType = "transcript_ready"
	EventProviderInvoked     StreamEventType = "provider_invoked"
	EventContentParsed       StreamEventType = "content_parsed"
	EventGenerationCompleted StreamEventType = "generation_completed"
	EventGenerationFailed    StreamEventType = "generation_failed"
)

// StreamMessage is one progress event on a generation, published to redis and
// fanned out to websocket subscribers watching the video.
type StreamMessage struct {
	ID          string          `json:"id"`
	VideoID     string          `json:"video_id"`
	ContentType ContentType     `json:"content_type"`
	EventType   StreamEventType `json:"event_type"`
	Stage       string          `json:"stage,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
	Sequence    int64           `json:"sequence"`
	Error       *ErrorData      `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Stage   string `json:"stage"`
}

type StreamSubscription struct {
	ID        string
	VideoID   string
	UserID    int64
	Channel   chan *StreamMessage
	Connected time.Time
	LastSeen  time.Time
}
