package models

import (
	"time"
)

type ContentType string

const (
	ContentSummary ContentType = "summary"
	ContentQuiz    ContentType = "quiz"
	ContentNotes   ContentType = "notes"
	ContentTutor   ContentType = "tutor"
)

type NotesFormat string

const (
	NotesBullet   NotesFormat = "bullet"
	NotesOutline  NotesFormat = "outline"
	NotesDetailed NotesFormat = "detailed"
)

// TranscriptSegment is a single time-coded caption line. Segments are ordered
// by StartSeconds and immutable once fetched.
type TranscriptSegment struct {
	StartSeconds    float64 `json:"start_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
	Text            string  `json:"text"`
}

// Transcript is the normalized caption track for a video. Available is false
// when the video has no captions; that is a normal state, not an error, and
// FullText is empty in that case.
type Transcript struct {
	VideoID   string              `json:"video_id"`
	Available bool                `json:"available"`
	FullText  string              `json:"full_text"`
	Segments  []TranscriptSegment `json:"segments"`
	Error     string              `json:"error,omitempty"`
}

// VideoTimestamp is one navigable (time, caption) pair attached to a summary.
// Seconds and Time always agree: Time is the MM:SS (or HH:MM:SS past one
// hour) rendering of Seconds.
type VideoTimestamp struct {
	Time    string `json:"time"`
	Seconds int    `json:"seconds"`
	Caption string `json:"caption"`
}

type SummaryResult struct {
	Content    string           `json:"content"`
	Timestamps []VideoTimestamp `json:"timestamps"`
}

// QuizQuestion always has exactly 4 options and a CorrectAnswerIndex in
// [0,3]. The parser drops any candidate that cannot satisfy this.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	Explanation        string   `json:"explanation"`
}

type QuizResult struct {
	Questions []QuizQuestion `json:"questions"`
}

type NoteSection struct {
	Title            string `json:"title"`
	Content          string `json:"content"`
	TimestampSeconds int    `json:"timestamp_seconds"`
}

type NotesResult struct {
	Content  string        `json:"content"`
	Format   NotesFormat   `json:"format"`
	Sections []NoteSection `json:"sections"`
}

// GenerationOptions carries the per-type knobs of a generation call.
type GenerationOptions struct {
	QuestionCount int         `json:"question_count,omitempty"`
	NotesFormat   NotesFormat `json:"notes_format,omitempty"`
	SummaryRef    string      `json:"summary_ref,omitempty"`
	Question      string      `json:"question,omitempty"`
}

// GenerationRequest is built fresh per call and never persisted.
type GenerationRequest struct {
	VideoID              string            `json:"video_id"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Transcript           *Transcript       `json:"transcript,omitempty"`
	VideoDurationSeconds int               `json:"video_duration_seconds"`
	ContentType          ContentType       `json:"content_type"`
	Provider             AIProvider        `json:"provider"`
	Options              GenerationOptions `json:"options"`
	Force                bool              `json:"force"`
}

// StudyContent is the persisted form of a generation result, keyed by
// (video_id, content_type, variant). Variant distinguishes notes formats and
// quiz sizes so e.g. bullet and outline notes cache independently.
type StudyContent struct {
	ID          string      `json:"id" db:"id"`
	VideoID     string      `json:"video_id" db:"video_id"`
	ContentType ContentType `json:"content_type" db:"content_type"`
	Variant     string      `json:"variant" db:"variant"`
	Provider    AIProvider  `json:"provider" db:"provider"`
	Payload     []byte      `json:"payload" db:"payload"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}
