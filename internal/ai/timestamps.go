package ai

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// The aligner is a navigation aid, not a content index: it maps key topics
// mentioned in a generated summary onto transcript segments so the UI can
// offer clickable jump points. Topic-to-time accuracy is approximate by
// design; the only hard guarantees are non-decreasing times within the video
// duration.

// DefaultKeyTopics is the controlled vocabulary used to correlate summary
// text with transcript segments. It is configuration, not logic: tests swap
// in a minimal vocabulary for determinism.
var DefaultKeyTopics = []string{
	"introduction", "getting started", "overview", "basics", "fundamentals",
	"setup", "installation", "concept", "example", "examples", "demo",
	"walkthrough", "implementation", "practice", "exercise", "advanced",
	"best practices", "common mistakes", "tips", "performance", "testing",
	"summary", "conclusion", "recap", "review",
}

const (
	minTimestamps  = 5
	maxTimestamps  = 8
	maxCaptionLen  = 50
	fallbackLength = assumedDurationSeconds
)

// structurePoints is the canonical 7-point video shape used when no
// transcript exists, as fractions of total duration.
var structurePoints = []struct {
	Label    string
	Fraction float64
}{
	{"Introduction", 0.05},
	{"Overview", 0.15},
	{"Main Concepts", 0.30},
	{"Examples", 0.50},
	{"Advanced Topics", 0.70},
	{"Best Practices", 0.85},
	{"Summary", 0.95},
}

type Aligner struct {
	vocabulary []string
}

// NewAligner builds an aligner over the given key-topic vocabulary; nil means
// DefaultKeyTopics.
func NewAligner(vocabulary []string) *Aligner {
	if len(vocabulary) == 0 {
		vocabulary = DefaultKeyTopics
	}
	return &Aligner{vocabulary: vocabulary}
}

// Align produces the navigable timestamps for a generated summary. With a
// usable transcript it matches key topics against segments; without one it
// falls back to estimated positions over the video's structure.
func (a *Aligner) Align(summary string, transcript *models.Transcript, durationSeconds int) []models.VideoTimestamp {
	topics := a.extractKeyTopics(summary)

	if transcript != nil && transcript.Available && len(transcript.Segments) > 0 {
		return a.fromTranscript(topics, transcript.Segments)
	}
	return a.estimated(topics, durationSeconds)
}

// extractKeyTopics returns the vocabulary words the summary actually
// mentions, bounded and in vocabulary order.
func (a *Aligner) extractKeyTopics(summary string) []string {
	lower := strings.ToLower(summary)
	var topics []string
	for _, word := range a.vocabulary {
		if strings.Contains(lower, word) {
			topics = append(topics, word)
			if len(topics) >= 10 {
				break
			}
		}
	}
	return topics
}

func (a *Aligner) fromTranscript(topics []string, segments []models.TranscriptSegment) []models.VideoTimestamp {
	target := len(segments) / 10
	if target < minTimestamps {
		target = minTimestamps
	}
	if target > maxTimestamps {
		target = maxTimestamps
	}

	seen := make(map[int]bool)
	var out []models.VideoTimestamp

	add := func(seg models.TranscriptSegment) {
		secs := int(seg.StartSeconds)
		if seen[secs] {
			return
		}
		seen[secs] = true
		out = append(out, models.VideoTimestamp{
			Time:    FormatTimestamp(secs),
			Seconds: secs,
			Caption: truncateCaption(seg.Text),
		})
	}

	for _, seg := range segments {
		if len(out) >= target {
			break
		}
		text := strings.ToLower(seg.Text)
		for _, topic := range topics {
			if strings.Contains(text, topic) {
				add(seg)
				break
			}
		}
	}

	// Top up with evenly spaced segments when keyword matches fall short.
	if len(out) < target {
		step := len(segments) / target
		if step < 1 {
			step = 1
		}
		for i := 0; i < len(segments) && len(out) < target; i += step {
			add(segments[i])
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Seconds < out[j].Seconds })
	return out
}

func (a *Aligner) estimated(topics []string, durationSeconds int) []models.VideoTimestamp {
	if durationSeconds <= 0 {
		durationSeconds = fallbackLength
	}

	out := make([]models.VideoTimestamp, 0, len(structurePoints))
	for _, point := range structurePoints {
		secs := int(float64(durationSeconds) * point.Fraction)
		caption := point.Label
		lowerLabel := strings.ToLower(point.Label)
		for _, topic := range topics {
			if strings.Contains(lowerLabel, topic) || strings.Contains(topic, lowerLabel) {
				caption = capitalize(topic)
				break
			}
		}
		out = append(out, models.VideoTimestamp{
			Time:    FormatTimestamp(secs),
			Seconds: secs,
			Caption: caption,
		})
	}
	return out
}

func truncateCaption(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxCaptionLen {
		return text
	}
	// Back off to a rune boundary so multi-byte text is never cut mid-rune.
	cut := maxCaptionLen - 3
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return strings.TrimSpace(text[:cut]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatTimestamp renders seconds as MM:SS, or HH:MM:SS at an hour and
// beyond. ParseTimestamp inverts it exactly.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ParseTimestamp converts an MM:SS or HH:MM:SS string back to total seconds.
func ParseTimestamp(ts string) (int, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp format: %s", ts)
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp segment %q: %w", part, err)
		}
		total = total*60 + n
	}
	return total, nil
}
