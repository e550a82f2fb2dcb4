package transcript

import (
	"regexp"
	"strings"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

var (
	// Non-speech annotations like [Music] or [Applause].
	bracketRe    = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// normalizeText strips bracketed annotations and collapses all whitespace
// runs to single spaces.
func normalizeText(text string) string {
	text = bracketRe.ReplaceAllString(text, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// buildTranscript converts raw caption items into an ordered, normalized
// Transcript. Items whose text is empty after normalization are dropped; a
// track with nothing left is reported unavailable.
func buildTranscript(videoID string, items []captionItem) *models.Transcript {
	var segments []models.TranscriptSegment
	var fullText strings.Builder

	for _, item := range items {
		text := normalizeText(item.Text)
		if text == "" {
			continue
		}

		segments = append(segments, models.TranscriptSegment{
			StartSeconds:    float64(item.OffsetMs) / 1000.0,
			DurationSeconds: float64(item.DurationMs) / 1000.0,
			Text:            text,
		})

		if fullText.Len() > 0 {
			fullText.WriteByte(' ')
		}
		fullText.WriteString(text)
	}

	if len(segments) == 0 {
		return unavailable(videoID, "caption track contained no usable text")
	}

	return &models.Transcript{
		VideoID:   videoID,
		Available: true,
		FullText:  fullText.String(),
		Segments:  segments,
	}
}
