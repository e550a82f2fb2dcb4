package ai

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// Parsers are defensive around LLM output variance. Summary, notes and tutor
// parsing never hard-fail: the worst case is raw-text passthrough. Quiz
// parsing drops malformed questions silently and only errors when nothing at
// all survives, since an empty quiz is not a useful result.

const (
	// maxSectionChars caps a single notes section. Oversized sections are
	// repartitioned into "(Part N)" sections, never truncated.
	maxSectionChars = 10000

	// assumedDurationSeconds stands in when the video duration is unknown
	// (~18 minutes, a typical educational video).
	assumedDurationSeconds = 18 * 60
)

var summaryLabelRe = regexp.MustCompile(`(?i)^\s*SUMMARY\s*:\s*`)

// ParseSummary strips a leading "SUMMARY:" label if the model echoed one.
// Never fails; worst case returns the trimmed raw text.
func ParseSummary(raw string) string {
	return strings.TrimSpace(summaryLabelRe.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// ParseTutor is a trim-only passthrough; tutor answers carry no structure.
func ParseTutor(raw string) string {
	return strings.TrimSpace(raw)
}

var (
	questionMarkerRe = regexp.MustCompile(`(?im)^\s*QUESTION\s+\d+\s*:`)
	optionRe         = regexp.MustCompile(`^\s*([A-D])[).]?\s+(.+)$`)
	correctRe        = regexp.MustCompile(`(?i)^\s*(?:CORRECT|ANSWER)\s*:?\s*([A-D])\b`)
	explanationRe    = regexp.MustCompile(`(?i)^\s*EXPLANATION\s*:?\s*(.*)$`)
)

// ParseQuiz splits the response on QUESTION n: markers and extracts one
// QuizQuestion per block. A block missing the question text, exactly four
// options, or a valid correct letter is dropped, not surfaced malformed;
// under-delivery relative to the requested count is tolerated. Zero valid
// questions is a *ParseFailure.
func ParseQuiz(raw string) ([]models.QuizQuestion, error) {
	markers := questionMarkerRe.FindAllStringIndex(raw, -1)
	if len(markers) == 0 {
		return nil, &ParseFailure{ContentType: models.ContentQuiz, Reason: "no question markers found in response"}
	}

	var questions []models.QuizQuestion
	for i, m := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		block := raw[m[1]:end]

		if q, ok := parseQuizBlock(block); ok {
			questions = append(questions, q)
		}
	}

	if len(questions) == 0 {
		return nil, &ParseFailure{ContentType: models.ContentQuiz, Reason: "no valid questions survived parsing"}
	}

	return questions, nil
}

func parseQuizBlock(block string) (models.QuizQuestion, bool) {
	var q models.QuizQuestion
	options := make(map[int]string)
	correctIdx := -1

	lines := strings.Split(block, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := correctRe.FindStringSubmatch(line); m != nil {
			correctIdx = int(strings.ToUpper(m[1])[0] - 'A')
			continue
		}
		if m := explanationRe.FindStringSubmatch(line); m != nil {
			q.Explanation = strings.TrimSpace(m[1])
			continue
		}
		if m := optionRe.FindStringSubmatch(line); m != nil {
			options[int(m[1][0]-'A')] = strings.TrimSpace(m[2])
			continue
		}
		if q.Question == "" {
			q.Question = line
		}
	}

	if q.Question == "" || len(options) != 4 {
		return q, false
	}
	for i := 0; i < 4; i++ {
		text, ok := options[i]
		if !ok {
			return q, false
		}
		q.Options = append(q.Options, text)
	}
	if correctIdx < 0 || correctIdx >= len(q.Options) {
		return q, false
	}
	q.CorrectAnswerIndex = correctIdx

	return q, true
}

var (
	markdownHeaderRe = regexp.MustCompile(`^\s*#{2,3}\s+(.+?)\s*$`)
	romanHeaderRe    = regexp.MustCompile(`^\s*(?:X{1,3}|IX|IV|V|VI{1,3}|I{1,3})[.)]\s+(.+?)\s*$`)
	letterHeaderRe   = regexp.MustCompile(`^\s*[A-Z][.)]\s+(.+?)\s*$`)
)

// ParseNotes splits the response into titled sections on markdown headers,
// roman-numeral markers, or capital-letter list markers. Headerless content
// becomes a single "Notes" section. Section timestamps are spread evenly
// across the video duration in document order.
func ParseNotes(raw string, format models.NotesFormat, durationSeconds int) *models.NotesResult {
	content := strings.TrimSpace(raw)

	var sections []models.NoteSection
	var current *models.NoteSection
	var body strings.Builder

	flush := func() {
		if current != nil {
			current.Content = strings.TrimSpace(body.String())
			sections = append(sections, *current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		title := headerTitle(line)
		if title != "" {
			flush()
			current = &models.NoteSection{Title: title}
			continue
		}
		if current == nil {
			// Preamble before the first header; start an implicit section.
			if strings.TrimSpace(line) == "" {
				continue
			}
			current = &models.NoteSection{Title: "Notes"}
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	if len(sections) == 0 {
		sections = []models.NoteSection{{Title: "Notes", Content: content}}
	}

	sections = capSections(sections)
	assignSectionTimestamps(sections, durationSeconds)

	return &models.NotesResult{
		Content:  content,
		Format:   format,
		Sections: sections,
	}
}

func headerTitle(line string) string {
	if m := markdownHeaderRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := romanHeaderRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	if m := letterHeaderRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// capSections repartitions any oversized section into ordered parts. No
// characters are lost: concatenating the parts reproduces the original
// content exactly.
func capSections(sections []models.NoteSection) []models.NoteSection {
	var out []models.NoteSection
	for _, s := range sections {
		if len(s.Content) <= maxSectionChars {
			out = append(out, s)
			continue
		}
		part := 1
		for rest := s.Content; len(rest) > 0; part++ {
			n := len(rest)
			if n > maxSectionChars {
				// Split on a rune boundary; the remainder picks up the full
				// rune so reassembly stays exact.
				n = maxSectionChars
				for n > 0 && !utf8.RuneStart(rest[n]) {
					n--
				}
			}
			title := s.Title
			if part > 1 {
				title = fmt.Sprintf("%s (Part %d)", s.Title, part)
			}
			out = append(out, models.NoteSection{Title: title, Content: rest[:n]})
			rest = rest[n:]
		}
	}
	return out
}

func assignSectionTimestamps(sections []models.NoteSection, durationSeconds int) {
	if durationSeconds <= 0 {
		durationSeconds = assumedDurationSeconds
	}
	for i := range sections {
		sections[i].TimestampSeconds = durationSeconds * i / len(sections)
	}
}
