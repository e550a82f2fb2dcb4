package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// Prompt builders are pure functions. Each one bakes a rigid output grammar
// into the prompt so the matching parser can get away with line/regex
// matching instead of a general-purpose parser.

const (
	// maxTranscriptChars is the cutoff above which a transcript is condensed
	// before being embedded in any prompt, keeping well under provider token
	// limits.
	maxTranscriptChars = 50000

	// minUsableTranscript marks transcripts too short to be worth quoting;
	// below this the model is told to work from title and description.
	minUsableTranscript = 50
)

func BuildSummaryPrompt(title, description string, transcript *models.Transcript) string {
	source := transcriptExcerpt(transcript)

	if source == "" {
		return fmt.Sprintf(`You are an educational assistant. Write a structured 200-400 word summary of a YouTube video for a student.

VIDEO TITLE: %s
VIDEO DESCRIPTION: %s

No transcript is available, so infer the likely content from the title and description. Do not mention the missing transcript or apologize for it.

Structure the summary in markdown with a short opening paragraph, 3-5 bullet points of key ideas, and a one-sentence takeaway.`, title, description)
	}

	return fmt.Sprintf(`You are an educational assistant. Write a structured 200-400 word summary of a YouTube video for a student.

VIDEO TITLE: %s
VIDEO DESCRIPTION: %s

TRANSCRIPT:
%s

Structure the summary in markdown with a short opening paragraph, 3-5 bullet points of key ideas, and a one-sentence takeaway. Mention the main topics in the order the video covers them.`, title, description, source)
}

// BuildQuizPrompt demands an exact output grammar. The rigidity is deliberate:
// the quiz parser matches these markers positionally.
func BuildQuizPrompt(sourceText string, questionCount int) string {
	return fmt.Sprintf(`Create exactly %d multiple-choice questions from this video summary.

SOURCE:
%s

Output format, repeated for every question, with no extra text before, between, or after:

QUESTION 1: <question text>
A) <option>
B) <option>
C) <option>
D) <option>
CORRECT: <letter A-D>
EXPLANATION: <one sentence explaining the correct answer>

Rules:
- Exactly 4 options per question, exactly one correct.
- Number questions sequentially starting at 1.
- Do not use markdown, bullets, or any formatting other than the grammar above.`, questionCount, sourceText)
}

func BuildNotesPrompt(title, description string, transcript *models.Transcript, format models.NotesFormat) string {
	source := transcriptExcerpt(transcript)
	if source == "" {
		source = fmt.Sprintf("No transcript available. Infer the content from the title %q and description %q.", title, description)
	}

	var structure string
	switch format {
	case models.NotesOutline:
		structure = `Produce a numbered outline in markdown. Start each major section with a "## " header, then numbered points (1., 2., ...) with short sub-points indented beneath them.`
	case models.NotesDetailed:
		structure = `Produce detailed prose study notes in markdown. Start each major section with a "## " header followed by 1-3 explanatory paragraphs. Include definitions and examples where the video gives them.`
	default:
		structure = `Produce flat bullet-point notes in markdown. Use "- " bullets, one fact or idea per bullet, grouped under "## " section headers.`
	}

	return fmt.Sprintf(`You are taking study notes on a YouTube video for later review.

VIDEO TITLE: %s

TRANSCRIPT:
%s

%s

Cover the full video, not just the opening. Keep section titles short (2-6 words).`, title, source, structure)
}

func BuildTutorPrompt(title, description string, transcript *models.Transcript, summary, question string) string {
	var context strings.Builder
	fmt.Fprintf(&context, "VIDEO TITLE: %s\n", title)
	if description != "" {
		fmt.Fprintf(&context, "VIDEO DESCRIPTION: %s\n", description)
	}
	if summary != "" {
		fmt.Fprintf(&context, "\nVIDEO SUMMARY:\n%s\n", summary)
	}
	if source := transcriptExcerpt(transcript); source != "" {
		fmt.Fprintf(&context, "\nTRANSCRIPT:\n%s\n", source)
	}

	return fmt.Sprintf(`You are a patient tutor helping a student who is studying a YouTube video.

%s
STUDENT QUESTION: %s

Answer the question directly and concretely, grounded in the video content above when it is relevant. If the video does not cover the question, say so briefly and answer from general knowledge. Keep the answer under 300 words.`, context.String(), question)
}

// BuildGeneralTutorPrompt is the context-free variant used when the question
// is not tied to any video.
func BuildGeneralTutorPrompt(question string) string {
	return fmt.Sprintf(`You are a patient tutor answering a student's question.

STUDENT QUESTION: %s

Answer directly and concretely. Keep the answer under 300 words.`, question)
}

// transcriptExcerpt returns the transcript text ready for prompt embedding, or
// "" when the transcript is absent or too short to be useful. Oversized
// transcripts are condensed first.
func transcriptExcerpt(transcript *models.Transcript) string {
	if transcript == nil || !transcript.Available {
		return ""
	}
	text := strings.TrimSpace(transcript.FullText)
	if len(text) < minUsableTranscript {
		return ""
	}
	return condenseTranscript(text)
}

var sentenceEndRe = regexp.MustCompile(`([.!?])\s+`)

// condenseTranscript reduces an oversized transcript below
// maxTranscriptChars. It splits on sentence boundaries and keeps a prefix of
// whole sentences, then appends a note so the model knows the tail is
// missing but should still aim for full-video coverage.
func condenseTranscript(text string) string {
	if len(text) <= maxTranscriptChars {
		return text
	}

	// Keep room for the truncation note.
	budget := maxTranscriptChars - 500

	marked := sentenceEndRe.ReplaceAllString(text, "$1\x00")
	sentences := strings.Split(marked, "\x00")

	var b strings.Builder
	for _, s := range sentences {
		if b.Len()+len(s)+1 > budget {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	if b.Len() == 0 {
		// No sentence boundaries at all; hard-cut.
		b.WriteString(text[:budget])
	}

	b.WriteString("\n\n[NOTE: the transcript was truncated for length. It continues beyond this point; still cover the whole video based on the title, description, and the portion shown.]")
	return b.String()
}
