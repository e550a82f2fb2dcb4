package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain text", "The video covers Go channels.", "The video covers Go channels."},
		{"label stripped", "SUMMARY: The video covers Go channels.", "The video covers Go channels."},
		{"lowercase label", "summary:   Go channels.", "Go channels."},
		{"surrounding whitespace", "\n\n  A summary.  \n", "A summary."},
		{"label mid-text untouched", "This SUMMARY: stays.", "This SUMMARY: stays."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSummary(tt.raw); got != tt.want {
				t.Errorf("ParseSummary(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func quizBlock(n int, question, correct string, options ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION %d: %s\n", n, question)
	letters := []string{"A", "B", "C", "D"}
	for i, opt := range options {
		fmt.Fprintf(&b, "%s) %s\n", letters[i], opt)
	}
	if correct != "" {
		fmt.Fprintf(&b, "CORRECT: %s\n", correct)
	}
	fmt.Fprintf(&b, "EXPLANATION: because.\n")
	return b.String()
}

func TestParseQuizWellFormed(t *testing.T) {
	raw := quizBlock(1, "What is a goroutine?", "B", "A thread", "A lightweight thread", "A process", "A mutex") +
		quizBlock(2, "What does make do?", "A", "Allocates", "Frees", "Copies", "Locks")

	questions, err := ParseQuiz(raw)
	if err != nil {
		t.Fatalf("ParseQuiz returned error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}

	q := questions[0]
	if q.Question != "What is a goroutine?" {
		t.Errorf("question = %q", q.Question)
	}
	if len(q.Options) != 4 {
		t.Fatalf("got %d options, want 4", len(q.Options))
	}
	if q.Options[1] != "A lightweight thread" {
		t.Errorf("option B = %q", q.Options[1])
	}
	if q.CorrectAnswerIndex != 1 {
		t.Errorf("correct index = %d, want 1", q.CorrectAnswerIndex)
	}
	if q.Explanation != "because." {
		t.Errorf("explanation = %q", q.Explanation)
	}
}

func TestParseQuizDropsMalformed(t *testing.T) {
	// Five blocks: #2 has three options, #4 has no correct marker. The other
	// three must survive untouched.
	raw := quizBlock(1, "Q1?", "A", "w", "x", "y", "z") +
		quizBlock(2, "Q2?", "A", "w", "x", "y") +
		quizBlock(3, "Q3?", "C", "w", "x", "y", "z") +
		quizBlock(4, "Q4?", "", "w", "x", "y", "z") +
		quizBlock(5, "Q5?", "D", "w", "x", "y", "z")

	questions, err := ParseQuiz(raw)
	if err != nil {
		t.Fatalf("ParseQuiz returned error: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("got %d questions, want 3 survivors", len(questions))
	}
	want := []string{"Q1?", "Q3?", "Q5?"}
	for i, q := range questions {
		if q.Question != want[i] {
			t.Errorf("question %d = %q, want %q", i, q.Question, want[i])
		}
	}
}

func TestParseQuizFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no markers", "Here are some questions about goroutines."},
		{"all malformed", quizBlock(1, "Q1?", "E", "w", "x", "y", "z") + quizBlock(2, "Q2?", "A", "w")},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuiz(tt.raw)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var pf *ParseFailure
			if !errors.As(err, &pf) {
				t.Fatalf("error type = %T, want *ParseFailure", err)
			}
			if pf.ContentType != models.ContentQuiz {
				t.Errorf("content type = %q", pf.ContentType)
			}
		})
	}
}

func TestParseQuizAnswerVariants(t *testing.T) {
	raw := "QUESTION 1: Q?\nA. one\nB. two\nC. three\nD. four\nANSWER: c\nEXPLANATION: x\n"

	questions, err := ParseQuiz(raw)
	if err != nil {
		t.Fatalf("ParseQuiz returned error: %v", err)
	}
	if questions[0].CorrectAnswerIndex != 2 {
		t.Errorf("correct index = %d, want 2", questions[0].CorrectAnswerIndex)
	}
}

func TestParseNotesHeaders(t *testing.T) {
	raw := `## Introduction
Go is a language.

## Concurrency
Goroutines are cheap.
Channels connect them.`

	notes := ParseNotes(raw, models.NotesBullet, 600)
	if len(notes.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(notes.Sections))
	}
	if notes.Sections[0].Title != "Introduction" {
		t.Errorf("section 0 title = %q", notes.Sections[0].Title)
	}
	if notes.Sections[1].Title != "Concurrency" {
		t.Errorf("section 1 title = %q", notes.Sections[1].Title)
	}
	if !strings.Contains(notes.Sections[1].Content, "Channels connect them.") {
		t.Errorf("section 1 content = %q", notes.Sections[1].Content)
	}
	if notes.Format != models.NotesBullet {
		t.Errorf("format = %q", notes.Format)
	}
}

func TestParseNotesRomanHeaders(t *testing.T) {
	raw := "I. First topic\nsome text\nII) Second topic\nmore text"

	notes := ParseNotes(raw, models.NotesOutline, 0)
	if len(notes.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(notes.Sections))
	}
	if notes.Sections[0].Title != "First topic" || notes.Sections[1].Title != "Second topic" {
		t.Errorf("titles = %q, %q", notes.Sections[0].Title, notes.Sections[1].Title)
	}
}

func TestParseNotesHeaderless(t *testing.T) {
	raw := "just a wall of text\nwith no headers at all"

	notes := ParseNotes(raw, models.NotesDetailed, 300)
	if len(notes.Sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(notes.Sections))
	}
	if notes.Sections[0].Title != "Notes" {
		t.Errorf("title = %q, want Notes", notes.Sections[0].Title)
	}
	if !strings.Contains(notes.Sections[0].Content, "wall of text") {
		t.Errorf("content = %q", notes.Sections[0].Content)
	}
}

func TestParseNotesSectionCapLossless(t *testing.T) {
	big := strings.Repeat("x", maxSectionChars*2+500)
	raw := "## Everything\n" + big

	notes := ParseNotes(raw, models.NotesBullet, 600)
	if len(notes.Sections) != 3 {
		t.Fatalf("got %d sections, want 3 parts", len(notes.Sections))
	}

	var reassembled strings.Builder
	for i, s := range notes.Sections {
		if len(s.Content) > maxSectionChars {
			t.Errorf("part %d length %d exceeds cap", i, len(s.Content))
		}
		reassembled.WriteString(s.Content)
	}
	if reassembled.String() != big {
		t.Error("concatenated parts do not reproduce the original content")
	}

	if notes.Sections[0].Title != "Everything" {
		t.Errorf("part 1 title = %q", notes.Sections[0].Title)
	}
	if notes.Sections[1].Title != "Everything (Part 2)" {
		t.Errorf("part 2 title = %q", notes.Sections[1].Title)
	}
	if notes.Sections[2].Title != "Everything (Part 3)" {
		t.Errorf("part 3 title = %q", notes.Sections[2].Title)
	}
}

func TestParseNotesSectionCapMultibyte(t *testing.T) {
	// Three bytes per rune, sized so a naive byte split would land mid-rune.
	big := strings.Repeat("学", maxSectionChars/3+200)
	raw := "## 東京\n" + big

	notes := ParseNotes(raw, models.NotesBullet, 600)
	if len(notes.Sections) < 2 {
		t.Fatalf("got %d sections, want a split", len(notes.Sections))
	}

	var reassembled strings.Builder
	for i, s := range notes.Sections {
		if len(s.Content) > maxSectionChars {
			t.Errorf("part %d length %d exceeds cap", i, len(s.Content))
		}
		if !utf8.ValidString(s.Content) {
			t.Errorf("part %d is not valid UTF-8", i)
		}
		reassembled.WriteString(s.Content)
	}
	if reassembled.String() != big {
		t.Error("concatenated parts do not reproduce the original content")
	}
}

func TestParseNotesTimestampsSpread(t *testing.T) {
	raw := "## A\na\n## B\nb\n## C\nc\n## D\nd"

	notes := ParseNotes(raw, models.NotesBullet, 400)
	if len(notes.Sections) != 4 {
		t.Fatalf("got %d sections", len(notes.Sections))
	}
	want := []int{0, 100, 200, 300}
	for i, s := range notes.Sections {
		if s.TimestampSeconds != want[i] {
			t.Errorf("section %d timestamp = %d, want %d", i, s.TimestampSeconds, want[i])
		}
	}
}
