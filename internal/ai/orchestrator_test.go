package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Dhiren507/skillsync/internal/ai/providers"
	"github.com/Dhiren507/skillsync/internal/domain/models"
)

type fakeTranscripts struct {
	transcript *models.Transcript
	fetches    int
}

func (f *fakeTranscripts) Fetch(ctx context.Context, videoID string) *models.Transcript {
	f.fetches++
	if f.transcript != nil {
		return f.transcript
	}
	return &models.Transcript{VideoID: videoID, Available: false, Error: "no captions found"}
}

type fakeClient struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) Name() string { return "fake" }

type fakeFactory struct {
	client *fakeClient
	err    error
}

func (f *fakeFactory) Client(provider models.AIProvider) (providers.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type memoryCache struct {
	entries map[string][]byte
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func cacheKey(videoID string, contentType models.ContentType, variant string) string {
	return fmt.Sprintf("%s|%s|%s", videoID, contentType, variant)
}

func (m *memoryCache) Get(ctx context.Context, videoID string, contentType models.ContentType, variant string) ([]byte, bool, error) {
	payload, ok := m.entries[cacheKey(videoID, contentType, variant)]
	return payload, ok, nil
}

func (m *memoryCache) Put(ctx context.Context, videoID string, contentType models.ContentType, variant string, provider models.AIProvider, payload []byte) error {
	m.puts++
	m.entries[cacheKey(videoID, contentType, variant)] = payload
	return nil
}

func summaryRequest() *models.GenerationRequest {
	return &models.GenerationRequest{
		VideoID:              "vid-1",
		Title:                "Go Concurrency",
		Description:          "Channels and goroutines.",
		VideoDurationSeconds: 600,
		ContentType:          models.ContentSummary,
		Provider:             models.AIProviderGemini,
	}
}

func TestGenerateSummary(t *testing.T) {
	transcripts := &fakeTranscripts{transcript: &models.Transcript{
		VideoID:   "vid-1",
		Available: true,
		FullText:  strings.Repeat("The video gives an introduction to goroutines with an example. ", 3),
		Segments: []models.TranscriptSegment{
			{StartSeconds: 0, Text: "an introduction to goroutines"},
			{StartSeconds: 60, Text: "a worked example"},
			{StartSeconds: 120, Text: "more detail"},
			{StartSeconds: 180, Text: "more detail"},
			{StartSeconds: 240, Text: "more detail"},
			{StartSeconds: 300, Text: "a summary of everything"},
		},
	}}
	client := &fakeClient{response: "SUMMARY: Goroutines are lightweight. An introduction and example follow."}
	cache := newMemoryCache()

	o := NewOrchestrator(transcripts, &fakeFactory{client: client}, cache)

	result, err := o.GenerateSummary(context.Background(), summaryRequest())
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	if strings.HasPrefix(result.Content, "SUMMARY:") {
		t.Errorf("label not stripped: %q", result.Content)
	}
	if len(result.Timestamps) == 0 {
		t.Error("no timestamps aligned")
	}
	if cache.puts != 1 {
		t.Errorf("cache puts = %d, want 1", cache.puts)
	}
	if client.calls != 1 {
		t.Errorf("provider calls = %d, want 1", client.calls)
	}
}

func TestGenerateSummaryCacheHit(t *testing.T) {
	cache := newMemoryCache()
	cached, _ := json.Marshal(models.SummaryResult{Content: "cached summary"})
	cache.entries[cacheKey("vid-1", models.ContentSummary, "")] = cached

	client := &fakeClient{response: "fresh"}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, cache)

	result, err := o.GenerateSummary(context.Background(), summaryRequest())
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	if result.Content != "cached summary" {
		t.Errorf("content = %q, want cached result", result.Content)
	}
	if client.calls != 0 {
		t.Errorf("provider called %d times on a cache hit", client.calls)
	}
}

func TestGenerateSummaryForceBypassesCache(t *testing.T) {
	cache := newMemoryCache()
	cached, _ := json.Marshal(models.SummaryResult{Content: "stale"})
	cache.entries[cacheKey("vid-1", models.ContentSummary, "")] = cached

	client := &fakeClient{response: "fresh summary"}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, cache)

	req := summaryRequest()
	req.Force = true
	result, err := o.GenerateSummary(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	if result.Content != "fresh summary" {
		t.Errorf("content = %q, want regenerated result", result.Content)
	}
	if client.calls != 1 {
		t.Errorf("provider calls = %d, want 1", client.calls)
	}
}

func TestGenerateSummaryDegradesWithoutTranscript(t *testing.T) {
	transcripts := &fakeTranscripts{} // always unavailable
	client := &fakeClient{response: "An inferred summary with an introduction."}

	o := NewOrchestrator(transcripts, &fakeFactory{client: client}, newMemoryCache())

	result, err := o.GenerateSummary(context.Background(), summaryRequest())
	if err != nil {
		t.Fatalf("GenerateSummary: %v", err)
	}
	if len(client.prompts) != 1 || !strings.Contains(client.prompts[0], "No transcript is available") {
		t.Error("prompt did not degrade to title/description inference")
	}
	if len(result.Timestamps) != len(structurePoints) {
		t.Errorf("got %d timestamps, want the %d estimated points", len(result.Timestamps), len(structurePoints))
	}
}

func TestGenerateSummaryUnknownProvider(t *testing.T) {
	cfgErr := &providers.ConfigurationError{Provider: "nonsense", Reason: "unknown AI provider: nonsense"}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{err: cfgErr}, newMemoryCache())

	_, err := o.GenerateSummary(context.Background(), summaryRequest())
	if err == nil {
		t.Fatal("expected error")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Stage != StageProvider {
		t.Fatalf("error = %v, want provider-stage GenerationError", err)
	}
	var gotCfg *providers.ConfigurationError
	if !errors.As(err, &gotCfg) {
		t.Fatal("ConfigurationError not reachable through Unwrap")
	}
}

func quizResponse(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "QUESTION %d: Question %d?\nA) one\nB) two\nC) three\nD) four\nCORRECT: A\nEXPLANATION: why.\n", i, i)
	}
	return b.String()
}

func TestGenerateQuizUsesCachedSummary(t *testing.T) {
	cache := newMemoryCache()
	cached, _ := json.Marshal(models.SummaryResult{Content: "the existing summary"})
	cache.entries[cacheKey("vid-1", models.ContentSummary, "")] = cached

	client := &fakeClient{response: quizResponse(5)}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, cache)

	req := summaryRequest()
	req.ContentType = models.ContentQuiz
	result, err := o.GenerateQuiz(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(result.Questions) != 5 {
		t.Fatalf("got %d questions", len(result.Questions))
	}
	if client.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (summary came from cache)", client.calls)
	}
	if !strings.Contains(client.prompts[0], "the existing summary") {
		t.Error("quiz prompt not built from the cached summary")
	}
}

func TestGenerateQuizGeneratesSummaryFirst(t *testing.T) {
	// No summary cached: the first provider call must be the summary, the
	// second the quiz, and both results must land in the cache.
	client := &fakeClient{}
	responses := []string{"A generated summary about goroutines.", quizResponse(3)}
	call := 0
	clientFn := clientFunc(func(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
		client.prompts = append(client.prompts, prompt)
		resp := responses[call]
		call++
		return resp, nil
	})

	cache := newMemoryCache()
	factory := factoryFunc(func(models.AIProvider) (providers.Client, error) { return clientFn, nil })
	o := NewOrchestrator(&fakeTranscripts{}, factory, cache)

	req := summaryRequest()
	req.ContentType = models.ContentQuiz
	req.Options.QuestionCount = 3
	result, err := o.GenerateQuiz(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if call != 2 {
		t.Fatalf("provider calls = %d, want 2", call)
	}
	if len(result.Questions) != 3 {
		t.Fatalf("got %d questions", len(result.Questions))
	}
	if !strings.Contains(client.prompts[1], "A generated summary about goroutines.") {
		t.Error("quiz prompt not built from the freshly generated summary")
	}
	if _, ok := cache.entries[cacheKey("vid-1", models.ContentSummary, "")]; !ok {
		t.Error("intermediate summary not cached")
	}
	if _, ok := cache.entries[cacheKey("vid-1", models.ContentQuiz, "3")]; !ok {
		t.Error("quiz not cached under its count variant")
	}
}

type clientFunc func(ctx context.Context, prompt string, contentType models.ContentType) (string, error)

func (f clientFunc) Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error) {
	return f(ctx, prompt, contentType)
}

func (f clientFunc) Name() string { return "func" }

type factoryFunc func(provider models.AIProvider) (providers.Client, error)

func (f factoryFunc) Client(provider models.AIProvider) (providers.Client, error) { return f(provider) }

func TestGenerateQuizParseFailure(t *testing.T) {
	cache := newMemoryCache()
	cached, _ := json.Marshal(models.SummaryResult{Content: "summary"})
	cache.entries[cacheKey("vid-1", models.ContentSummary, "")] = cached

	client := &fakeClient{response: "I cannot write quizzes today."}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, cache)

	req := summaryRequest()
	req.ContentType = models.ContentQuiz
	_, err := o.GenerateQuiz(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Stage != StageParse {
		t.Fatalf("error = %v, want parse-stage GenerationError", err)
	}
	var pf *ParseFailure
	if !errors.As(err, &pf) {
		t.Fatal("ParseFailure not reachable through Unwrap")
	}
}

func TestGenerateQuizUnderDeliveryTolerated(t *testing.T) {
	cache := newMemoryCache()
	cached, _ := json.Marshal(models.SummaryResult{Content: "summary"})
	cache.entries[cacheKey("vid-1", models.ContentSummary, "")] = cached

	client := &fakeClient{response: quizResponse(2)}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, cache)

	req := summaryRequest()
	req.ContentType = models.ContentQuiz
	req.Options.QuestionCount = 5
	result, err := o.GenerateQuiz(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Errorf("got %d questions, want the 2 that parsed", len(result.Questions))
	}
}

func TestGenerateNotesVariants(t *testing.T) {
	client := &fakeClient{response: "## Section One\ncontent\n## Section Two\nmore"}
	cache := newMemoryCache()
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, cache)

	req := summaryRequest()
	req.ContentType = models.ContentNotes
	req.Options.NotesFormat = models.NotesOutline
	result, err := o.GenerateNotes(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateNotes: %v", err)
	}
	if result.Format != models.NotesOutline {
		t.Errorf("format = %q", result.Format)
	}
	if len(result.Sections) != 2 {
		t.Errorf("got %d sections", len(result.Sections))
	}
	if _, ok := cache.entries[cacheKey("vid-1", models.ContentNotes, "outline")]; !ok {
		t.Error("notes not cached under the format variant")
	}
	// Bullet and outline notes must cache independently.
	if _, ok := cache.entries[cacheKey("vid-1", models.ContentNotes, "bullet")]; ok {
		t.Error("unexpected bullet-variant entry")
	}
}

func TestAskTutor(t *testing.T) {
	client := &fakeClient{response: "  Append grows a slice.  "}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, newMemoryCache())

	req := summaryRequest()
	req.ContentType = models.ContentTutor
	req.Options.Question = "What does append do?"
	answer, err := o.AskTutor(context.Background(), req)
	if err != nil {
		t.Fatalf("AskTutor: %v", err)
	}
	if answer != "Append grows a slice." {
		t.Errorf("answer = %q", answer)
	}
}

func TestAskTutorGeneralQuestion(t *testing.T) {
	client := &fakeClient{response: "answer"}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, newMemoryCache())

	req := &models.GenerationRequest{
		ContentType: models.ContentTutor,
		Provider:    models.AIProviderGemini,
		Options:     models.GenerationOptions{Question: "What is a pointer?"},
	}
	if _, err := o.AskTutor(context.Background(), req); err != nil {
		t.Fatalf("AskTutor: %v", err)
	}
	if strings.Contains(client.prompts[0], "VIDEO TITLE") {
		t.Error("general question prompt must not carry video context")
	}
}

func TestAskTutorRequiresQuestion(t *testing.T) {
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: &fakeClient{}}, newMemoryCache())

	req := summaryRequest()
	req.ContentType = models.ContentTutor
	if _, err := o.AskTutor(context.Background(), req); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestProviderErrorSurfaced(t *testing.T) {
	provErr := &providers.ProviderError{Provider: models.AIProviderGemini, Message: "timeout"}
	client := &fakeClient{err: provErr}
	o := NewOrchestrator(&fakeTranscripts{}, &fakeFactory{client: client}, newMemoryCache())

	_, err := o.GenerateSummary(context.Background(), summaryRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	var got *providers.ProviderError
	if !errors.As(err, &got) {
		t.Fatalf("error = %v, want wrapped ProviderError", err)
	}
	if got.Message != "timeout" {
		t.Errorf("message = %q", got.Message)
	}
}
