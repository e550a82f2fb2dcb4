package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Dhiren507/skillsync/internal/ai/providers"
	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// TranscriptSource fetches the caption track for a video. Implementations
// never return an error: transcript absence is a normal degraded-input state
// carried on the Transcript itself.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) *models.Transcript
}

// ProviderFactory resolves a provider ID to a client, or a typed
// configuration error.
type ProviderFactory interface {
	Client(provider models.AIProvider) (providers.Client, error)
}

// ContentCache is the persistence-layer hook checked before spending provider
// tokens. A persisted result for (videoID, contentType, variant) is returned
// unchanged unless the request forces regeneration. Put is best-effort.
type ContentCache interface {
	Get(ctx context.Context, videoID string, contentType models.ContentType, variant string) ([]byte, bool, error)
	Put(ctx context.Context, videoID string, contentType models.ContentType, variant string, provider models.AIProvider, payload []byte) error
}

// ProgressSink receives stage events while a generation runs. Implementations
// must not block.
type ProgressSink interface {
	Publish(ctx context.Context, msg *models.StreamMessage)
}

const defaultQuestionCount = 5

// Orchestrator sequences one generation: cache check, transcript, prompt,
// provider call, parse, and (for summaries) timestamp alignment. It holds no
// per-request state and is safe for concurrent use; it does not serialize
// concurrent requests for the same key itself - callers get single-flight by
// wrapping it with a lock (see cache.RedisClient.AcquireGenerationLock).
type Orchestrator struct {
	transcripts TranscriptSource
	factory     ProviderFactory
	cache       ContentCache
	aligner     *Aligner
	progress    ProgressSink
	log         *logrus.Logger
}

type OrchestratorOption func(*Orchestrator)

// WithAligner swaps the timestamp aligner, typically to inject a test
// vocabulary.
func WithAligner(a *Aligner) OrchestratorOption {
	return func(o *Orchestrator) { o.aligner = a }
}

// WithProgress attaches a sink for generation stage events.
func WithProgress(sink ProgressSink) OrchestratorOption {
	return func(o *Orchestrator) { o.progress = sink }
}

func WithLogger(log *logrus.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = log }
}

func NewOrchestrator(transcripts TranscriptSource, factory ProviderFactory, cache ContentCache, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		transcripts: transcripts,
		factory:     factory,
		cache:       cache,
		aligner:     NewAligner(nil),
		log:         logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateSummary produces a markdown summary plus navigable timestamps. A
// missing transcript is tolerated: the prompt degrades to title/description
// inference and the aligner falls back to estimated positions.
func (o *Orchestrator) GenerateSummary(ctx context.Context, req *models.GenerationRequest) (*models.SummaryResult, error) {
	if cached, ok := o.cacheGet(ctx, req, models.ContentSummary, ""); ok {
		var result models.SummaryResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
	}

	transcript := o.resolveTranscript(ctx, req)
	prompt := BuildSummaryPrompt(req.Title, req.Description, transcript)

	raw, err := o.invoke(ctx, req, models.ContentSummary, prompt)
	if err != nil {
		return nil, err
	}

	content := ParseSummary(raw)
	o.publish(ctx, req, models.ContentSummary, models.EventContentParsed, StageParse)

	result := &models.SummaryResult{
		Content:    content,
		Timestamps: o.aligner.Align(content, transcript, req.VideoDurationSeconds),
	}

	o.cachePut(ctx, req, models.ContentSummary, "", result)
	o.publish(ctx, req, models.ContentSummary, models.EventGenerationCompleted, "")
	return result, nil
}

// GenerateQuiz builds questions from the video's summary, not raw transcript,
// to keep prompts short. When no summary exists yet one is generated (and
// cached) first.
func (o *Orchestrator) GenerateQuiz(ctx context.Context, req *models.GenerationRequest) (*models.QuizResult, error) {
	count := req.Options.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}
	variant := strconv.Itoa(count)

	if cached, ok := o.cacheGet(ctx, req, models.ContentQuiz, variant); ok {
		var result models.QuizResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
	}

	source, err := o.quizSource(ctx, req)
	if err != nil {
		return nil, err
	}

	prompt := BuildQuizPrompt(source, count)
	raw, err := o.invoke(ctx, req, models.ContentQuiz, prompt)
	if err != nil {
		return nil, err
	}

	questions, err := ParseQuiz(raw)
	if err != nil {
		o.fail(ctx, req, models.ContentQuiz, StageParse, err)
		return nil, &GenerationError{Stage: StageParse, Err: err}
	}
	o.publish(ctx, req, models.ContentQuiz, models.EventContentParsed, StageParse)

	if len(questions) < count {
		o.log.WithFields(logrus.Fields{
			"video_id":  req.VideoID,
			"requested": count,
			"parsed":    len(questions),
		}).Warn("quiz under-delivered; keeping valid questions only")
	}

	result := &models.QuizResult{Questions: questions}
	o.cachePut(ctx, req, models.ContentQuiz, variant, result)
	o.publish(ctx, req, models.ContentQuiz, models.EventGenerationCompleted, "")
	return result, nil
}

// quizSource resolves the summary text quizzes are built from: an explicit
// SummaryRef, a cached summary, or a freshly generated one, in that order.
func (o *Orchestrator) quizSource(ctx context.Context, req *models.GenerationRequest) (string, error) {
	if req.Options.SummaryRef != "" {
		return req.Options.SummaryRef, nil
	}

	if cached, ok := o.cacheGet(ctx, req, models.ContentSummary, ""); ok {
		var summary models.SummaryResult
		if err := json.Unmarshal(cached, &summary); err == nil && summary.Content != "" {
			return summary.Content, nil
		}
	}

	summaryReq := *req
	summaryReq.ContentType = models.ContentSummary
	summaryReq.Force = false
	summary, err := o.GenerateSummary(ctx, &summaryReq)
	if err != nil {
		return "", fmt.Errorf("generating quiz source summary: %w", err)
	}
	return summary.Content, nil
}

// GenerateNotes produces sectioned study notes in the requested format.
func (o *Orchestrator) GenerateNotes(ctx context.Context, req *models.GenerationRequest) (*models.NotesResult, error) {
	format := req.Options.NotesFormat
	if format == "" {
		format = models.NotesBullet
	}
	variant := string(format)

	if cached, ok := o.cacheGet(ctx, req, models.ContentNotes, variant); ok {
		var result models.NotesResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &result, nil
		}
	}

	transcript := o.resolveTranscript(ctx, req)
	prompt := BuildNotesPrompt(req.Title, req.Description, transcript, format)

	raw, err := o.invoke(ctx, req, models.ContentNotes, prompt)
	if err != nil {
		return nil, err
	}

	result := ParseNotes(raw, format, req.VideoDurationSeconds)
	o.publish(ctx, req, models.ContentNotes, models.EventContentParsed, StageParse)

	o.cachePut(ctx, req, models.ContentNotes, variant, result)
	o.publish(ctx, req, models.ContentNotes, models.EventGenerationCompleted, "")
	return result, nil
}

// AskTutor answers a free-form question, grounded in the video context when
// one is supplied. Tutor answers are conversational and are not cached.
func (o *Orchestrator) AskTutor(ctx context.Context, req *models.GenerationRequest) (string, error) {
	question := req.Options.Question
	if question == "" {
		return "", &GenerationError{Stage: StagePrompt, Err: fmt.Errorf("tutor question is required")}
	}

	var prompt string
	if req.VideoID == "" {
		prompt = BuildGeneralTutorPrompt(question)
	} else {
		transcript := o.resolveTranscript(ctx, req)
		prompt = BuildTutorPrompt(req.Title, req.Description, transcript, req.Options.SummaryRef, question)
	}

	raw, err := o.invoke(ctx, req, models.ContentTutor, prompt)
	if err != nil {
		return "", err
	}

	answer := ParseTutor(raw)
	o.publish(ctx, req, models.ContentTutor, models.EventGenerationCompleted, "")
	return answer, nil
}

// resolveTranscript prefers a transcript supplied on the request (typically
// prefetched and persisted at import time) over a live fetch. Fetch failures
// never abort the pipeline.
func (o *Orchestrator) resolveTranscript(ctx context.Context, req *models.GenerationRequest) *models.Transcript {
	if req.Transcript != nil {
		return req.Transcript
	}
	if o.transcripts == nil || req.VideoID == "" {
		return &models.Transcript{VideoID: req.VideoID, Available: false, Error: "no transcript source configured"}
	}

	transcript := o.transcripts.Fetch(ctx, req.VideoID)
	if !transcript.Available {
		o.log.WithFields(logrus.Fields{
			"video_id": req.VideoID,
			"reason":   transcript.Error,
		}).Info("transcript unavailable, continuing without it")
	}
	o.publish(ctx, req, req.ContentType, models.EventTranscriptReady, StageTranscript)
	return transcript
}

func (o *Orchestrator) invoke(ctx context.Context, req *models.GenerationRequest, contentType models.ContentType, prompt string) (string, error) {
	client, err := o.factory.Client(req.Provider)
	if err != nil {
		o.fail(ctx, req, contentType, StageProvider, err)
		return "", &GenerationError{Stage: StageProvider, Err: err}
	}

	o.publish(ctx, req, contentType, models.EventProviderInvoked, StageProvider)
	raw, err := client.Generate(ctx, prompt, contentType)
	if err != nil {
		o.fail(ctx, req, contentType, StageProvider, err)
		return "", &GenerationError{Stage: StageProvider, Err: err}
	}
	return raw, nil
}

func (o *Orchestrator) cacheGet(ctx context.Context, req *models.GenerationRequest, contentType models.ContentType, variant string) ([]byte, bool) {
	if o.cache == nil || req.Force {
		return nil, false
	}
	payload, found, err := o.cache.Get(ctx, req.VideoID, contentType, variant)
	if err != nil {
		o.log.WithError(err).WithField("video_id", req.VideoID).Warn("content cache lookup failed")
		return nil, false
	}
	return payload, found
}

func (o *Orchestrator) cachePut(ctx context.Context, req *models.GenerationRequest, contentType models.ContentType, variant string, result interface{}) {
	if o.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		o.log.WithError(err).Warn("failed to encode result for cache")
		return
	}
	if err := o.cache.Put(ctx, req.VideoID, contentType, variant, req.Provider, payload); err != nil {
		o.log.WithError(err).WithField("video_id", req.VideoID).Warn("failed to persist generated content")
	}
}

func (o *Orchestrator) publish(ctx context.Context, req *models.GenerationRequest, contentType models.ContentType, event models.StreamEventType, stage string) {
	if o.progress == nil {
		return
	}
	o.progress.Publish(ctx, &models.StreamMessage{
		VideoID:     req.VideoID,
		ContentType: contentType,
		EventType:   event,
		Stage:       stage,
	})
}

func (o *Orchestrator) fail(ctx context.Context, req *models.GenerationRequest, contentType models.ContentType, stage string, err error) {
	if o.progress == nil {
		return
	}
	o.progress.Publish(ctx, &models.StreamMessage{
		VideoID:     req.VideoID,
		ContentType: contentType,
		EventType:   models.EventGenerationFailed,
		Stage:       stage,
		Error: &models.ErrorData{
			Code:    "generation_failed",
			Message: err.Error(),
			Stage:   stage,
		},
	})
}
