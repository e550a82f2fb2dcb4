package ai

import (
	"fmt"

	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// ParseFailure means the provider returned text the expected grammar could not
// extract anything from. Summary/notes/tutor degrade to raw text instead, so
// in practice only the quiz parser produces this.
type ParseFailure struct {
	ContentType models.ContentType
	Reason      string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("failed to parse %s response: %s", e.ContentType, e.Reason)
}

// GenerationError tags a pipeline failure with the stage it happened in, so
// callers and the HTTP layer can tell "fix your API key" from "try again
// later" from "the model returned garbage". The underlying typed error stays
// reachable through Unwrap.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

const (
	StageCache      = "cache"
	StageTranscript = "transcript"
	StagePrompt     = "prompt"
	StageProvider   = "provider"
	StageParse      = "parse"
	StageAlign      = "align"
	StagePersist    = "persist"
)
