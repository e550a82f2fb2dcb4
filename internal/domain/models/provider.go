package models

// AIProvider identifies which LLM backend serves a generation request.
type AIProvider string

const (
	AIProviderGemini AIProvider = "gemini"
	AIProviderOpenAI AIProvider = "openai"
	AIProviderClaude AIProvider = "claude"
	AIProviderGroq   AIProvider = "groq"
)

// KnownAIProviders lists every backend the provider factory can build.
var KnownAIProviders = []AIProvider{
	AIProviderGemini,
	AIProviderOpenAI,
	AIProviderClaude,
	AIProviderGroq,
}

func (p AIProvider) Valid() bool {
	for _, known := range KnownAIProviders {
		if p == known {
			return true
		}
	}
	return false
}
