package webhooks

import "context"

// Interface defines the contract for the workflow-automation webhooks that do
// the actual LLM calling, prompt generation and recommendation writing.
type Interface interface {
	TriggerAnalysis(ctx context.Context, req AnalysisRequest) error
	GeneratePrompts(ctx context.Context, req PromptRequest) ([]string, error)
	RequestRecommendation(ctx context.Context, req RecommendationRequest) (string, error)
	Chat(ctx context.Context, req ChatRequest) (string, error)
}
