package service

import "context"

// InsightEvent is one chunk of a streamed generation: either a piece of
// output text or a progress signal.
type InsightEvent struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

const (
	InsightEventText     = "text"
	InsightEventProgress = "progress"
	InsightEventDone     = "done"
)

type InsightConfig struct {
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// InsightGenerator is the external content-analysis collaborator. A
// generation can run for several minutes; implementations must close the
// returned channel when ctx is cancelled so the server-side loop stops and
// releases resources.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string, cfg InsightConfig) (<-chan InsightEvent, error)
}
