package llm

import (
	"context"
	"errors"
)

// ErrUnavailable indicates that the LLM service is unreachable or
// misconfigured. Callers distinguish this from validation and permission
// failures so clients can render different remediation guidance.
var ErrUnavailable = errors.New("llm service unavailable")

// TextGenerator is the interface for LLM text completion. All pipeline
// prompts use single-string completion style with strict JSON-only output
// instructions; typed results are recovered by the response parser.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GetModel() string
}
