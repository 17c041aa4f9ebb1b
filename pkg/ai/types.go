package ai

import "context"

// TextGenerator is the single contract the grading layer depends on. A
// generator takes one prompt and returns the raw model text; parsing and
// scoring policy live with the caller.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
