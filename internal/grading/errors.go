package grading

import "errors"

// ErrServiceUnavailable indicates no text generation handle is configured.
// Graders never surface it; they route to the fallback scorer instead.
var ErrServiceUnavailable = errors.New("text generation service unavailable")

// ErrMalformedResponse indicates the model response did not honor the
// Score/Feedback contract. Callers must treat it like a network failure.
var ErrMalformedResponse = errors.New("malformed evaluation response")

// ErrInvalidFormat indicates a submission payload whose shape does not match
// the evaluator's declared quiz kind.
var ErrInvalidFormat = errors.New("invalid submission format")
