package grading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Name() string { return "stub" }

func newTestGrader(gen *stubGenerator) *Grader {
	if gen == nil {
		return NewGrader(nil, DefaultPolicy(), time.Second, zerolog.Nop())
	}
	return NewGrader(gen, DefaultPolicy(), time.Second, zerolog.Nop())
}

func TestGradeQuizTextUsesModelResponse(t *testing.T) {
	gen := &stubGenerator{response: "Score: 72\nFeedback: Covers the main ideas with some gaps."}
	g := newTestGrader(gen)

	score, feedback := g.GradeQuizText(context.Background(), "Explain recursion.", "A function calling itself with a base case.", 100)
	require.Equal(t, 72, score)
	require.Equal(t, "Covers the main ideas with some gaps.", feedback)
	require.Equal(t, 1, gen.calls)
}

func TestGradeQuizTextClampsModelScore(t *testing.T) {
	gen := &stubGenerator{response: "Score: 140\nFeedback: generous"}
	g := newTestGrader(gen)

	score, _ := g.GradeQuizText(context.Background(), "q", "a decent answer about the topic at hand", 100)
	require.Equal(t, 100, score)
}

func TestGradeQuizTextFallsBackOnServiceError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}
	g := newTestGrader(gen)

	score, feedback := g.GradeQuizText(context.Background(), "q", "short", 100)
	require.Equal(t, 10, score)
	require.Contains(t, feedback, "Enable AI evaluation")
}

func TestGradeQuizTextFallsBackOnMalformedResponse(t *testing.T) {
	gen := &stubGenerator{response: "The answer looks fine to me."}
	g := newTestGrader(gen)

	score, feedback := g.GradeQuizText(context.Background(), "q", "short", 100)
	require.Equal(t, 10, score)
	require.Contains(t, feedback, "basic length-based scoring")
}

func TestGradeQuizTextWithoutGenerator(t *testing.T) {
	g := newTestGrader(nil)
	require.False(t, g.Available())
	require.Empty(t, g.Provider())

	score, _ := g.GradeQuizText(context.Background(), "q", "short", 100)
	require.Equal(t, 10, score)
}

func TestGradeCodeFallsBackOnFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("timeout")}
	g := newTestGrader(gen)

	score, feedback := g.GradeCode(context.Background(), "Compute square roots safely.", nil, pythonSample, "python")
	require.Equal(t, 59, score)
	require.Contains(t, feedback, "structural analysis")
}

func TestGradeCodeUsesModelResponse(t *testing.T) {
	gen := &stubGenerator{response: "Score: 88\nFeedback: Handles the edge cases correctly."}
	g := newTestGrader(gen)

	score, feedback := g.GradeCode(context.Background(), "problem", nil, pythonSample, "python")
	require.Equal(t, 88, score)
	require.Equal(t, "Handles the edge cases correctly.", feedback)
}

func TestGradeMultipleChoiceScoreIsDeterministic(t *testing.T) {
	// The model tries to award a different score; only its feedback survives.
	gen := &stubGenerator{response: "Score: 100\nFeedback: You nearly got them all."}
	g := newTestGrader(gen)

	score, feedback := g.GradeMultipleChoice(context.Background(), []string{"A", "B", "C"}, []string{"A", "B", "D"})
	require.Equal(t, 67, score)
	require.Equal(t, "You nearly got them all.", feedback)
}

func TestGradeMultipleChoiceFallbackFeedback(t *testing.T) {
	gen := &stubGenerator{err: errors.New("unavailable")}
	g := newTestGrader(gen)

	score, feedback := g.GradeMultipleChoice(context.Background(), []string{"A", "B"}, []string{"A", "B"})
	require.Equal(t, 100, score)
	require.Contains(t, feedback, "Quiz Results Summary")
}

func TestGradeMultipleChoiceMismatchSkipsModel(t *testing.T) {
	gen := &stubGenerator{response: "Score: 50\nFeedback: irrelevant"}
	g := newTestGrader(gen)

	score, feedback := g.GradeMultipleChoice(context.Background(), []string{"A", "B"}, []string{"A"})
	require.Equal(t, 0, score)
	require.Contains(t, feedback, "doesn't match")
	require.Zero(t, gen.calls)
}

func TestReinitializeSwapsGenerator(t *testing.T) {
	g := newTestGrader(nil)
	require.False(t, g.Available())

	gen := &stubGenerator{response: "Score: 60\nFeedback: ok"}
	g.Reinitialize(gen)
	require.True(t, g.Available())
	require.Equal(t, "stub", g.Provider())

	score, _ := g.GradeQuizText(context.Background(), "q", "an answer of moderate length for the quiz", 100)
	require.Equal(t, 60, score)

	g.Reinitialize(nil)
	require.False(t, g.Available())
}
