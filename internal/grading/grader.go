package grading

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/evalio/evalio-go-api/internal/models"
	"github.com/evalio/evalio-go-api/internal/observability"
	"github.com/evalio/evalio-go-api/pkg/ai"
)

// Grader combines the generative text service with the heuristic fallback
// scorers. Every grading entry point returns a bounded score and feedback:
// service outages, timeouts, and malformed responses all route to the
// matching fallback and are never surfaced to callers.
type Grader struct {
	mu        sync.RWMutex
	generator ai.TextGenerator
	heuristic *Heuristic
	timeout   time.Duration
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewGrader constructs a grader. A nil generator is valid and keeps the
// grader in fallback-only mode until Reinitialize installs a handle.
func NewGrader(generator ai.TextGenerator, policy Policy, timeout time.Duration, logger zerolog.Logger) *Grader {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Grader{
		generator: generator,
		heuristic: NewHeuristic(policy),
		timeout:   timeout,
		logger:    logger.With().Str("component", "grader").Logger(),
		tracer:    otel.Tracer("github.com/evalio/evalio-go-api/internal/grading"),
	}
}

// Reinitialize swaps the generative service handle. Passing nil drops back to
// fallback-only mode.
func (g *Grader) Reinitialize(generator ai.TextGenerator) {
	g.mu.Lock()
	g.generator = generator
	g.mu.Unlock()
}

// Available reports whether a generative service handle is configured.
func (g *Grader) Available() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generator != nil
}

// Provider returns the name of the configured generator, or empty when
// running in fallback mode.
func (g *Grader) Provider() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.generator == nil {
		return ""
	}
	return g.generator.Name()
}

// GradeQuizText scores a free-text answer against the quiz content.
func (g *Grader) GradeQuizText(ctx context.Context, quizContent, studentAnswer string, maxPoints int) (int, string) {
	if maxPoints <= 0 {
		maxPoints = 100
	}

	ctx, span := g.tracer.Start(ctx, "grading.quiz_text", trace.WithAttributes(
		attribute.Int("grading.max_points", maxPoints),
	))
	defer span.End()
	defer prometheus.NewTimer(observability.GradingLatency().WithLabelValues("quiz_text")).ObserveDuration()

	raw, err := g.generate(ctx, buildQuizTextPrompt(quizContent, studentAnswer, maxPoints))
	if err != nil {
		g.logFallback(err, "quiz_text")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return g.heuristic.ScoreQuizText(studentAnswer, maxPoints)
	}

	score, feedback, err := ParseScoreFeedback(raw)
	if err != nil {
		g.logFallback(err, "quiz_text")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return g.heuristic.ScoreQuizText(studentAnswer, maxPoints)
	}

	observability.GradingOutcomes().WithLabelValues("quiz_text", "model").Inc()
	return clampScore(score, maxPoints), feedback
}

// GradeMultipleChoice scores multiple-choice answers. The numeric score is
// always the deterministic match result; the AI path only enriches feedback.
func (g *Grader) GradeMultipleChoice(ctx context.Context, correctAnswers, studentAnswers []string) (int, string) {
	ctx, span := g.tracer.Start(ctx, "grading.multiple_choice", trace.WithAttributes(
		attribute.Int("grading.questions", len(correctAnswers)),
	))
	defer span.End()
	defer prometheus.NewTimer(observability.GradingLatency().WithLabelValues("multiple_choice")).ObserveDuration()

	outcome := MatchChoices(correctAnswers, studentAnswers)
	if outcome.LengthMismatch || outcome.Total == 0 {
		observability.GradingOutcomes().WithLabelValues("multiple_choice", "deterministic").Inc()
		return outcome.Score, ChoiceFeedback(outcome)
	}

	raw, err := g.generate(ctx, buildChoiceFeedbackPrompt(outcome))
	if err != nil {
		g.logFallback(err, "multiple_choice")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return outcome.Score, ChoiceFeedback(outcome)
	}

	_, feedback, err := ParseScoreFeedback(raw)
	if err != nil {
		g.logFallback(err, "multiple_choice")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return outcome.Score, ChoiceFeedback(outcome)
	}

	observability.GradingOutcomes().WithLabelValues("multiple_choice", "model").Inc()
	return outcome.Score, feedback
}

// GradeCode scores a source-text submission. The code is never executed.
func (g *Grader) GradeCode(ctx context.Context, problemDescription string, testCases []models.TestCase, source, language string) (int, string) {
	ctx, span := g.tracer.Start(ctx, "grading.code", trace.WithAttributes(
		attribute.String("grading.language", language),
	))
	defer span.End()
	defer prometheus.NewTimer(observability.GradingLatency().WithLabelValues("code")).ObserveDuration()

	raw, err := g.generate(ctx, buildCodePrompt(problemDescription, testCases, source, language))
	if err != nil {
		g.logFallback(err, "code")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return g.heuristic.ScoreCode(source, language)
	}

	score, feedback, err := ParseScoreFeedback(raw)
	if err != nil {
		g.logFallback(err, "code")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return g.heuristic.ScoreCode(source, language)
	}

	observability.GradingOutcomes().WithLabelValues("code", "model").Inc()
	return clampScore(score, 100), feedback
}

// generate performs the single service call with the caller-enforced timeout.
// No retries happen at this layer.
func (g *Grader) generate(ctx context.Context, prompt string) (string, error) {
	g.mu.RLock()
	generator := g.generator
	g.mu.RUnlock()

	if generator == nil {
		return "", ErrServiceUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	return generator.Generate(ctx, prompt)
}

func (g *Grader) logFallback(err error, strategy string) {
	observability.GradingOutcomes().WithLabelValues(strategy, "fallback").Inc()
	g.logger.Warn().Err(err).Str("strategy", strategy).Msg("using fallback scorer")
}

func clampScore(score, maxPoints int) int {
	if score < 0 {
		return 0
	}
	if score > maxPoints {
		return maxPoints
	}
	return score
}
