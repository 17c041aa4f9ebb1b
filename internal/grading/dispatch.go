package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evalio/evalio-go-api/internal/models"
)

// Dispatcher routes a submission to the grading strategy declared by its
// evaluator's quiz kind and normalizes heterogeneous payload shapes before
// scoring. It never produces partial results: callers receive either a
// (score, feedback) pair or a typed failure.
type Dispatcher struct {
	grader *Grader
}

// NewDispatcher constructs a dispatcher over the given grader.
func NewDispatcher(grader *Grader) *Dispatcher {
	return &Dispatcher{grader: grader}
}

// Grade selects the strategy for the evaluator's quiz kind and scores the
// submission. Unknown or unset quiz kinds take the open-ended path, treating
// the evaluator description as the quiz content.
func (d *Dispatcher) Grade(ctx context.Context, evaluator models.Evaluator, submission models.Submission) (int, string, error) {
	switch evaluator.QuizKind {
	case models.QuizKindMultipleChoice:
		data, err := evaluator.DecodeMultipleChoice()
		if err != nil {
			return 0, "", err
		}
		answers, err := NormalizeChoiceAnswers(submission.Content)
		if err != nil {
			return 0, "", err
		}
		score, feedback := d.grader.GradeMultipleChoice(ctx, data.CorrectAnswers, answers)
		return score, feedback, nil

	case models.QuizKindCodeEvaluation:
		data, err := evaluator.DecodeCodeEvaluation()
		if err != nil {
			return 0, "", err
		}
		score, feedback := d.grader.GradeCode(ctx, evaluator.Description, data.TestCases, submission.Content, data.Language)
		return score, feedback, nil

	default:
		score, feedback := d.grader.GradeQuizText(ctx, evaluator.Description, submission.Content, 100)
		return score, feedback, nil
	}
}

// NormalizeChoiceAnswers maps both accepted wire shapes for multiple-choice
// submissions (a JSON array of strings, or an object wrapping the array under
// an "answers" key) into one canonical ordered answer list. Any other shape
// fails with ErrInvalidFormat.
func NormalizeChoiceAnswers(content string) ([]string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty multiple choice submission", ErrInvalidFormat)
	}

	var direct []string
	if err := json.Unmarshal([]byte(trimmed), &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON answer array or an object with an answers key", ErrInvalidFormat)
	}

	raw, ok := wrapped["answers"]
	if !ok {
		return nil, fmt.Errorf("%w: object is missing the answers key", ErrInvalidFormat)
	}

	var answers []string
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("%w: answers must be an array of strings", ErrInvalidFormat)
	}

	return answers, nil
}
