package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Evaluator kinds.
const (
	EvaluatorKindQuiz       = "quiz"
	EvaluatorKindAssignment = "assignment"
)

// Submission payload kinds an evaluator accepts.
const (
	SubmissionKindText  = "text"
	SubmissionKindImage = "image"
	SubmissionKindVideo = "video"
	SubmissionKindCode  = "code"
)

// Quiz kinds selecting the grading strategy.
const (
	QuizKindMultipleChoice = "multiple_choice"
	QuizKindOpenEnded      = "open_ended"
	QuizKindCodeEvaluation = "code_evaluation"
	QuizKindEssay          = "essay"
	QuizKindCoding         = "coding"
)

// Evaluator is a gradeable quiz or assignment definition owned by a teacher.
type Evaluator struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:100;not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	Kind            string         `gorm:"size:16;not null;index" json:"kind"`
	SubmissionKind  string         `gorm:"size:16;not null" json:"submission_kind"`
	TeacherUsername string         `gorm:"size:255;not null;index" json:"teacher_username"`
	AutoEval        bool           `gorm:"not null;default:false" json:"auto_eval"`
	QuizKind        string         `gorm:"size:32;index" json:"quiz_kind"`
	QuizData        datatypes.JSON `json:"quiz_data"`
	Deadline        *time.Time     `json:"deadline"`
	MaxAttempts     int            `gorm:"not null;default:1" json:"max_attempts"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	Submissions     []Submission   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// MultipleChoiceData is the quiz_data payload for multiple-choice quizzes.
// Questions are opaque to the engine; only their count and the correct
// answers participate in grading.
type MultipleChoiceData struct {
	Questions      []json.RawMessage `json:"questions"`
	CorrectAnswers []string          `json:"correct_answers"`
}

// CodeEvaluationData is the quiz_data payload for code-evaluation quizzes.
type CodeEvaluationData struct {
	TestCases []TestCase `json:"test_cases"`
	Language  string     `json:"language"`
}

// TestCase describes one expected behaviour of a code submission. Test cases
// are never executed; they are surfaced to the grading model as context.
type TestCase struct {
	Input       string `json:"input,omitempty"`
	Expected    string `json:"expected,omitempty"`
	Description string `json:"description,omitempty"`
}

// IsPastDeadline reports whether the deadline has passed at the reference time.
func (e Evaluator) IsPastDeadline(reference time.Time) bool {
	return e.Deadline != nil && reference.After(*e.Deadline)
}

// AutoGradable reports whether submissions to this evaluator enter the
// automated grading path.
func (e Evaluator) AutoGradable() bool {
	return e.AutoEval && e.Kind == EvaluatorKindQuiz
}

// DecodeMultipleChoice unpacks quiz_data for a multiple-choice quiz.
func (e Evaluator) DecodeMultipleChoice() (MultipleChoiceData, error) {
	var data MultipleChoiceData
	if len(e.QuizData) == 0 {
		return data, fmt.Errorf("quiz data is empty")
	}
	if err := json.Unmarshal(e.QuizData, &data); err != nil {
		return MultipleChoiceData{}, fmt.Errorf("decode multiple choice quiz data: %w", err)
	}
	return data, nil
}

// DecodeCodeEvaluation unpacks quiz_data for a code-evaluation quiz. The
// language defaults to python when unset, matching the submission contract.
func (e Evaluator) DecodeCodeEvaluation() (CodeEvaluationData, error) {
	var data CodeEvaluationData
	if len(e.QuizData) > 0 {
		if err := json.Unmarshal(e.QuizData, &data); err != nil {
			return CodeEvaluationData{}, fmt.Errorf("decode code evaluation quiz data: %w", err)
		}
	}
	if data.Language == "" {
		data.Language = "python"
	}
	return data, nil
}
