package dto

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/evalio/evalio-go-api/internal/models"
)

// EvaluatorCreateRequest describes the payload for creating a new evaluator.
type EvaluatorCreateRequest struct {
	Title          string          `json:"title" validate:"required,min=3,max=100"`
	Description    string          `json:"description" validate:"required,min=10,max=5000"`
	Kind           string          `json:"kind" validate:"required,oneof=quiz assignment"`
	SubmissionKind string          `json:"submission_kind" validate:"required,oneof=text image video code"`
	AutoEval       bool            `json:"auto_eval"`
	QuizKind       string          `json:"quiz_kind" validate:"omitempty,oneof=multiple_choice open_ended code_evaluation essay coding"`
	QuizData       json.RawMessage `json:"quiz_data"`
	Deadline       *time.Time      `json:"deadline"`
	MaxAttempts    int             `json:"max_attempts" validate:"omitempty,min=1,max=10"`
}

// EvaluatorUpdateRequest describes the payload for updating an evaluator.
// The quiz kind may only change while the evaluator has no submissions.
type EvaluatorUpdateRequest struct {
	QuizKind    *string         `json:"quiz_kind"`
	Title       *string         `json:"title" validate:"omitempty,min=3,max=100"`
	Description *string         `json:"description" validate:"omitempty,min=10,max=5000"`
	AutoEval    *bool           `json:"auto_eval"`
	QuizData    json.RawMessage `json:"quiz_data"`
	Deadline    *time.Time      `json:"deadline"`
	MaxAttempts *int            `json:"max_attempts" validate:"omitempty,min=1,max=10"`
}

// EvaluatorListQuery carries listing filters from query parameters.
type EvaluatorListQuery struct {
	Skip     int    `query:"skip" validate:"omitempty,min=0"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Search   string `query:"search" validate:"omitempty,max=200"`
	Kind     string `query:"type" validate:"omitempty,oneof=quiz assignment"`
	QuizKind string `query:"quiz_type"`
}

// ListMeta describes pagination state for list responses.
type ListMeta struct {
	Total   int64 `json:"total"`
	Skip    int   `json:"skip"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"has_more"`
}

// EvaluatorResponse is the serialized representation returned to API clients.
type EvaluatorResponse struct {
	ID              uint            `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Kind            string          `json:"kind"`
	SubmissionKind  string          `json:"submission_kind"`
	TeacherUsername string          `json:"teacher_username"`
	AutoEval        bool            `json:"auto_eval"`
	QuizKind        string          `json:"quiz_kind,omitempty"`
	QuizData        json.RawMessage `json:"quiz_data,omitempty"`
	Deadline        *time.Time      `json:"deadline,omitempty"`
	MaxAttempts     int             `json:"max_attempts"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AutoGradedEvaluatorResponse extends the evaluator view with submission
// counts for teacher dashboards.
type AutoGradedEvaluatorResponse struct {
	EvaluatorResponse
	SubmissionCount int64 `json:"submission_count"`
	GradedCount     int64 `json:"graded_count"`
}

// NewEvaluatorResponse converts a model into a DTO.
func NewEvaluatorResponse(model models.Evaluator) EvaluatorResponse {
	return EvaluatorResponse{
		ID:              model.ID,
		Title:           model.Title,
		Description:     model.Description,
		Kind:            model.Kind,
		SubmissionKind:  model.SubmissionKind,
		TeacherUsername: model.TeacherUsername,
		AutoEval:        model.AutoEval,
		QuizKind:        model.QuizKind,
		QuizData:        json.RawMessage(model.QuizData),
		Deadline:        model.Deadline,
		MaxAttempts:     model.MaxAttempts,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewEvaluatorResponses converts a slice of models.
func NewEvaluatorResponses(models []models.Evaluator) []EvaluatorResponse {
	out := make([]EvaluatorResponse, 0, len(models))
	for _, model := range models {
		out = append(out, NewEvaluatorResponse(model))
	}
	return out
}

// QuizDataColumn converts a raw payload into the storage column type.
func QuizDataColumn(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	return datatypes.JSON(raw)
}
