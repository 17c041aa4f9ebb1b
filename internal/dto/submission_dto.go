package dto

import (
	"time"

	"github.com/evalio/evalio-go-api/internal/models"
)

// SubmissionCreateRequest describes a student submission payload. Content is
// free text whose interpretation depends on the evaluator's quiz kind. It must
// not be blank and is capped at 10000 characters.
type SubmissionCreateRequest struct {
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// GradeRequest describes a manual grading payload from a teacher.
type GradeRequest struct {
	Grade    int    `json:"grade" validate:"min=0,max=100"`
	Feedback string `json:"feedback" validate:"omitempty,max=5000"`
}

// SubmissionResponse is the serialized representation returned to API clients.
type SubmissionResponse struct {
	ID               uint      `json:"id"`
	EvaluatorID      uint      `json:"evaluator_id"`
	StudentUsername  string    `json:"student_username"`
	Content          string    `json:"content"`
	Status           string    `json:"status"`
	ProvisionalGrade *int      `json:"provisional_grade,omitempty"`
	FinalGrade       *int      `json:"final_grade,omitempty"`
	Feedback         string    `json:"feedback,omitempty"`
	SubmissionDate   time.Time `json:"submission_date"`
}

// SubmissionStatusResponse is the lightweight view served by the cached
// status endpoint.
type SubmissionStatusResponse struct {
	ID               uint   `json:"id"`
	EvaluatorID      uint   `json:"evaluator_id"`
	Status           string `json:"status"`
	ProvisionalGrade *int   `json:"provisional_grade,omitempty"`
	FinalGrade       *int   `json:"final_grade,omitempty"`
	Feedback         string `json:"feedback,omitempty"`
	AttemptsUsed     int64  `json:"attempts_used"`
	AttemptsAllowed  int    `json:"attempts_allowed"`
}

// EvaluatorStatusResponse reports a student's latest submission state for one
// evaluator. Status is "not_submitted" when no submission exists; Grade is
// the grade currently in effect (final once graded, provisional before).
type EvaluatorStatusResponse struct {
	Status           string     `json:"status"`
	SubmissionDate   *time.Time `json:"submission_date,omitempty"`
	ProvisionalGrade *int       `json:"provisional_grade,omitempty"`
	FinalGrade       *int       `json:"final_grade,omitempty"`
	Feedback         string     `json:"feedback,omitempty"`
	Grade            *int       `json:"grade,omitempty"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:               model.ID,
		EvaluatorID:      model.EvaluatorID,
		StudentUsername:  model.StudentUsername,
		Content:          model.Content,
		Status:           model.Status,
		ProvisionalGrade: model.ProvisionalGrade,
		FinalGrade:       model.FinalGrade,
		Feedback:         model.Feedback,
		SubmissionDate:   model.SubmissionDate,
	}
}

// NewSubmissionResponses converts a slice of models.
func NewSubmissionResponses(models []models.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(models))
	for _, model := range models {
		out = append(out, NewSubmissionResponse(model))
	}
	return out
}
