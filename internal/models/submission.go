package models

import "time"

// Submission statuses forming the lifecycle state machine.
const (
	// SubmissionStatusSubmitted is the initial state of every submission.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusAutoGraded indicates the automated path produced a provisional grade.
	SubmissionStatusAutoGraded = "auto_graded"
	// SubmissionStatusPendingAutoGrade indicates automated grading raised an error and a teacher must review.
	SubmissionStatusPendingAutoGrade = "submitted_pending_auto_grade"
	// SubmissionStatusGraded indicates a human grader finalized the grade. Terminal.
	SubmissionStatusGraded = "graded"
	// SubmissionStatusAutoEvalFailed indicates an explicit re-trigger failed unexpectedly.
	SubmissionStatusAutoEvalFailed = "auto_eval_failed"
)

// Submission is one student's attempt against an Evaluator.
type Submission struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	EvaluatorID      uint      `gorm:"not null;index" json:"evaluator_id"`
	StudentUsername  string    `gorm:"size:255;not null;index" json:"student_username"`
	Content          string    `gorm:"type:text;not null" json:"content"`
	Status           string    `gorm:"size:32;not null" json:"status"`
	ProvisionalGrade *int      `json:"provisional_grade"`
	FinalGrade       *int      `json:"final_grade"`
	Feedback         string    `gorm:"type:text" json:"feedback"`
	SubmissionDate   time.Time `gorm:"autoCreateTime" json:"submission_date"`
	UpdatedAt        time.Time `json:"updated_at"`
	Evaluator        Evaluator `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsGraded reports whether a human grader finalized this submission.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}

// HasProvisionalGrade reports whether the automated path already scored this
// submission. Re-triggering evaluation must short-circuit when true.
func (s Submission) HasProvisionalGrade() bool {
	return s.ProvisionalGrade != nil
}

// CurrentGrade returns the grade a student should see: the final grade once
// graded, otherwise the provisional grade when present.
func (s Submission) CurrentGrade() *int {
	if s.IsGraded() {
		return s.FinalGrade
	}
	return s.ProvisionalGrade
}
