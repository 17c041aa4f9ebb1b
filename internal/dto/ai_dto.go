package dto

import "encoding/json"

// QuizEvaluationRequest grades a free-text answer directly, without a stored
// submission.
type QuizEvaluationRequest struct {
	QuizContent   string `json:"quiz_content" validate:"required,min=1"`
	StudentAnswer string `json:"student_answer" validate:"required,min=1"`
	MaxPoints     int    `json:"max_points" validate:"omitempty,min=1,max=1000"`
}

// CodeEvaluationRequest grades source text directly.
type CodeEvaluationRequest struct {
	ProblemDescription string          `json:"problem_description" validate:"required,min=1"`
	TestCases          json.RawMessage `json:"test_cases"`
	StudentCode        string          `json:"student_code" validate:"required,min=1"`
	Language           string          `json:"language"`
}

// MultipleChoiceEvaluationRequest grades an answer list against a key.
type MultipleChoiceEvaluationRequest struct {
	QuizQuestions  json.RawMessage `json:"quiz_questions"`
	CorrectAnswers []string        `json:"correct_answers" validate:"required,min=1"`
	StudentAnswers []string        `json:"student_answers" validate:"required"`
}

// EvaluationResponse carries a grading result back to the caller.
type EvaluationResponse struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// AIStatusResponse reports the state of the text generation service.
type AIStatusResponse struct {
	Available bool   `json:"available"`
	Provider  string `json:"provider,omitempty"`
	Model     string `json:"model,omitempty"`
}

// QuizGenerationRequest asks for an AI-generated quiz.
type QuizGenerationRequest struct {
	Language           string `json:"language" validate:"required,min=1"`
	Difficulty         string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	QuestionCount      int    `json:"question_count" validate:"omitempty,min=1,max=50"`
	IncludeMCQ         *bool  `json:"include_mcq"`
	IncludeTheoretical *bool  `json:"include_theoretical"`
	Topic              string `json:"topic" validate:"omitempty,max=200"`
}
