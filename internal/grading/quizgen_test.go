package grading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func quizRequest() QuizRequest {
	return QuizRequest{
		Language:           "python",
		Difficulty:         "intermediate",
		QuestionCount:      4,
		IncludeMCQ:         true,
		IncludeTheoretical: true,
	}
}

func TestFallbackQuizBuildsBothCategories(t *testing.T) {
	quiz := FallbackQuiz(quizRequest())

	require.Len(t, quiz.Questions, 4)
	require.Equal(t, "Python Programming Quiz - Intermediate", quiz.Title)
	require.Equal(t, 30, quiz.TotalPoints)
	require.Equal(t, 20, quiz.EstimatedDuration)

	require.Equal(t, "mcq", quiz.Questions[0].Type)
	require.NotEmpty(t, quiz.Questions[0].Options)
	require.Equal(t, 5, quiz.Questions[0].Points)

	require.Equal(t, "theoretical", quiz.Questions[2].Type)
	require.NotEmpty(t, quiz.Questions[2].SampleAnswer)
	require.Equal(t, 10, quiz.Questions[2].Points)

	for i, question := range quiz.Questions {
		require.Equal(t, i+1, question.ID)
	}
}

func TestFallbackQuizUnknownLanguageUsesPython(t *testing.T) {
	req := quizRequest()
	req.Language = "cobol"

	quiz := FallbackQuiz(req)
	require.Len(t, quiz.Questions, 4)
	require.Contains(t, quiz.Questions[0].Question, "Python")
}

func TestFallbackQuizMCQOnly(t *testing.T) {
	req := quizRequest()
	req.IncludeTheoretical = false

	quiz := FallbackQuiz(req)
	require.Len(t, quiz.Questions, 2)
	for _, question := range quiz.Questions {
		require.Equal(t, "mcq", question.Type)
	}
	require.Equal(t, 10, quiz.TotalPoints)
}

func TestGenerateQuizParsesModelJSON(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"title": "Go Basics",
		"description": "Fundamentals of Go",
		"language": "go",
		"difficulty": "beginner",
		"questions": [
			{"id": 1, "type": "mcq", "question": "What declares a variable?", "options": ["var", "dim"], "correct_answer": "var", "points": 5}
		],
		"estimated_duration": 15,
		"total_points": 5
	}` + "\n```"}
	g := NewGrader(gen, DefaultPolicy(), time.Second, zerolog.Nop())

	quiz := g.GenerateQuiz(context.Background(), quizRequest())
	require.Equal(t, "Go Basics", quiz.Title)
	require.Len(t, quiz.Questions, 1)
	require.Equal(t, "var", quiz.Questions[0].CorrectAnswer)
}

func TestGenerateQuizFallsBackOnServiceError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("unavailable")}
	g := NewGrader(gen, DefaultPolicy(), time.Second, zerolog.Nop())

	quiz := g.GenerateQuiz(context.Background(), quizRequest())
	require.Len(t, quiz.Questions, 4)
	require.Equal(t, "python", quiz.Language)
}

func TestGenerateQuizFallsBackOnUnparsableResponse(t *testing.T) {
	gen := &stubGenerator{response: "Sorry, I cannot produce a quiz right now."}
	g := NewGrader(gen, DefaultPolicy(), time.Second, zerolog.Nop())

	quiz := g.GenerateQuiz(context.Background(), quizRequest())
	require.NotEmpty(t, quiz.Questions)
	require.Equal(t, "Python Programming Quiz - Intermediate", quiz.Title)
}

func TestParseGeneratedQuizRejectsEmptyQuestions(t *testing.T) {
	_, err := parseGeneratedQuiz(`{"title": "x", "questions": []}`)
	require.ErrorIs(t, err, ErrMalformedResponse)
}
