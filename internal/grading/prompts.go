package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evalio/evalio-go-api/internal/models"
)

// The prompts pin the model to a strict, conservative rubric so repeated runs
// on similar inputs land in similar bands instead of drifting generous.

func buildQuizTextPrompt(quizContent, studentAnswer string, maxPoints int) string {
	builder := strings.Builder{}
	builder.WriteString("You are an EXTREMELY STRICT educational evaluator. Be harsh and conservative in your scoring.\n")
	builder.WriteString("Evaluate the student's answer against the quiz content with the highest academic standards.\n\n")
	builder.WriteString("## Quiz Content\n")
	builder.WriteString(quizContent)
	builder.WriteString("\n\n## Student's Answer\n")
	builder.WriteString(studentAnswer)
	builder.WriteString("\n\n## Strict Evaluation Criteria (be very conservative)\n")
	builder.WriteString("- Award 90-100 points ONLY for exceptional, comprehensive, perfectly accurate answers\n")
	builder.WriteString("- Award 80-89 points for very good answers with minor imperfections\n")
	builder.WriteString("- Award 70-79 points for good answers that meet requirements but lack depth\n")
	builder.WriteString("- Award 60-69 points for adequate answers missing key concepts\n")
	builder.WriteString("- Award 40-59 points for poor answers with significant gaps or errors\n")
	builder.WriteString("- Award 20-39 points for answers showing minimal effort or severe misunderstandings\n")
	builder.WriteString("- Award 0-19 points for largely incorrect, irrelevant, or no meaningful response\n\n")
	builder.WriteString("IMPORTANT: Be significantly more strict than a typical teacher. Most answers should score between 30-70%.\n")
	builder.WriteString("Only truly exceptional answers deserve scores above 80%.\n\n")
	fmt.Fprintf(&builder, "Provide a score out of %d points and detailed feedback explaining the score.\n\n", maxPoints)
	builder.WriteString("Format your response exactly as follows:\n")
	builder.WriteString("Score: [number]\n")
	builder.WriteString("Feedback: [your detailed feedback]\n")
	return builder.String()
}

func buildCodePrompt(problemDescription string, testCases []models.TestCase, source, language string) string {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, "As an EXTREMELY STRICT coding evaluator, evaluate this %s code submission with high academic standards.\n\n", language)
	builder.WriteString("## Problem Description\n")
	builder.WriteString(problemDescription)
	builder.WriteString("\n\n## Student's Code\n")
	fmt.Fprintf(&builder, "```%s\n%s\n```\n\n", language, source)
	if len(testCases) > 0 {
		builder.WriteString("## Test Cases\n")
		if encoded, err := json.MarshalIndent(testCases, "", "  "); err == nil {
			builder.Write(encoded)
		}
		builder.WriteString("\n\n")
	}
	builder.WriteString("## Strict Evaluation Criteria (be very conservative)\n")
	builder.WriteString("1. Correctness (50% weight): does it solve the problem? Are there bugs or logic errors?\n")
	builder.WriteString("2. Code quality (25% weight): style, efficiency, readability, structure\n")
	builder.WriteString("3. Test case coverage (15% weight): does it handle all provided test cases?\n")
	builder.WriteString("4. Error handling (10% weight): robustness and edge cases\n\n")
	builder.WriteString("## Scoring Guidelines (be harsh)\n")
	builder.WriteString("- 90-100: perfect solution, exceptional code quality, handles all edge cases\n")
	builder.WriteString("- 80-89: correct solution with very good coding practices\n")
	builder.WriteString("- 70-79: mostly correct with minor issues or inefficiencies\n")
	builder.WriteString("- 60-69: basic working solution with notable problems\n")
	builder.WriteString("- 40-59: partial solution, may not work for many cases\n")
	builder.WriteString("- 20-39: severe issues, minimal functionality\n")
	builder.WriteString("- 0-19: non-functional or no meaningful attempt\n\n")
	builder.WriteString("IMPORTANT: Most student code should score between 30-70%. Only exceptional code deserves 80+.\n\n")
	builder.WriteString("Provide your response in the following format:\n")
	builder.WriteString("Score: [0-100]\n")
	builder.WriteString("Feedback: [detailed analysis and suggestions]\n")
	return builder.String()
}

func buildChoiceFeedbackPrompt(outcome ChoiceOutcome) string {
	builder := strings.Builder{}
	builder.WriteString("As an educational evaluator, provide detailed feedback for this multiple choice quiz.\n\n")
	builder.WriteString("## Results Summary\n")
	fmt.Fprintf(&builder, "- Total Questions: %d\n", outcome.Total)
	fmt.Fprintf(&builder, "- Correct Answers: %d\n", outcome.CorrectCount)
	fmt.Fprintf(&builder, "- Incorrect Answers: %d\n", outcome.Total-outcome.CorrectCount)
	fmt.Fprintf(&builder, "- Score: %d%%\n\n", outcome.Score)
	builder.WriteString("## Question-by-Question Results\n")
	if encoded, err := json.MarshalIndent(outcome.Results, "", "  "); err == nil {
		builder.Write(encoded)
	}
	builder.WriteString("\n\nProvide:\n")
	builder.WriteString("1. A clear summary of performance\n")
	builder.WriteString("2. Specific feedback on what was answered incorrectly\n")
	builder.WriteString("3. Educational tips for improvement\n")
	builder.WriteString("4. Encouragement appropriate to the score level\n\n")
	builder.WriteString("Keep the feedback constructive, specific, and encouraging.\n\n")
	builder.WriteString("Format your response exactly as follows:\n")
	fmt.Fprintf(&builder, "Score: %d\n", outcome.Score)
	builder.WriteString("Feedback: [your detailed feedback]\n")
	return builder.String()
}

func buildQuizGenerationPrompt(req QuizRequest) string {
	topic := req.Topic
	if topic == "" {
		topic = "General " + req.Language + " programming"
	}

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "Generate a comprehensive programming quiz for the %s language.\n\n", req.Language)
	builder.WriteString("## Requirements\n")
	fmt.Fprintf(&builder, "- Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&builder, "- Total questions: %d\n", req.QuestionCount)
	fmt.Fprintf(&builder, "- Include MCQs: %t\n", req.IncludeMCQ)
	fmt.Fprintf(&builder, "- Include theoretical questions: %t\n", req.IncludeTheoretical)
	fmt.Fprintf(&builder, "- Topic focus: %s\n\n", topic)
	builder.WriteString("Create a balanced mix of multiple choice questions (4 options each), theoretical questions,\n")
	builder.WriteString("code analysis questions, and best practices questions.\n\n")
	builder.WriteString("Format the response as JSON with this exact structure:\n")
	builder.WriteString(`{
  "title": "Quiz title",
  "description": "Brief description",
  "language": "` + req.Language + `",
  "difficulty": "` + req.Difficulty + `",
  "questions": [
    {"id": 1, "type": "mcq", "question": "...", "options": ["A", "B", "C", "D"], "correct_answer": "A", "explanation": "...", "points": 5},
    {"id": 2, "type": "theoretical", "question": "...", "sample_answer": "...", "points": 10}
  ],
  "estimated_duration": 30,
  "total_points": 100
}
`)
	builder.WriteString("\nMake sure questions are practical, relevant, and test real programming knowledge.\n")
	return builder.String()
}
