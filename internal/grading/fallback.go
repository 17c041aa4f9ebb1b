package grading

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Policy carries the tunable ceilings applied by the fallback scorers. The
// ceilings are deliberately conservative: heuristic scores must signal their
// low fidelity to the grader rather than compete with AI evaluation.
type Policy struct {
	// QuizCeiling caps fallback quiz-text scores as a fraction of max points.
	QuizCeiling float64
	// CodeCeiling caps fallback code scores in absolute points.
	CodeCeiling int
}

// DefaultPolicy returns the standard conservative ceilings.
func DefaultPolicy() Policy {
	return Policy{QuizCeiling: 0.70, CodeCeiling: 60}
}

var hedgingPhrases = []string{"i don't know", "no idea", "idk", "not sure", "maybe", "i think"}

var analyticalKeywords = []string{"example", "because", "therefore", "analysis", "however", "furthermore", "specifically", "evidence"}

// Heuristic scores submissions without any network access. Every method is a
// pure function of its inputs and always terminates with a bounded score.
type Heuristic struct {
	policy Policy
}

// NewHeuristic builds a heuristic scorer with the given policy. Zero-valued
// ceilings fall back to the defaults.
func NewHeuristic(policy Policy) *Heuristic {
	defaults := DefaultPolicy()
	if policy.QuizCeiling <= 0 || policy.QuizCeiling > 1 {
		policy.QuizCeiling = defaults.QuizCeiling
	}
	if policy.CodeCeiling <= 0 || policy.CodeCeiling > 100 {
		policy.CodeCeiling = defaults.CodeCeiling
	}
	return &Heuristic{policy: policy}
}

// ScoreQuizText grades a free-text answer by length tiers with penalties for
// hedging and repetition and small bonuses for analytical language.
func (h *Heuristic) ScoreQuizText(answer string, maxPoints int) (int, string) {
	if maxPoints <= 0 {
		maxPoints = 100
	}

	trimmed := strings.TrimSpace(answer)
	length := utf8.RuneCountInString(trimmed)
	words := strings.Fields(answer)
	wordCount := len(words)
	lower := strings.ToLower(answer)

	var score float64
	var parts []string

	switch {
	case length < 5:
		score = 0
		parts = append(parts, "No meaningful response provided.")
	case length < 20:
		score = float64(maxPoints) * 0.10
		parts = append(parts, "Response is too brief and lacks detail.")
	case length < 50:
		score = float64(maxPoints) * 0.25
		parts = append(parts, "Response needs much more detail and explanation.")
	case length < 150:
		score = float64(maxPoints) * 0.40
		parts = append(parts, "Basic response, but needs significant improvement.")
	case length < 300:
		score = float64(maxPoints) * 0.55
		parts = append(parts, "Decent response, but could demonstrate deeper understanding.")
	default:
		score = float64(maxPoints) * 0.65
		parts = append(parts, "Good length, but content quality cannot be verified without AI analysis.")
	}

	for _, phrase := range hedgingPhrases {
		if strings.Contains(lower, phrase) {
			score = math.Max(0, score*0.2)
			parts = append(parts, "Response shows uncertainty or lack of knowledge.")
			break
		}
	}

	if wordCount > 0 {
		distinct := make(map[string]struct{}, wordCount)
		for _, word := range strings.Fields(lower) {
			distinct[word] = struct{}{}
		}
		if float64(len(distinct)) < float64(wordCount)*0.6 {
			score *= 0.7
			parts = append(parts, "Response appears repetitive or lacks varied vocabulary.")
		}
	}

	ceiling := float64(maxPoints) * h.policy.QuizCeiling
	keywordCount := 0
	for _, keyword := range analyticalKeywords {
		if strings.Contains(lower, keyword) {
			keywordCount++
		}
	}
	if keywordCount > 0 {
		score = math.Min(score*(1+float64(keywordCount)*0.05), ceiling)
		parts = append(parts, fmt.Sprintf("Good use of analytical language (%d indicators found).", keywordCount))
	}

	score = math.Min(score, ceiling)

	parts = append(parts,
		fmt.Sprintf("Response analysis: %d words, %d characters.", wordCount, length),
		"IMPORTANT: This is basic length-based scoring only.",
		"Enable AI evaluation for accurate content-based grading.",
	)

	return int(score), strings.Join(parts, " ")
}

// ScoreCode grades source text by structural signals only. Submitted code is
// never executed.
func (h *Heuristic) ScoreCode(source, language string) (int, string) {
	trimmed := strings.TrimSpace(source)
	length := utf8.RuneCountInString(trimmed)
	lineCount := len(strings.Split(source, "\n"))
	lower := strings.ToLower(source)

	if length < 10 {
		return 0, "Code is too short to be meaningful."
	}

	var score int
	var parts []string

	switch {
	case length < 20:
		score = 10
		parts = append(parts, "Code seems too short to be a complete solution.")
	case length < 50:
		score = 20
		parts = append(parts, "Code is very brief - may be incomplete.")
	default:
		score = 25
		parts = append(parts, "Code has reasonable length.")
	}

	if containsAny(lower, "def ", "function", "class") {
		score += 8
		parts = append(parts, "Uses functions/classes.")
	}

	if strings.Contains(source, "//") || strings.Contains(source, "#") || strings.Contains(source, "/*") {
		score += 5
		parts = append(parts, "Includes comments.")
	}

	if containsAny(lower, "try", "catch", "except", "error") {
		score += 8
		parts = append(parts, "Includes error handling.")
	}

	if containsAny(lower, "if", "else", "for", "while", "loop") {
		score += 5
		parts = append(parts, "Uses control structures.")
	}

	if containsAny(lower, "return", "print", "console.log", "cout") {
		score += 5
		parts = append(parts, "Produces output or returns values.")
	}

	switch strings.ToLower(language) {
	case "python":
		if strings.Contains(source, "import") {
			score += 3
			parts = append(parts, "Uses imports.")
		}
	case "javascript":
		if strings.Contains(source, "const") || strings.Contains(source, "let") {
			score += 3
			parts = append(parts, "Uses modern JavaScript syntax.")
		}
	}

	if len(strings.Split(trimmed, "\n")) < 3 {
		score = int(float64(score) * 0.7)
		parts = append(parts, "Solution appears overly simplistic.")
	}

	if score > h.policy.CodeCeiling {
		score = h.policy.CodeCeiling
	}
	if score < 0 {
		score = 0
	}

	parts = append(parts,
		fmt.Sprintf("Code metrics: %d lines, %d characters.", lineCount, length),
		fmt.Sprintf("Language: %s.", language),
		"IMPORTANT: This is basic structural analysis only.",
		"Enable AI evaluation for proper code logic and correctness review.",
	)

	return score, strings.Join(parts, " ")
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// QuestionResult records the outcome of one multiple-choice question.
type QuestionResult struct {
	Question      int    `json:"question"`
	Correct       bool   `json:"correct"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

// ChoiceOutcome is the deterministic result of matching multiple-choice
// answers. The score is always computed here; AI evaluation is only ever
// consulted to enrich the narrative feedback around it.
type ChoiceOutcome struct {
	Score          int
	Total          int
	Received       int
	CorrectCount   int
	Results        []QuestionResult
	LengthMismatch bool
}

// MatchChoices compares student answers against the key with case-insensitive,
// whitespace-trimmed equality. A length mismatch yields score zero rather than
// an error: it signals a client-side submission bug, not a system fault.
// Percentages round half up, so 2/3 correct scores 67.
func MatchChoices(correctAnswers, studentAnswers []string) ChoiceOutcome {
	outcome := ChoiceOutcome{Total: len(correctAnswers), Received: len(studentAnswers)}

	if len(correctAnswers) != len(studentAnswers) {
		outcome.LengthMismatch = true
		return outcome
	}
	if outcome.Total == 0 {
		return outcome
	}

	outcome.Results = make([]QuestionResult, 0, outcome.Total)
	for i := range correctAnswers {
		correct := strings.EqualFold(strings.TrimSpace(correctAnswers[i]), strings.TrimSpace(studentAnswers[i]))
		if correct {
			outcome.CorrectCount++
		}
		outcome.Results = append(outcome.Results, QuestionResult{
			Question:      i + 1,
			Correct:       correct,
			StudentAnswer: studentAnswers[i],
			CorrectAnswer: correctAnswers[i],
		})
	}

	percentage := float64(outcome.CorrectCount) / float64(outcome.Total) * 100
	score := int(math.Round(percentage))
	if score > 100 {
		score = 100
	}
	outcome.Score = score

	return outcome
}

// ChoiceFeedback renders the deterministic feedback for a multiple-choice
// outcome, listing each missed question with both answers.
func ChoiceFeedback(outcome ChoiceOutcome) string {
	if outcome.LengthMismatch {
		return fmt.Sprintf("Number of answers doesn't match number of questions. Expected %d, got %d.", outcome.Total, outcome.Received)
	}
	if outcome.Total == 0 {
		return "No questions to evaluate."
	}

	percentage := float64(outcome.CorrectCount) / float64(outcome.Total) * 100

	var parts []string
	parts = append(parts, "Quiz Results Summary",
		fmt.Sprintf("Score: %d/%d correct answers (%.1f%%)", outcome.CorrectCount, outcome.Total, percentage))

	switch {
	case percentage >= 90:
		parts = append(parts, "Excellent work! Outstanding performance on this quiz.")
	case percentage >= 80:
		parts = append(parts, "Great job! Very strong understanding of the material.")
	case percentage >= 70:
		parts = append(parts, "Good work! Solid understanding with room for improvement.")
	case percentage >= 60:
		parts = append(parts, "Decent effort. Review the material for better understanding.")
	default:
		parts = append(parts, "Needs improvement. Consider reviewing the material thoroughly.")
	}

	if outcome.CorrectCount < outcome.Total {
		parts = append(parts, "Question Analysis:")
		for _, result := range outcome.Results {
			if result.Correct {
				continue
			}
			parts = append(parts, fmt.Sprintf("Question %d: you answered %q, correct answer was %q.",
				result.Question, result.StudentAnswer, result.CorrectAnswer))
		}
		parts = append(parts, "Study tip: review the questions you missed and related concepts.")
	}

	parts = append(parts, "Note: this is automated evaluation. Review with your instructor for detailed explanations.")

	return strings.Join(parts, "\n")
}
