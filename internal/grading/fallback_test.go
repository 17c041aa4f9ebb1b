package grading

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const analyticalAnswer = "The algorithm demonstrates measurable improvements because every example " +
	"highlights tradeoffs therefore deeper analysis reveals standout patterns however certain " +
	"limitations persist furthermore benchmarks provide strong evidence specifically when datasets " +
	"grow larger and caching layers interact with concurrent writers under sustained production workloads"

func TestScoreQuizTextEmptyAnswer(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreQuizText("", 100)
	require.Equal(t, 0, score)
	require.Contains(t, feedback, "No meaningful response provided.")
}

func TestScoreQuizTextLengthTiers(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreQuizText("short", 100)
	require.Equal(t, 10, score)
	require.Contains(t, feedback, "too brief")
}

func TestScoreQuizTextCountsCharactersNotBytes(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	// Four characters, twelve bytes. Must land in the lowest tier.
	score, feedback := h.ScoreQuizText("日本語だ", 100)
	require.Equal(t, 0, score)
	require.Contains(t, feedback, "No meaningful response provided.")
	require.Contains(t, feedback, "4 characters")
}

func TestScoreQuizTextHedgingPenalty(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreQuizText("I am not sure about this topic but will try to explain anyway", 100)
	require.Equal(t, 8, score)
	require.Contains(t, feedback, "uncertainty")
}

func TestScoreQuizTextRepetitionPenalty(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreQuizText("spam spam spam spam spam spam", 100)
	require.Equal(t, 17, score)
	require.Contains(t, feedback, "repetitive")
}

func TestScoreQuizTextKeywordBonusCappedByCeiling(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreQuizText(analyticalAnswer, 100)
	require.Equal(t, 70, score)
	require.Contains(t, feedback, "analytical language")
	require.Contains(t, feedback, "Enable AI evaluation")
}

func TestScoreQuizTextCustomCeiling(t *testing.T) {
	h := NewHeuristic(Policy{QuizCeiling: 0.5, CodeCeiling: 60})

	score, _ := h.ScoreQuizText(analyticalAnswer, 100)
	require.Equal(t, 50, score)
}

func TestScoreQuizTextDeterministic(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	first, firstFeedback := h.ScoreQuizText(analyticalAnswer, 100)
	second, secondFeedback := h.ScoreQuizText(analyticalAnswer, 100)
	require.Equal(t, first, second)
	require.Equal(t, firstFeedback, secondFeedback)
}

func TestScoreCodeTooShort(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreCode("print", "python")
	require.Equal(t, 0, score)
	require.Equal(t, "Code is too short to be meaningful.", feedback)
}

func TestScoreCodeCountsCharactersNotBytes(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	// Six characters, twelve bytes. Stays below the minimum-length cutoff.
	score, feedback := h.ScoreCode("привет", "python")
	require.Equal(t, 0, score)
	require.Equal(t, "Code is too short to be meaningful.", feedback)
}

const pythonSample = `import math

def safe_sqrt(value):
    # guard negative input
    try:
        if value < 0:
            raise ValueError("negative")
        return math.sqrt(value)
    except ValueError:
        return 0.0
`

func TestScoreCodeStructuralSignals(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreCode(pythonSample, "python")
	require.Equal(t, 59, score)
	require.Contains(t, feedback, "Uses functions/classes.")
	require.Contains(t, feedback, "Includes comments.")
	require.Contains(t, feedback, "Includes error handling.")
	require.Contains(t, feedback, "Uses imports.")
	require.Contains(t, feedback, "Enable AI evaluation")
}

func TestScoreCodeCustomCeiling(t *testing.T) {
	h := NewHeuristic(Policy{QuizCeiling: 0.70, CodeCeiling: 30})

	score, _ := h.ScoreCode(pythonSample, "python")
	require.Equal(t, 30, score)
}

func TestScoreCodeOneLinerPenalty(t *testing.T) {
	h := NewHeuristic(DefaultPolicy())

	score, feedback := h.ScoreCode("const answer = values.filter(v => v > 0)", "javascript")
	require.Contains(t, feedback, "overly simplistic")
	require.Less(t, score, 30)
}

func TestNewHeuristicRejectsInvalidPolicy(t *testing.T) {
	h := NewHeuristic(Policy{QuizCeiling: 1.5, CodeCeiling: 400})
	require.Equal(t, DefaultPolicy(), h.policy)
}

func TestMatchChoicesPartialCredit(t *testing.T) {
	outcome := MatchChoices([]string{"A", "B", "C"}, []string{"A", "B", "D"})
	require.Equal(t, 67, outcome.Score)
	require.Equal(t, 2, outcome.CorrectCount)
	require.False(t, outcome.LengthMismatch)

	feedback := ChoiceFeedback(outcome)
	require.Contains(t, feedback, "2/3 correct")
	require.Contains(t, feedback, "Question 3")
	require.NotContains(t, feedback, "Question 1:")
}

func TestMatchChoicesCaseAndWhitespaceInsensitive(t *testing.T) {
	outcome := MatchChoices([]string{"Paris", "blue"}, []string{"  paris ", "BLUE"})
	require.Equal(t, 100, outcome.Score)
	require.Equal(t, 2, outcome.CorrectCount)
}

func TestMatchChoicesLengthMismatch(t *testing.T) {
	outcome := MatchChoices([]string{"A", "B", "C"}, []string{"A"})
	require.True(t, outcome.LengthMismatch)
	require.Equal(t, 0, outcome.Score)

	feedback := ChoiceFeedback(outcome)
	require.Contains(t, feedback, "doesn't match")
	require.Contains(t, feedback, "Expected 3, got 1.")
}

func TestMatchChoicesEmptyKey(t *testing.T) {
	outcome := MatchChoices(nil, nil)
	require.Equal(t, 0, outcome.Score)
	require.Equal(t, "No questions to evaluate.", ChoiceFeedback(outcome))
}

func TestChoiceFeedbackPerfectScoreOmitsAnalysis(t *testing.T) {
	outcome := MatchChoices([]string{"A"}, []string{"A"})
	feedback := ChoiceFeedback(outcome)
	require.Contains(t, feedback, "Excellent work!")
	require.False(t, strings.Contains(feedback, "Question Analysis"))
}
