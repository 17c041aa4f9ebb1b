package grading

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QuizRequest describes an AI quiz generation request.
type QuizRequest struct {
	Language           string
	Difficulty         string
	QuestionCount      int
	IncludeMCQ         bool
	IncludeTheoretical bool
	Topic              string
}

// QuizQuestion is one generated question. MCQ questions carry options and a
// correct answer; theoretical questions carry a sample answer instead.
type QuizQuestion struct {
	ID            int      `json:"id"`
	Type          string   `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	SampleAnswer  string   `json:"sample_answer,omitempty"`
	Points        int      `json:"points"`
}

// GeneratedQuiz is a complete quiz produced by AI generation or the
// deterministic fallback library.
type GeneratedQuiz struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Language          string         `json:"language"`
	Difficulty        string         `json:"difficulty"`
	Questions         []QuizQuestion `json:"questions"`
	EstimatedDuration int            `json:"estimated_duration"`
	TotalPoints       int            `json:"total_points"`
}

const (
	mcqPoints         = 5
	theoreticalPoints = 10
)

// GenerateQuiz asks the generative service for a quiz and falls back to the
// deterministic template library when the service is unavailable or its
// output cannot be parsed as the expected question schema. It always returns
// a usable quiz.
func (g *Grader) GenerateQuiz(ctx context.Context, req QuizRequest) GeneratedQuiz {
	ctx, span := g.tracer.Start(ctx, "grading.generate_quiz", trace.WithAttributes(
		attribute.String("quiz.language", req.Language),
		attribute.Int("quiz.questions", req.QuestionCount),
	))
	defer span.End()

	raw, err := g.generate(ctx, buildQuizGenerationPrompt(req))
	if err != nil {
		g.logger.Warn().Err(err).Str("language", req.Language).Msg("using fallback quiz generator")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return FallbackQuiz(req)
	}

	quiz, err := parseGeneratedQuiz(raw)
	if err != nil {
		g.logger.Warn().Err(err).Str("language", req.Language).Msg("unparsable generated quiz, using fallback")
		span.SetAttributes(attribute.Bool("grading.fallback", true))
		return FallbackQuiz(req)
	}

	return quiz
}

// parseGeneratedQuiz extracts the JSON object from a model response that may
// wrap it in markdown fences or prose.
func parseGeneratedQuiz(raw string) (GeneratedQuiz, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return GeneratedQuiz{}, fmt.Errorf("%w: no JSON object in quiz response", ErrMalformedResponse)
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(raw[start:end+1]), &quiz); err != nil {
		return GeneratedQuiz{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(quiz.Questions) == 0 {
		return GeneratedQuiz{}, fmt.Errorf("%w: generated quiz has no questions", ErrMalformedResponse)
	}

	return quiz, nil
}

type quizTemplate struct {
	mcq         []QuizQuestion
	theoretical []QuizQuestion
}

// FallbackQuiz synthesizes a quiz from the fixed per-language template
// library. It is pure and deterministic and never touches the AI service.
// Unknown languages fall back to the python templates.
func FallbackQuiz(req QuizRequest) GeneratedQuiz {
	language := strings.ToLower(strings.TrimSpace(req.Language))
	template, ok := quizLibrary[language]
	if !ok {
		template = quizLibrary["python"]
	}

	perCategory := req.QuestionCount / 2

	var questions []QuizQuestion
	id := 1
	if req.IncludeMCQ {
		for _, question := range takeQuestions(template.mcq, perCategory) {
			question.ID = id
			question.Points = mcqPoints
			questions = append(questions, question)
			id++
		}
	}
	if req.IncludeTheoretical {
		for _, question := range takeQuestions(template.theoretical, perCategory) {
			question.ID = id
			question.Points = theoreticalPoints
			questions = append(questions, question)
			id++
		}
	}

	totalPoints := 0
	for _, question := range questions {
		totalPoints += question.Points
	}

	duration := len(questions) * 2
	if duration < 20 {
		duration = 20
	}

	title := fmt.Sprintf("%s Programming Quiz - %s", titleCase(req.Language), titleCase(req.Difficulty))
	description := fmt.Sprintf("A comprehensive %s level quiz covering %s programming concepts", req.Difficulty, req.Language)

	return GeneratedQuiz{
		Title:             title,
		Description:       description,
		Language:          req.Language,
		Difficulty:        req.Difficulty,
		Questions:         questions,
		EstimatedDuration: duration,
		TotalPoints:       totalPoints,
	}
}

func takeQuestions(pool []QuizQuestion, limit int) []QuizQuestion {
	if limit > len(pool) {
		limit = len(pool)
	}
	if limit < 0 {
		limit = 0
	}
	return pool[:limit]
}

func titleCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var quizLibrary = map[string]quizTemplate{
	"python": {
		mcq: []QuizQuestion{
			{
				Type:          "mcq",
				Question:      "Which of the following is the correct way to create a list in Python?",
				Options:       []string{"list = []", "list = ()", "list = {}", "list = ||"},
				CorrectAnswer: "list = []",
				Explanation:   "Square brackets [] are used to create lists in Python",
			},
			{
				Type:          "mcq",
				Question:      "What is the output of print(type([]))?",
				Options:       []string{"<class 'list'>", "<class 'array'>", "<class 'tuple'>", "<class 'dict'>"},
				CorrectAnswer: "<class 'list'>",
				Explanation:   "[] creates a list object, and type() returns the class type",
			},
		},
		theoretical: []QuizQuestion{
			{
				Type:         "theoretical",
				Question:     "Explain the difference between lists and tuples in Python. When would you use each?",
				SampleAnswer: "Lists are mutable and use [], tuples are immutable and use (). Use lists for changeable data, tuples for fixed data.",
			},
			{
				Type:         "theoretical",
				Question:     "What are Python decorators and how do they work? Provide an example.",
				SampleAnswer: "Decorators are functions that modify other functions. They use @ syntax and are used for logging, authentication, etc.",
			},
		},
	},
	"javascript": {
		mcq: []QuizQuestion{
			{
				Type:          "mcq",
				Question:      "Which method is used to add an element to the end of an array in JavaScript?",
				Options:       []string{"push()", "add()", "append()", "insert()"},
				CorrectAnswer: "push()",
				Explanation:   "push() adds elements to the end of an array",
			},
			{
				Type:          "mcq",
				Question:      "What is the correct way to declare a variable in modern JavaScript?",
				Options:       []string{"var x = 5", "let x = 5", "const x = 5", "All of the above"},
				CorrectAnswer: "All of the above",
				Explanation:   "var, let, and const are all valid declarations with different scoping rules",
			},
		},
		theoretical: []QuizQuestion{
			{
				Type:         "theoretical",
				Question:     "Explain the concept of closures in JavaScript with an example.",
				SampleAnswer: "Closures allow inner functions to access outer function variables even after the outer function returns.",
			},
			{
				Type:         "theoretical",
				Question:     "What is the difference between == and === in JavaScript?",
				SampleAnswer: "== performs type coercion, === checks strict equality without type conversion.",
			},
		},
	},
	"java": {
		mcq: []QuizQuestion{
			{
				Type:          "mcq",
				Question:      "Which keyword is used to create a constant in Java?",
				Options:       []string{"const", "final", "static", "immutable"},
				CorrectAnswer: "final",
				Explanation:   "The final keyword is used to create constants in Java",
			},
			{
				Type:          "mcq",
				Question:      "What is the correct way to start the main method in Java?",
				Options:       []string{"public static void main(String[] args)", "static public void main(String args[])", "public void main(String[] args)", "Both A and B"},
				CorrectAnswer: "Both A and B",
				Explanation:   "Both syntax variations are valid for the main method",
			},
		},
		theoretical: []QuizQuestion{
			{
				Type:         "theoretical",
				Question:     "Explain the concept of inheritance in Java and provide an example.",
				SampleAnswer: "Inheritance allows classes to inherit properties and methods from parent classes using the extends keyword.",
			},
			{
				Type:         "theoretical",
				Question:     "What are Java interfaces and how do they differ from abstract classes?",
				SampleAnswer: "Interfaces define contracts with abstract methods, while abstract classes can also carry concrete methods.",
			},
		},
	},
	"go": {
		mcq: []QuizQuestion{
			{
				Type:          "mcq",
				Question:      "How do you declare a variable in Go?",
				Options:       []string{"var name string", "string name", "declare name string", "name := string"},
				CorrectAnswer: "var name string",
				Explanation:   "The var keyword is used for variable declaration in Go",
			},
			{
				Type:          "mcq",
				Question:      "Which symbol is used for short variable declaration in Go?",
				Options:       []string{":=", "=", "==", "->"},
				CorrectAnswer: ":=",
				Explanation:   ":= declares and assigns in one statement",
			},
		},
		theoretical: []QuizQuestion{
			{
				Type:         "theoretical",
				Question:     "Explain goroutines and how they differ from traditional threads.",
				SampleAnswer: "Goroutines are lightweight threads managed by the Go runtime, cheaper than OS threads.",
			},
			{
				Type:         "theoretical",
				Question:     "What are channels in Go and how are they used for communication?",
				SampleAnswer: "Channels communicate between goroutines, following the principle of sharing memory by communicating.",
			},
		},
	},
}
