package contract_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/evalio/evalio-go-api/internal/dto"
	"github.com/evalio/evalio-go-api/internal/grading"
	"github.com/evalio/evalio-go-api/internal/handler"
	"github.com/evalio/evalio-go-api/internal/repository"
	"github.com/evalio/evalio-go-api/internal/service"
)

type fixedGenerator struct {
	response string
}

func (g fixedGenerator) Generate(context.Context, string) (string, error) {
	return g.response, nil
}

func (g fixedGenerator) Name() string { return "fixed" }

type noopEvaluatorRepo struct {
	repository.EvaluatorRepository
}

func newContractApp(t *testing.T, grader *grading.Grader) *fiber.App {
	t.Helper()
	validate := validator.New()
	quizzes := service.NewQuizService(grader, noopEvaluatorRepo{}, validate, zerolog.Nop())
	h := handler.NewAIHandler(grader, quizzes, nil, "gpt-4o-mini", validate, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/api/v1/ai"))
	return app
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", name))
	require.NoError(t, err)

	schema, err := jsonschema.Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}

func validateResponse(t *testing.T, resp *http.Response, schema *jsonschema.Schema) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}

func TestQuizEvaluationContract(t *testing.T) {
	schema := compileSchema(t, "evaluation_response.schema.json")
	grader := grading.NewGrader(fixedGenerator{response: "Score: 78\nFeedback: Covers the main points."}, grading.DefaultPolicy(), 0, zerolog.Nop())
	app := newContractApp(t, grader)

	payload, err := json.Marshal(dto.QuizEvaluationRequest{
		QuizContent:   "Describe the difference between a process and a thread.",
		StudentAnswer: "A process owns its address space while threads share one.",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/evaluate-quiz", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateResponse(t, resp, schema)
}

func TestQuizEvaluationContractFallback(t *testing.T) {
	schema := compileSchema(t, "evaluation_response.schema.json")
	grader := grading.NewGrader(nil, grading.DefaultPolicy(), 0, zerolog.Nop())
	app := newContractApp(t, grader)

	payload, err := json.Marshal(dto.QuizEvaluationRequest{
		QuizContent:   "Describe the difference between a process and a thread.",
		StudentAnswer: "A process owns its address space while threads share one and are cheaper to create, which is why servers pool them.",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/evaluate-quiz", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateResponse(t, resp, schema)
}

func TestQuizGenerationContract(t *testing.T) {
	schema := compileSchema(t, "generated_quiz.schema.json")
	grader := grading.NewGrader(nil, grading.DefaultPolicy(), 0, zerolog.Nop())
	app := newContractApp(t, grader)

	payload, err := json.Marshal(dto.QuizGenerationRequest{Language: "python", QuestionCount: 4})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/generate-quiz", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validateResponse(t, resp, schema)
}
