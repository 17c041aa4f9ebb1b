package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/evalio/evalio-go-api/internal/dto"
	"github.com/evalio/evalio-go-api/internal/grading"
	"github.com/evalio/evalio-go-api/internal/models"
	"github.com/evalio/evalio-go-api/internal/service"
	"github.com/evalio/evalio-go-api/internal/utils"
	"github.com/evalio/evalio-go-api/pkg/ai"
)

// GeneratorFactory builds a fresh text generation handle. The reinitialize
// endpoint uses it to pick up rotated API keys without a restart.
type GeneratorFactory func(ctx context.Context) (ai.TextGenerator, error)

// AIHandler wires direct grading and quiz generation HTTP routes.
type AIHandler struct {
	grader    *grading.Grader
	quizzes   service.QuizService
	factory   GeneratorFactory
	model     string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAIHandler constructs the handler.
func NewAIHandler(grader *grading.Grader, quizzes service.QuizService, factory GeneratorFactory, model string, validate *validator.Validate, logger zerolog.Logger) *AIHandler {
	return &AIHandler{
		grader:    grader,
		quizzes:   quizzes,
		factory:   factory,
		model:     model,
		validator: validate,
		logger:    logger.With().Str("component", "ai_handler").Logger(),
	}
}

// Register attaches AI endpoints to the router group.
func (h *AIHandler) Register(router fiber.Router) {
	router.Post("/evaluate-quiz", h.evaluateQuiz)
	router.Post("/evaluate-code", h.evaluateCode)
	router.Post("/evaluate-multiple-choice", h.evaluateMultipleChoice)
	router.Get("/status", h.status)
	router.Post("/reinitialize", h.reinitialize)
	router.Post("/generate-quiz", h.generateQuiz)
	router.Post("/quizzes", h.createQuiz)
}

func (h *AIHandler) evaluateQuiz(c *fiber.Ctx) error {
	var payload dto.QuizEvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	maxPoints := payload.MaxPoints
	if maxPoints == 0 {
		maxPoints = 100
	}

	score, feedback := h.grader.GradeQuizText(c.Context(), payload.QuizContent, payload.StudentAnswer, maxPoints)

	return utils.SendSuccess(c, "quiz answer evaluated", dto.EvaluationResponse{Score: score, Feedback: feedback})
}

func (h *AIHandler) evaluateCode(c *fiber.Ctx) error {
	var payload dto.CodeEvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	language := payload.Language
	if language == "" {
		language = "python"
	}

	var testCases []models.TestCase
	if len(payload.TestCases) > 0 {
		if err := json.Unmarshal(payload.TestCases, &testCases); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "test_cases must be an array of test case objects")
		}
	}

	score, feedback := h.grader.GradeCode(c.Context(), payload.ProblemDescription, testCases, payload.StudentCode, language)

	return utils.SendSuccess(c, "code evaluated", dto.EvaluationResponse{Score: score, Feedback: feedback})
}

func (h *AIHandler) evaluateMultipleChoice(c *fiber.Ctx) error {
	var payload dto.MultipleChoiceEvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	score, feedback := h.grader.GradeMultipleChoice(c.Context(), payload.CorrectAnswers, payload.StudentAnswers)

	return utils.SendSuccess(c, "answers evaluated", dto.EvaluationResponse{Score: score, Feedback: feedback})
}

func (h *AIHandler) status(c *fiber.Ctx) error {
	status := dto.AIStatusResponse{
		Available: h.grader.Available(),
		Provider:  h.grader.Provider(),
	}
	if status.Available {
		status.Model = h.model
	}

	return utils.SendSuccess(c, "ai status retrieved", status)
}

func (h *AIHandler) reinitialize(c *fiber.Ctx) error {
	generator, err := h.factory(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("generator reinitialization failed")
		return utils.SendError(c, fiber.StatusBadGateway, "failed to reinitialize ai service")
	}

	h.grader.Reinitialize(generator)
	h.logger.Info().Bool("available", generator != nil).Msg("ai service reinitialized")

	return utils.SendSuccess(c, "ai service reinitialized", dto.AIStatusResponse{
		Available: h.grader.Available(),
		Provider:  h.grader.Provider(),
	})
}

func (h *AIHandler) generateQuiz(c *fiber.Ctx) error {
	var payload dto.QuizGenerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	quiz, err := h.quizzes.Generate(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz generated", quiz)
}

func (h *AIHandler) createQuiz(c *fiber.Ctx) error {
	var quiz grading.GeneratedQuiz
	if err := c.BodyParser(&quiz); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluator, err := h.quizzes.CreateEvaluator(c.Context(), usernameFromContext(c), quiz)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz evaluator created", evaluator)
}

func (h *AIHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	}

	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
