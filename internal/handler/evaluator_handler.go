package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/evalio/evalio-go-api/internal/dto"
	"github.com/evalio/evalio-go-api/internal/service"
	"github.com/evalio/evalio-go-api/internal/utils"
)

// EvaluatorHandler wires evaluator HTTP routes.
type EvaluatorHandler struct {
	service service.EvaluatorService
	logger  zerolog.Logger
}

// NewEvaluatorHandler constructs the handler.
func NewEvaluatorHandler(service service.EvaluatorService, logger zerolog.Logger) *EvaluatorHandler {
	return &EvaluatorHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluator_handler").Logger(),
	}
}

// Register attaches evaluator endpoints to the router group. Mutating routes
// expect the caller to be a teacher; the router enforces the role.
func (h *EvaluatorHandler) Register(public fiber.Router, teacher fiber.Router) {
	public.Get("", h.list)

	// Static segments are registered before the ":id" wildcard.
	teacher.Get("/mine", h.listMine)
	teacher.Get("/auto-graded", h.listAutoGraded)
	teacher.Post("", h.create)
	teacher.Put("/:id", h.update)
	teacher.Delete("/:id", h.delete)

	public.Get("/:id", h.get)
}

func (h *EvaluatorHandler) list(c *fiber.Ctx) error {
	var query dto.EvaluatorListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	evaluators, meta, err := h.service.List(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, evaluators, "evaluators retrieved", meta)
}

func (h *EvaluatorHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluator, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluator retrieved", evaluator)
}

func (h *EvaluatorHandler) create(c *fiber.Ctx) error {
	var payload dto.EvaluatorCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluator, err := h.service.Create(c.Context(), usernameFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluator created", evaluator)
}

func (h *EvaluatorHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EvaluatorUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluator, err := h.service.Update(c.Context(), id, usernameFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluator updated", evaluator)
}

func (h *EvaluatorHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id, usernameFromContext(c)); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "evaluator deleted", fiber.Map{"id": id})
}

func (h *EvaluatorHandler) listMine(c *fiber.Ctx) error {
	evaluators, err := h.service.ListMine(c.Context(), usernameFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "evaluators retrieved", evaluators)
}

func (h *EvaluatorHandler) listAutoGraded(c *fiber.Ctx) error {
	evaluators, err := h.service.ListAutoGraded(c.Context(), usernameFromContext(c))
	if err != nil {
		return h.internalError(c, err)
	}

	return utils.SendSuccess(c, "auto-graded evaluators retrieved", evaluators)
}

func (h *EvaluatorHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEvaluatorNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "evaluator not found")
	case errors.Is(err, service.ErrEvaluatorForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "you do not own this evaluator")
	case errors.Is(err, service.ErrQuizKindLocked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDeadlineInPast):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrChoiceCountMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrQuizKindRequired):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		return h.internalError(c, err)
	}
}

func (h *EvaluatorHandler) internalError(c *fiber.Ctx, err error) error {
	h.logger.Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
