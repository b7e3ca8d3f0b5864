package handlers

import (
	"errors"

	"askhub/internal/dto"
	"askhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QuestionHandler struct {
	questionService *service.QuestionService
	logger          *zap.Logger
}

func NewQuestionHandler(questionService *service.QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		logger:          logger,
	}
}

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// pageBounds clamps raw query values into valid pagination bounds. Negative
// values would wrap when converted to uint64 and break the query.
func pageBounds(offset, limit int) (uint64, uint64) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return uint64(offset), uint64(limit)
}

func (h *QuestionHandler) ListQuestions(c *fiber.Ctx) error {
	offset, limit := pageBounds(c.QueryInt("offset", 0), c.QueryInt("limit", defaultPageSize))

	questions, err := h.questionService.List(c.Context(), offset, limit)
	if err != nil {
		h.logger.Error("Failed to list questions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list questions",
		})
	}

	resp := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, dto.QuestionToResponse(q))
	}

	return c.JSON(resp)
}

func (h *QuestionHandler) GetQuestion(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	question, err := h.questionService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		h.logger.Error("Failed to get question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get question",
		})
	}

	return c.JSON(dto.QuestionToResponse(question))
}

func (h *QuestionHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	result, err := h.questionService.CreateQuestion(c.Context(), req.Message, currentUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrContentRejected) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Content rejected by moderation",
			})
		}
		h.logger.Error("Failed to create question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while creating the question",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         result.Question.ID.String(),
		"message":    "Question created successfully",
		"suggestion": result.Suggestion,
	})
}

func (h *QuestionHandler) CreateAnswer(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	var req dto.CreateAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	result, err := h.questionService.CreateAnswer(c.Context(), questionID, req.Message, currentUserID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuestionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		case errors.Is(err, service.ErrContentRejected):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Content rejected by moderation",
			})
		}
		h.logger.Error("Failed to create answer", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while creating the answer",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":      result.Answer.ID.String(),
		"message": "Answer created successfully",
	})
}

func (h *QuestionHandler) MarkAnswered(c *fiber.Ctx) error {
	questionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	if err := h.questionService.MarkAnswered(c.Context(), questionID); err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		h.logger.Error("Failed to mark question answered", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to mark question answered",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Question marked as answered",
	})
}

func (h *QuestionHandler) GetSuggestion(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question ID format",
		})
	}

	question, err := h.questionService.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}
		h.logger.Error("Failed to get question", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get question",
		})
	}

	return c.JSON(h.questionService.Suggest(c.Context(), question.Message))
}

// currentUserID returns the authenticated user's id, or nil for anonymous
// requests passing through the optional auth middleware.
func currentUserID(c *fiber.Ctx) *uuid.UUID {
	raw, ok := c.Locals("userID").(string)
	if !ok || raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
