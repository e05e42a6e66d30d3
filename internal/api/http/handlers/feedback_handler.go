package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medmais/sistema-indicadores/internal/api/dto"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/service"
)

// FeedbackHandler manages support messages.
type FeedbackHandler struct {
	feedbacks *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbacks *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbacks: feedbacks}
}

// Create POST /feedbacks.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	f, err := h.feedbacks.Create(c.UserContext(), actor, req.Tipo, req.Mensagem)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(f)})
}

// List GET /feedbacks?status=.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.feedbacks.List(c.UserContext(), actor, domain.FeedbackStatus(c.Query("status")))
	if err != nil {
		return err
	}
	out := make([]dto.FeedbackResponse, 0, len(items))
	for i := range items {
		out = append(out, feedbackResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Update PATCH /feedbacks/:id.
func (h *FeedbackHandler) Update(c *fiber.Ctx) error {
	var req dto.FeedbackUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	f, err := h.feedbacks.Update(c.UserContext(), c.Params("id"), service.FeedbackUpdate{
		Status:          req.Status,
		TratativaTipo:   req.TratativaTipo,
		RespostaSuporte: req.RespostaSuporte,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": feedbackResponse(f)})
}
