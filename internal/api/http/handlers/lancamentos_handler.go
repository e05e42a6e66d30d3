package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/medmais/sistema-indicadores/internal/api/dto"
	"github.com/medmais/sistema-indicadores/internal/service"
)

// LancamentosHandler manages indicator submissions.
type LancamentosHandler struct {
	lancamentos *service.LancamentoService
	export      *service.ExportService
}

// NewLancamentosHandler constructs handler.
func NewLancamentosHandler(lancamentos *service.LancamentoService, export *service.ExportService) *LancamentosHandler {
	return &LancamentosHandler{lancamentos: lancamentos, export: export}
}

// Create POST /lancamentos.
func (h *LancamentosHandler) Create(c *fiber.Ctx) error {
	return h.save(c, "", http.StatusCreated)
}

// Update PUT /lancamentos/:id.
func (h *LancamentosHandler) Update(c *fiber.Ctx) error {
	return h.save(c, c.Params("id"), http.StatusOK)
}

func (h *LancamentosHandler) save(c *fiber.Ctx, id string, status int) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SaveLancamentoRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	l, err := h.lancamentos.Save(c.UserContext(), actor, service.SaveLancamentoInput{
		ID:             id,
		DataReferencia: req.DataReferencia,
		IndicadorID:    req.IndicadorID,
		BaseID:         req.BaseID,
		EquipeID:       req.EquipeID,
		Conteudo:       req.Conteudo,
	})
	if err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": lancamentoResponse(l)})
}

// List GET /lancamentos.
func (h *LancamentosHandler) List(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	items, rng, err := h.lancamentos.List(c.UserContext(), actor, parseLancamentoQuery(c))
	if err != nil {
		return err
	}
	resp := dto.LancamentoListResponse{
		Items:      make([]dto.LancamentoResponse, 0, len(items)),
		DataInicio: rng.Start,
		DataFim:    rng.End,
	}
	for i := range items {
		resp.Items = append(resp.Items, lancamentoResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get GET /lancamentos/:id.
func (h *LancamentosHandler) Get(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	l, err := h.lancamentos.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lancamentoResponse(l)})
}

// Delete DELETE /lancamentos/:id.
func (h *LancamentosHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.lancamentos.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export GET /lancamentos/export streams the filtered listing as CSV.
func (h *LancamentosHandler) Export(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	res, err := h.export.Export(c.UserContext(), actor, parseLancamentoQuery(c), &buf)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, res.Filename))
	c.Set("X-Export-Rows", fmt.Sprint(res.Rows))
	return c.Send(buf.Bytes())
}
