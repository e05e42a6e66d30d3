package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medmais/sistema-indicadores/internal/compliance"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/service"
)

// ReportsHandler serves the adherence dashboard and indicator analytics.
type ReportsHandler struct {
	compliance *service.ComplianceService
	analytics  *service.AnalyticsService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(complianceService *service.ComplianceService, analyticsService *service.AnalyticsService) *ReportsHandler {
	return &ReportsHandler{compliance: complianceService, analytics: analyticsService}
}

// Aderencia GET /aderencia?mes=YYYY-MM.
func (h *ReportsHandler) Aderencia(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	report, err := h.compliance.Report(c.UserContext(), actor, strings.TrimSpace(c.Query("mes")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// Rules GET /compliance/rules.
func (h *ReportsHandler) Rules(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": compliance.Rules()})
}

// Analytics GET /analytics/:schemaType.
func (h *ReportsHandler) Analytics(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	res, err := h.analytics.Summary(c.UserContext(), actor, service.AnalyticsQuery{
		SchemaType:  domain.SchemaType(c.Params("schemaType")),
		Filter:      parseLancamentoQuery(c),
		Colaborador: strings.TrimSpace(c.Query("colaborador")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}
