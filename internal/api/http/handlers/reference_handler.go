package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medmais/sistema-indicadores/internal/api/dto"
	"github.com/medmais/sistema-indicadores/internal/domain"
	"github.com/medmais/sistema-indicadores/internal/service"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

// maxImportBytes bounds colaborador CSV uploads.
const maxImportBytes = 2 << 20

// ReferenceHandler serves bases, equipes, colaboradores and indicadores.
type ReferenceHandler struct {
	reference *service.ReferenceService
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(reference *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{reference: reference}
}

// ListBases GET /bases.
func (h *ReferenceHandler) ListBases(c *fiber.Ctx) error {
	bases, err := h.reference.Bases(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": baseResponses(bases)})
}

// CreateBase POST /bases.
func (h *ReferenceHandler) CreateBase(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.NomeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	b, err := h.reference.CreateBase(c.UserContext(), actor, req.Nome)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": baseResponses([]domain.Base{*b})[0]})
}

// UpdateBase PUT /bases/:id.
func (h *ReferenceHandler) UpdateBase(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.NomeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	b, err := h.reference.UpdateBase(c.UserContext(), actor, c.Params("id"), req.Nome)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": baseResponses([]domain.Base{*b})[0]})
}

// DeleteBase DELETE /bases/:id.
func (h *ReferenceHandler) DeleteBase(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.reference.DeleteBase(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListEquipes GET /equipes.
func (h *ReferenceHandler) ListEquipes(c *fiber.Ctx) error {
	equipes, err := h.reference.Equipes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": equipeResponses(equipes)})
}

// CreateEquipe POST /equipes.
func (h *ReferenceHandler) CreateEquipe(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.NomeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	e, err := h.reference.CreateEquipe(c.UserContext(), actor, req.Nome)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": equipeResponses([]domain.Equipe{*e})[0]})
}

// UpdateEquipe PUT /equipes/:id.
func (h *ReferenceHandler) UpdateEquipe(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.NomeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	e, err := h.reference.UpdateEquipe(c.UserContext(), actor, c.Params("id"), req.Nome)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": equipeResponses([]domain.Equipe{*e})[0]})
}

// DeleteEquipe DELETE /equipes/:id.
func (h *ReferenceHandler) DeleteEquipe(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.reference.DeleteEquipe(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListIndicadores GET /indicadores.
func (h *ReferenceHandler) ListIndicadores(c *fiber.Ctx) error {
	items, err := h.reference.Indicadores(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.IndicadorResponse, 0, len(items))
	for _, ind := range items {
		out = append(out, dto.IndicadorResponse{ID: ind.ID, Nome: ind.Label(), SchemaType: ind.SchemaType})
	}
	return c.JSON(fiber.Map{"data": out})
}

// ListColaboradores GET /colaboradores?base_id=&ativos=true.
func (h *ReferenceHandler) ListColaboradores(c *fiber.Ctx) error {
	items, err := h.reference.ListColaboradores(c.UserContext(), strings.TrimSpace(c.Query("base_id")), c.QueryBool("ativos"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": colaboradorResponses(items)})
}

// CreateColaborador POST /colaboradores.
func (h *ReferenceHandler) CreateColaborador(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ColaboradorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	col := domain.Colaborador{Nome: req.Nome, BaseID: req.BaseID, Ativo: true}
	if req.Ativo != nil {
		col.Ativo = *req.Ativo
	}
	created, err := h.reference.CreateColaborador(c.UserContext(), actor, col)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": colaboradorResponse(*created)})
}

// UpdateColaborador PUT /colaboradores/:id. Omitted fields keep their value.
func (h *ReferenceHandler) UpdateColaborador(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ColaboradorRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	current, err := h.reference.Colaborador(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if req.Nome != "" {
		current.Nome = req.Nome
	}
	if req.BaseID != "" {
		current.BaseID = req.BaseID
	}
	if req.Ativo != nil {
		current.Ativo = *req.Ativo
	}
	updated, err := h.reference.UpdateColaborador(c.UserContext(), actor, *current)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": colaboradorResponse(*updated)})
}

// DeleteColaborador DELETE /colaboradores/:id.
func (h *ReferenceHandler) DeleteColaborador(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.reference.DeleteColaborador(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateColaboradoresBatch POST /colaboradores/batch.
func (h *ReferenceHandler) CreateColaboradoresBatch(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ColaboradoresBatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	created, err := h.reference.CreateColaboradoresBatch(c.UserContext(), actor, req.BaseID, req.Nomes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": colaboradorResponses(created)})
}

// ImportColaboradores POST /colaboradores/import?base_id=. Accepts a
// multipart "file" field or a raw text/csv body.
func (h *ReferenceHandler) ImportColaboradores(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	data, err := uploadedCSV(c)
	if err != nil {
		return err
	}
	created, err := h.reference.ImportColaboradoresCSV(c.UserContext(), actor, c.Query("base_id"), data)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": colaboradorResponses(created)})
}

func uploadedCSV(c *fiber.Ctx) ([]byte, error) {
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if len(c.Body()) > maxImportBytes {
			return nil, apperrors.NewValidationError("arquivo muito grande", nil)
		}
		return c.Body(), nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.NewValidationError("campo file é obrigatório", nil)
	}
	if fh.Size > maxImportBytes {
		return nil, apperrors.NewValidationError("arquivo muito grande", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxImportBytes))
}
