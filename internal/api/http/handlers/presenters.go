package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/medmais/sistema-indicadores/internal/api/dto"
	"github.com/medmais/sistema-indicadores/internal/auth"
	"github.com/medmais/sistema-indicadores/internal/domain"
	apperrors "github.com/medmais/sistema-indicadores/pkg/util/errorutil"
)

func principal(c *fiber.Ctx) (domain.Profile, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Profile{}, apperrors.NewUnauthorized("Usuário não autenticado")
	}
	return p.Profile, nil
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// parseLancamentoQuery reads the common submission filters. page_size of 0
// means no limit.
func parseLancamentoQuery(c *fiber.Ctx) domain.LancamentoFilter {
	filter := domain.LancamentoFilter{
		DataInicio:  strings.TrimSpace(c.Query("data_inicio")),
		DataFim:     strings.TrimSpace(c.Query("data_fim")),
		BaseID:      strings.TrimSpace(c.Query("base_id")),
		EquipeID:    strings.TrimSpace(c.Query("equipe_id")),
		UserID:      strings.TrimSpace(c.Query("user_id")),
		IndicadorID: strings.TrimSpace(c.Query("indicador_id")),
	}
	pageSize := parseInt(c.Query("page_size"), 0)
	if pageSize > 0 {
		page := parseInt(c.Query("page"), 1)
		if page < 1 {
			page = 1
		}
		filter.Limit = pageSize
		filter.Offset = (page - 1) * pageSize
	}
	return filter
}

func profileResponse(p *domain.Profile, email string) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:               p.ID,
		Email:            email,
		Nome:             p.Nome,
		Role:             p.Role,
		BaseID:           p.BaseID,
		EquipeID:         p.EquipeID,
		AcessoGerenteSCI: p.AcessoGerenteSCI,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func lancamentoResponse(l *domain.Lancamento) dto.LancamentoResponse {
	conteudo := l.Conteudo
	if len(conteudo) == 0 {
		conteudo = json.RawMessage(`{}`)
	}
	return dto.LancamentoResponse{
		ID:             l.ID,
		DataReferencia: l.DataReferencia,
		BaseID:         l.BaseID,
		EquipeID:       l.EquipeID,
		UserID:         l.UserID,
		IndicadorID:    l.IndicadorID,
		Conteudo:       conteudo,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func baseResponses(items []domain.Base) []dto.BaseResponse {
	out := make([]dto.BaseResponse, 0, len(items))
	for _, b := range items {
		out = append(out, dto.BaseResponse{ID: b.ID, Nome: b.Nome, CreatedAt: b.CreatedAt})
	}
	return out
}

func equipeResponses(items []domain.Equipe) []dto.EquipeResponse {
	out := make([]dto.EquipeResponse, 0, len(items))
	for _, e := range items {
		out = append(out, dto.EquipeResponse{ID: e.ID, Nome: e.Nome, CreatedAt: e.CreatedAt})
	}
	return out
}

func colaboradorResponse(c domain.Colaborador) dto.ColaboradorResponse {
	return dto.ColaboradorResponse{ID: c.ID, Nome: c.Nome, BaseID: c.BaseID, Ativo: c.Ativo, CreatedAt: c.CreatedAt}
}

func colaboradorResponses(items []domain.Colaborador) []dto.ColaboradorResponse {
	out := make([]dto.ColaboradorResponse, 0, len(items))
	for _, c := range items {
		out = append(out, colaboradorResponse(c))
	}
	return out
}

func feedbackResponse(f *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:              f.ID,
		UserID:          f.UserID,
		Tipo:            f.Tipo,
		Mensagem:        f.Mensagem,
		Status:          f.Status,
		TratativaTipo:   f.TratativaTipo,
		RespostaSuporte: f.RespostaSuporte,
		CreatedAt:       f.CreatedAt,
	}
}
