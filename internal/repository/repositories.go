package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmais/sistema-indicadores/internal/daterange"
)

// Set groups every repository the services use.
type Set struct {
	Bases         BaseRepository
	Equipes       EquipeRepository
	Colaboradores ColaboradorRepository
	Indicadores   IndicadorRepository
	Users         UserRepository
	Lancamentos   LancamentoRepository
	Feedbacks     FeedbackRepository
}

// NewPostgresSet builds the Postgres backed repositories over one pool.
func NewPostgresSet(pool *pgxpool.Pool, guard *daterange.Guard) Set {
	return Set{
		Bases:         NewBaseRepository(pool),
		Equipes:       NewEquipeRepository(pool),
		Colaboradores: NewColaboradorRepository(pool),
		Indicadores:   NewIndicadorRepository(pool),
		Users:         NewUserRepository(pool),
		Lancamentos:   NewLancamentoRepository(pool, guard),
		Feedbacks:     NewFeedbackRepository(pool),
	}
}
