package domain

import "time"

// Base is an airport fire/rescue station.
type Base struct {
	ID        string
	Nome      string
	CreatedAt time.Time
}

// Equipe is a shift team. Teams are global and shared across bases.
type Equipe struct {
	ID        string
	Nome      string
	CreatedAt time.Time
}

// Colaborador is a firefighter registered at a base.
type Colaborador struct {
	ID        string
	Nome      string
	BaseID    string
	Ativo     bool
	CreatedAt time.Time
}

// IndicadorConfig is a configured indicator type.
type IndicadorConfig struct {
	ID         string
	Nome       string
	SchemaType SchemaType
	CreatedAt  time.Time
}

// Label returns the name shown to users.
func (i IndicadorConfig) Label() string {
	return DisplayName(i.SchemaType, i.Nome)
}
