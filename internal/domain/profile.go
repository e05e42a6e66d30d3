package domain

import "time"

// Role defines what a user may see and change.
type Role string

const (
	RoleGeral      Role = "geral"
	RoleChefe      Role = "chefe"
	RoleGerenteSCI Role = "gerente_sci"
	RoleAuxiliar   Role = "auxiliar"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleGeral, RoleChefe, RoleGerenteSCI, RoleAuxiliar:
		return true
	}
	return false
}

// RequiresEquipe reports whether the role is bound to a team.
func (r Role) RequiresEquipe() bool {
	return r == RoleChefe || r == RoleAuxiliar
}

// RequiresBase reports whether the role is bound to a base.
func (r Role) RequiresBase() bool {
	return r != RoleGeral
}

// Profile is the application-level identity of a user.
type Profile struct {
	ID               string
	Nome             string
	Role             Role
	BaseID           *string
	EquipeID         *string
	AcessoGerenteSCI bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BaseIDValue returns the profile base or an empty string.
func (p Profile) BaseIDValue() string {
	if p.BaseID == nil {
		return ""
	}
	return *p.BaseID
}

// EquipeIDValue returns the profile team or an empty string.
func (p Profile) EquipeIDValue() string {
	if p.EquipeID == nil {
		return ""
	}
	return *p.EquipeID
}

// Account holds login credentials. It shares its ID with the Profile.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
