package domain

import "time"

// Office enumerates the mandates a tracked politician can hold. The
// office decides which coverage scopes the aggregators collect for.
type Office string

const (
	OfficeVereador         Office = "vereador"
	OfficePrefeito         Office = "prefeito"
	OfficeDeputadoEstadual Office = "deputado_estadual"
	OfficeDeputadoFederal  Office = "deputado_federal"
	OfficeSenador          Office = "senador"
	OfficeGovernador       Office = "governador"
	OfficePresidente       Office = "presidente"
)

// Politician is a tracked political figure.
type Politician struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	SocialName    string    `json:"social_name" db:"social_name"`
	Office        Office    `json:"office" db:"office"`
	Party         string    `json:"party" db:"party"`
	City          string    `json:"city" db:"city"`
	State         string    `json:"state" db:"state"`
	CPF           string    `json:"-" db:"cpf"`
	PhotoURL      string    `json:"photo_url" db:"photo_url"`
	BlueSkyHandle string    `json:"bluesky_handle" db:"bluesky_handle"`
	Featured      bool      `json:"featured" db:"featured"`
	Active        bool      `json:"active" db:"active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SearchName returns the name used for provider queries: the social
// name when set, the registry name otherwise.
func (p Politician) SearchName() string {
	if p.SocialName != "" {
		return p.SocialName
	}
	return p.Name
}
