package aggregator

import (
	"fmt"

	"github.com/diretoriaja/monitor/internal/domain"
)

// regionScope flags which coverage buckets an office gets.
type regionScope struct {
	national bool
	state    bool
	city     bool
}

// scopeByOffice routes offices to coverage buckets. Federal mandates
// get all three levels; everyone else gets state and city coverage.
var scopeByOffice = map[domain.Office]regionScope{
	domain.OfficePresidente:       {national: true, state: true, city: true},
	domain.OfficeSenador:          {national: true, state: true, city: true},
	domain.OfficeDeputadoFederal:  {national: true, state: true, city: true},
	domain.OfficeGovernador:       {state: true, city: true},
	domain.OfficeDeputadoEstadual: {state: true, city: true},
	domain.OfficePrefeito:         {state: true, city: true},
	domain.OfficeVereador:         {state: true, city: true},
}

func scopeFor(office domain.Office) regionScope {
	if s, ok := scopeByOffice[office]; ok {
		return s
	}
	return regionScope{city: true}
}

var stateNames = map[string]string{
	"AC": "Acre", "AL": "Alagoas", "AP": "Amapá", "AM": "Amazonas",
	"BA": "Bahia", "CE": "Ceará", "DF": "Distrito Federal", "ES": "Espírito Santo",
	"GO": "Goiás", "MA": "Maranhão", "MT": "Mato Grosso", "MS": "Mato Grosso do Sul",
	"MG": "Minas Gerais", "PA": "Pará", "PB": "Paraíba", "PR": "Paraná",
	"PE": "Pernambuco", "PI": "Piauí", "RJ": "Rio de Janeiro", "RN": "Rio Grande do Norte",
	"RS": "Rio Grande do Sul", "RO": "Rondônia", "RR": "Roraima", "SC": "Santa Catarina",
	"SP": "São Paulo", "SE": "Sergipe", "TO": "Tocantins",
}

var stateCapitals = map[string]string{
	"AC": "Rio Branco", "AL": "Maceió", "AP": "Macapá", "AM": "Manaus",
	"BA": "Salvador", "CE": "Fortaleza", "DF": "Brasília", "ES": "Vitória",
	"GO": "Goiânia", "MA": "São Luís", "MT": "Cuiabá", "MS": "Campo Grande",
	"MG": "Belo Horizonte", "PA": "Belém", "PB": "João Pessoa", "PR": "Curitiba",
	"PE": "Recife", "PI": "Teresina", "RJ": "Rio de Janeiro", "RN": "Natal",
	"RS": "Porto Alegre", "RO": "Porto Velho", "RR": "Boa Vista", "SC": "Florianópolis",
	"SP": "São Paulo", "SE": "Aracaju", "TO": "Palmas",
}

// cityFor returns the politician's city, falling back to the capital of
// their state so statewide mandates still get local coverage.
func cityFor(p domain.Politician) string {
	if p.City != "" {
		return p.City
	}
	return stateCapitals[p.State]
}

// politicianQueries builds the provider queries for one politician.
func politicianQueries(p domain.Politician) []string {
	name := p.SearchName()
	if city := cityFor(p); city != "" {
		return []string{name, fmt.Sprintf("%s %s", name, city)}
	}
	return []string{name}
}

func cityQueries(city, state string) []string {
	if state != "" {
		return []string{fmt.Sprintf("%s %s", city, state)}
	}
	return []string{city}
}

func stateQueries(state string) []string {
	name, ok := stateNames[state]
	if !ok {
		name = state
	}
	return []string{
		fmt.Sprintf("política %s", name),
		fmt.Sprintf("governo %s", name),
		fmt.Sprintf("assembleia legislativa %s", state),
	}
}

var nationalQueries = []string{
	"política Brasil",
	"Congresso Nacional",
	"Câmara dos Deputados",
	"Senado Federal",
}
