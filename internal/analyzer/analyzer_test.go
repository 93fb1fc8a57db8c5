package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"João da Silva", "joao da silva"},
		{"  SÃO   PAULO  ", "sao paulo"},
		{"Política\tBrasileira\n", "politica brasileira"},
		{"", ""},
		{"Ação", "acao"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNameVariants(t *testing.T) {
	variants := NameVariants("João da Silva Neto")

	assert.Contains(t, variants, "joao da silva neto")
	assert.Contains(t, variants, "joao neto") // first + last significant token
	assert.Contains(t, variants, "neto")
	assert.Contains(t, variants, "joao")
	// The connector must never surface as its own variant
	assert.NotContains(t, variants, "da")

	// Full name is always the first variant
	assert.Equal(t, "joao da silva neto", variants[0])
}

func TestNameVariantsSingleToken(t *testing.T) {
	variants := NameVariants("Lula")
	assert.Equal(t, []string{"lula"}, variants)
}

func TestNameVariantsShortTokensDropped(t *testing.T) {
	// "Jô" normalizes to "jo", only two chars, so no standalone variant
	variants := NameVariants("Jô Soares")
	assert.Contains(t, variants, "jo soares")
	assert.Contains(t, variants, "soares")
	assert.NotContains(t, variants, "jo")
}

func TestNameVariantsEmpty(t *testing.T) {
	assert.Nil(t, NameVariants(""))
}

func TestAnalyzeMentionsTitleHit(t *testing.T) {
	// The first-name variant "joao" appears verbatim in the title
	m := AnalyzeMentions("João Silva visita obra", "", "João da Silva Neto", 85)
	assert.True(t, m.TitleHit)
	assert.Equal(t, 100, m.BestSimilarity)
	assert.Equal(t, 0, m.BodyCount)
}

func TestAnalyzeMentionsBodyCount(t *testing.T) {
	body := "O prefeito João Silva anunciou. João Silva também confirmou que Neto estará presente."
	m := AnalyzeMentions("Prefeitura anuncia obras", body, "João da Silva Neto", 85)
	assert.False(t, m.TitleHit)
	// "joao silva" twice, "neto" once, "joao" twice
	assert.GreaterOrEqual(t, m.BodyCount, 3)
	assert.Equal(t, 100, m.BestSimilarity)
}

func TestAnalyzeMentionsFuzzyTitle(t *testing.T) {
	// One typo in the surname still clears the 85 threshold
	m := AnalyzeMentions("Joao Siva em destaque na campanha", "", "João Silva", 85)
	assert.True(t, m.TitleHit)
	assert.GreaterOrEqual(t, m.BestSimilarity, 85)
}

func TestAnalyzeMentionsNoMatch(t *testing.T) {
	m := AnalyzeMentions("Previsão do tempo para amanhã", "Chuvas no litoral paulista.", "João da Silva Neto", 85)
	assert.False(t, m.TitleHit)
	assert.Equal(t, 0, m.BodyCount)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("joao silva", "prefeito joao silva anuncia"))
	assert.Equal(t, 0, PartialRatio("", "anything"))
	assert.Equal(t, 100, PartialRatio("abc", "abc"))

	// Near match: one substitution in a 10-char window = 90
	assert.Equal(t, 90, PartialRatio("joao silva", "joao siLva"))
	assert.Less(t, PartialRatio("joao silva", "maria fernanda"), 60)
}
