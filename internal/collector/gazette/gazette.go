// Package gazette covers the judicial and official-gazette sources that
// sit behind a CAPTCHA (TJSP e-SAJ, DOE-SP, TRF3). Those cannot be
// fetched unattended, so each source exposes two halves: a query builder
// that returns a prefilled URL with operator instructions, and a pure
// HTML parser for the result page the operator pastes back.
package gazette

import (
	"strings"
	"time"
)

// Source identifiers stored with every record.
const (
	SourceTJSP = "tjsp"
	SourceDOE  = "doe_sp"
	SourceTRF3 = "trf3"
)

// Subject is the person a query is built for. CPF is optional; name-based
// search is used when it is absent.
type Subject struct {
	Name string
	CPF  string
}

// Stub is a prepared manual query: the URL the operator opens plus the
// steps to follow. No HTTP happens here.
type Stub struct {
	Source       string
	URL          string
	Instructions []string
}

// Record is one extracted case or publication.
type Record struct {
	Source     string
	CaseNumber string
	Class      string
	Subject    string
	Venue      string
	Kind       string
	Date       string
	Text       string
	URL        string
}

// WeeklyStubs builds the full set of manual queries for one subject. The
// weekly job persists these so operators have fresh URLs every Sunday.
func WeeklyStubs(subject Subject) []Stub {
	return []Stub{
		BuildTJSPQuery(subject, "primeiro"),
		BuildTJSPQuery(subject, "segundo"),
		BuildDOEQuery(subject.Name, time.Now().AddDate(-1, 0, 0), time.Now()),
		BuildTRF3Query(subject),
	}
}

// normalizeCPF strips everything but digits.
func normalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatCaseNumber rewrites a 20-digit case number into the CNJ layout
// NNNNNNN-DD.AAAA.J.TR.OOOO. Anything else is returned trimmed.
func formatCaseNumber(number string) string {
	digits := normalizeCPF(number)
	if len(digits) != 20 {
		return strings.TrimSpace(number)
	}
	return digits[:7] + "-" + digits[7:9] + "." + digits[9:13] + "." + digits[13:14] + "." + digits[14:16] + "." + digits[16:]
}

// inferCaseKind guesses the case kind from class and subject text.
func inferCaseKind(class, subject string) string {
	text := strings.ToLower(class + " " + subject)
	switch {
	case containsAny(text, "criminal", "penal", "crime", "inquérito"):
		return "criminal"
	case containsAny(text, "trabalhista"):
		return "trabalhista"
	case containsAny(text, "eleitoral", "eleição"):
		return "eleitoral"
	case containsAny(text, "administrativo", "mandado de segurança"):
		return "administrativo"
	default:
		return "civel"
	}
}

// actKinds maps gazette act types to the phrases that identify them.
// Order matters: the first matching kind wins.
var actKinds = []struct {
	kind  string
	terms []string
}{
	{"nomeacao", []string{"nomear", "nomeação", "nomeado", "designar", "designação"}},
	{"exoneracao", []string{"exonerar", "exoneração", "exonerado", "dispensa"}},
	{"promocao", []string{"promover", "promoção", "promovido", "progressão"}},
	{"aposentadoria", []string{"aposentar", "aposentadoria", "aposentado"}},
	{"penalidade", []string{"penalidade", "suspensão", "advertência", "demissão", "cassação"}},
	{"pad", []string{"processo administrativo", "pad", "sindicância", "inquérito"}},
	{"licitacao", []string{"licitação", "pregão", "concorrência", "tomada de preço"}},
	{"contrato", []string{"contrato", "aditivo", "termo de ajuste"}},
	{"portaria", []string{"portaria"}},
	{"decreto", []string{"decreto"}},
	{"resolucao", []string{"resolução"}},
}

func classifyActKind(text string) string {
	lower := strings.ToLower(text)
	for _, ak := range actKinds {
		if containsAny(lower, ak.terms...) {
			return ak.kind
		}
	}
	return "outros"
}

func containsAny(text string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// parseDate converts the date formats the court pages use into ISO
// yyyy-mm-dd. Unknown formats return "".
func parseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"02/01/2006", "02-01-2006", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
