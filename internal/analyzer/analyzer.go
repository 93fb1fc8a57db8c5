// Package analyzer provides pure text operations for mention detection:
// normalization, politician name-variant expansion, and fuzzy matching.
// Everything here is stateless and safe for concurrent use.
package analyzer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// connectors are name particles that carry no identity on their own.
var connectors = map[string]bool{
	"da": true, "de": true, "do": true, "das": true, "dos": true, "e": true,
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, strips accents, and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	out, _, err := transform.String(stripAccents, text)
	if err != nil {
		out = text
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}

// NameVariants expands a politician's full name into the normalized
// variants used for mention detection: the full name, "first last"
// (significant tokens only), the last significant token, and the first
// token. Connector particles (da, de, do, das, dos, e) are dropped, and
// single tokens must have more than two characters to count.
func NameVariants(fullName string) []string {
	full := Normalize(fullName)
	if full == "" {
		return nil
	}

	seen := map[string]bool{full: true}
	variants := []string{full}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	var significant []string
	for _, tok := range strings.Fields(full) {
		if connectors[tok] || len(tok) <= 2 {
			continue
		}
		significant = append(significant, tok)
	}

	if len(significant) >= 2 {
		first := significant[0]
		last := significant[len(significant)-1]
		add(first + " " + last)
		add(last)
		add(first)
	} else if len(significant) == 1 {
		add(significant[0])
	}

	return variants
}

// Mentions is the result of scanning a title and body for a name.
type Mentions struct {
	TitleHit       bool
	BodyCount      int
	BestSimilarity int // 0-100
}

// AnalyzeMentions scans the title and body for any variant of name.
// Exact substring hits count as similarity 100. When no variant appears
// verbatim in the title, a partial fuzzy ratio decides the title hit
// using the given threshold (typical 85). Body hits are exact only.
func AnalyzeMentions(title, body, name string, fuzzyThreshold int) Mentions {
	variants := NameVariants(name)
	if len(variants) == 0 {
		return Mentions{}
	}

	normTitle := Normalize(title)
	normBody := Normalize(body)

	var m Mentions
	for _, v := range variants {
		if normTitle != "" && strings.Contains(normTitle, v) {
			m.TitleHit = true
			m.BestSimilarity = 100
		} else if normTitle != "" {
			// Fuzzy match catches titles with small spelling variations
			if sim := PartialRatio(v, normTitle); sim >= fuzzyThreshold {
				m.TitleHit = true
				if sim > m.BestSimilarity {
					m.BestSimilarity = sim
				}
			}
		}

		if normBody != "" {
			if n := strings.Count(normBody, v); n > 0 {
				m.BodyCount += n
				if m.BestSimilarity < 100 {
					m.BestSimilarity = 100
				}
			}
		}
	}

	return m
}
