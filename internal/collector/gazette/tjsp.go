package gazette

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tjspBaseURLs = map[string]string{
	"primeiro": "https://esaj.tjsp.jus.br/cpopg",
	"segundo":  "https://esaj.tjsp.jus.br/cposg",
}

// BuildTJSPQuery prepares a manual e-SAJ party search for the given
// degree ("primeiro" or "segundo"). CPF search is used when available,
// name search otherwise.
func BuildTJSPQuery(subject Subject, degree string) Stub {
	base, ok := tjspBaseURLs[degree]
	if !ok {
		base = tjspBaseURLs["primeiro"]
	}

	params := url.Values{}
	params.Set("conversationId", "")
	params.Set("dadosConsulta.tipoNuProcesso", "UNIFICADO")
	if cpf := normalizeCPF(subject.CPF); cpf != "" {
		params.Set("cbPesquisa", "DOCPARTE")
		params.Set("dadosConsulta.valorConsulta", cpf)
	} else {
		params.Set("cbPesquisa", "NMPARTE")
		params.Set("dadosConsulta.valorConsulta", subject.Name)
	}

	queryURL := fmt.Sprintf("%s/search.do?%s", base, params.Encode())
	return Stub{
		Source: SourceTJSP,
		URL:    queryURL,
		Instructions: []string{
			fmt.Sprintf("1. Acesse a URL: %s", queryURL),
			"2. Resolva o CAPTCHA 'Não sou robô'",
			"3. Clique em 'Consultar'",
			"4. Copie o HTML da página de resultados",
			"5. Envie o HTML para processamento",
		},
	}
}

// ParseTJSPResult extracts cases from a pasted e-SAJ result page. The
// site uses table rows on the list page and process divs on some result
// variants, so both layouts are tried.
func ParseTJSPResult(html string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var records []Record

	rows := doc.Find("tr.fundocinza1, tr.fundocinza2, tr.containerInterno")
	if rows.Length() == 0 {
		rows = doc.Find("div.espacamentoTop20 > table tr")
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		if rec, ok := tjspRowRecord(row); ok {
			records = append(records, rec)
		}
	})

	if len(records) == 0 {
		doc.Find("div#listaDeProcessos div.processo").Each(func(_ int, div *goquery.Selection) {
			link := div.Find("a.linkProcesso").First()
			number := strings.TrimSpace(link.Text())
			if number == "" {
				return
			}
			records = append(records, Record{
				Source:     SourceTJSP,
				CaseNumber: formatCaseNumber(number),
				Kind:       "civel",
				Text:       strings.TrimSpace(div.Text()),
			})
		})
	}

	return records, nil
}

func tjspRowRecord(row *goquery.Selection) (Record, bool) {
	link := row.Find(`a.linkProcesso, a[title*="processo"]`).First()
	number := strings.TrimSpace(link.Text())
	if number == "" {
		return Record{}, false
	}

	href, _ := link.Attr("href")
	if strings.HasPrefix(href, "/") {
		href = "https://esaj.tjsp.jus.br" + href
	}

	class := firstText(row, "td:nth-child(2), span.classeProcesso")
	subject := firstText(row, "td:nth-child(3), span.assuntoProcesso")
	venue := firstText(row, "td:nth-child(4), span.comarcaProcesso")
	date := firstText(row, "td:nth-child(5), span.dataProcesso")

	return Record{
		Source:     SourceTJSP,
		CaseNumber: formatCaseNumber(number),
		Class:      class,
		Subject:    subject,
		Venue:      venue,
		Kind:       inferCaseKind(class, subject),
		Date:       parseDate(date),
		URL:        href,
	}, true
}

func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}
