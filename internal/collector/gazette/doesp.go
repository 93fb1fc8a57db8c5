package gazette

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	doeSearchURL = "https://www.imprensaoficial.com.br/DO/BuscaDO2001Resultado_11_3.aspx"
	doeHomeURL   = "https://www.imprensaoficial.com.br"
)

const doeTextLimit = 2000

var datePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// BuildDOEQuery prepares a manual search on the São Paulo state gazette
// for publications naming the person in the given period.
func BuildDOEQuery(name string, start, end time.Time) Stub {
	params := url.Values{}
	params.Set("txtPalavraChave", name)
	params.Set("txtDataIni", start.Format("02/01/2006"))
	params.Set("txtDataFim", end.Format("02/01/2006"))
	params.Set("rdoCaderno", "0")
	params.Set("tipoBusca", "avancada")

	queryURL := fmt.Sprintf("%s?%s", doeSearchURL, params.Encode())
	return Stub{
		Source: SourceDOE,
		URL:    queryURL,
		Instructions: []string{
			fmt.Sprintf("1. Acesse a URL: %s", queryURL),
			"2. Verifique se o nome está preenchido corretamente",
			"3. Ajuste o período de busca se necessário",
			"4. Clique em 'Pesquisar'",
			"5. Copie o HTML da página de resultados",
		},
	}
}

// ParseDOEResult extracts publications from a pasted gazette result
// page. The site alternates between a result table, item divs and bare
// PDF links, so the layouts are tried in that order.
func ParseDOEResult(html string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var records []Record

	doc.Find("table.resultado tr, table#resultados tr").Each(func(_ int, row *goquery.Selection) {
		if rec, ok := doeTableRecord(row); ok {
			records = append(records, rec)
		}
	})

	if len(records) == 0 {
		doc.Find("div.resultado-item, div.publicacao").Each(func(_ int, div *goquery.Selection) {
			text := strings.TrimSpace(div.Text())
			if len(text) < 20 {
				return
			}
			href, _ := div.Find("a[href]").First().Attr("href")
			records = append(records, Record{
				Source: SourceDOE,
				Date:   parseDate(datePattern.FindString(text)),
				Kind:   classifyActKind(text),
				Text:   truncate(text, doeTextLimit),
				URL:    doePDFURL(href),
			})
		})
	}

	if len(records) == 0 {
		doc.Find(`a[href*="GatewayPDF"], a[href*=".pdf"]`).Each(func(_ int, link *goquery.Selection) {
			text := strings.TrimSpace(link.Text())
			href, _ := link.Attr("href")
			if text == "" {
				text = "Publicação no DOE-SP"
			}
			records = append(records, Record{
				Source: SourceDOE,
				Date:   parseDate(datePattern.FindString(text + href)),
				Kind:   classifyActKind(text),
				Text:   truncate(text, 500),
				URL:    doePDFURL(href),
			})
		})
	}

	return records, nil
}

// doeTableRecord reads one table row: date, section, page, then the
// publication text with an optional PDF link.
func doeTableRecord(row *goquery.Selection) (Record, bool) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return Record{}, false
	}

	text := strings.TrimSpace(cells.Last().Text())
	if len(text) < 10 {
		return Record{}, false
	}

	href, _ := row.Find("a[href]").First().Attr("href")
	return Record{
		Source: SourceDOE,
		Venue:  strings.TrimSpace(cells.Eq(1).Text()),
		Date:   parseDate(strings.TrimSpace(cells.Eq(0).Text())),
		Kind:   classifyActKind(text),
		Text:   truncate(text, doeTextLimit),
		URL:    doePDFURL(href),
	}, true
}

func doePDFURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		return doeHomeURL + href
	}
	return href
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
