package gazette

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const trf3ConsultaURL = "https://web.trf3.jus.br/consultas/Internet/ConsultaProcessual"

var cnjPattern = regexp.MustCompile(`\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}`)
var longDigitsPattern = regexp.MustCompile(`\d{10,20}`)

// BuildTRF3Query prepares a manual federal-court search. The consulta
// page accepts query parameters to prefill the form fields.
func BuildTRF3Query(subject Subject) Stub {
	params := url.Values{}
	if cpf := normalizeCPF(subject.CPF); cpf != "" {
		params.Set("CpfCnpj", cpf)
	}
	if subject.Name != "" {
		params.Set("NomeParte", subject.Name)
	}

	queryURL := trf3ConsultaURL
	if len(params) > 0 {
		queryURL = fmt.Sprintf("%s?%s", trf3ConsultaURL, params.Encode())
	}
	return Stub{
		Source: SourceTRF3,
		URL:    queryURL,
		Instructions: []string{
			fmt.Sprintf("1. Acesse a URL: %s", queryURL),
			"2. Confira os campos pré-preenchidos",
			"3. Resolva o CAPTCHA se solicitado",
			"4. Clique em 'Pesquisar'",
			"5. Copie o HTML da página de resultados",
		},
	}
}

// ParseTRF3Result extracts cases from a pasted TRF3 result page. Table
// rows, result divs and list items are tried in that order.
func ParseTRF3Result(html string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var records []Record

	doc.Find("table.table tbody tr, table#tabelaProcessos tr").Each(func(_ int, row *goquery.Selection) {
		if rec, ok := trf3RowRecord(row); ok {
			records = append(records, rec)
		}
	})

	if len(records) == 0 {
		doc.Find("div.processo-item, div.resultado-processo, ul.lista-processos li, ol.resultados li").Each(func(_ int, el *goquery.Selection) {
			if rec, ok := trf3TextRecord(el); ok {
				records = append(records, rec)
			}
		})
	}

	return records, nil
}

func trf3RowRecord(row *goquery.Selection) (Record, bool) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return Record{}, false
	}

	link := row.Find(`a[href*="Processo"], a[href*="processo"]`).First()
	number := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	if number == "" {
		number = strings.TrimSpace(cells.Eq(0).Text())
	}
	if len(number) < 10 {
		return Record{}, false
	}

	class := strings.TrimSpace(cells.Eq(1).Text())
	subject := ""
	if cells.Length() > 2 {
		subject = strings.TrimSpace(cells.Eq(2).Text())
	}
	venue := ""
	if cells.Length() > 3 {
		venue = strings.TrimSpace(cells.Eq(3).Text())
	}
	date := ""
	if cells.Length() > 4 {
		date = strings.TrimSpace(cells.Eq(4).Text())
	}

	return Record{
		Source:     SourceTRF3,
		CaseNumber: formatCaseNumber(number),
		Class:      class,
		Subject:    subject,
		Venue:      venue,
		Kind:       inferCaseKind(class, subject),
		Date:       parseDate(date),
		URL:        trf3CaseURL(href, number),
	}, true
}

// trf3TextRecord pulls the case number out of a free-form result block.
func trf3TextRecord(el *goquery.Selection) (Record, bool) {
	text := el.Text()

	number := cnjPattern.FindString(text)
	if number == "" {
		number = longDigitsPattern.FindString(text)
	}
	if number == "" {
		return Record{}, false
	}

	return Record{
		Source:     SourceTRF3,
		CaseNumber: formatCaseNumber(number),
		Class:      firstText(el, ".classe, .classe-processo"),
		Kind:       "federal",
		Text:       truncate(strings.TrimSpace(text), 500),
	}, true
}

func trf3CaseURL(href, number string) string {
	if href != "" {
		if strings.HasPrefix(href, "/") {
			return "https://web.trf3.jus.br" + href
		}
		return href
	}
	return fmt.Sprintf("%s/Processo?numero=%s", trf3ConsultaURL, url.QueryEscape(number))
}
