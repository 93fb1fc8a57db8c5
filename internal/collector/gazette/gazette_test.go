package gazette

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTJSPQueryWithCPF(t *testing.T) {
	stub := BuildTJSPQuery(Subject{Name: "João Silva", CPF: "123.456.789-00"}, "primeiro")

	assert.Equal(t, SourceTJSP, stub.Source)
	assert.Contains(t, stub.URL, "esaj.tjsp.jus.br/cpopg/search.do")
	assert.Contains(t, stub.URL, "cbPesquisa=DOCPARTE")
	assert.Contains(t, stub.URL, "12345678900")
	assert.NotEmpty(t, stub.Instructions)
}

func TestBuildTJSPQueryByName(t *testing.T) {
	stub := BuildTJSPQuery(Subject{Name: "João Silva"}, "segundo")

	assert.Contains(t, stub.URL, "esaj.tjsp.jus.br/cposg/search.do")
	assert.Contains(t, stub.URL, "cbPesquisa=NMPARTE")
}

const tjspResultPage = `<html><body>
<table>
<tr class="fundocinza1">
  <td><a class="linkProcesso" href="/cpopg/show.do?processo.codigo=XYZ">12345678920238260100</a></td>
  <td>Ação Penal</td>
  <td>Crime de responsabilidade</td>
  <td>São Paulo</td>
  <td>15/03/2023</td>
</tr>
<tr class="fundocinza2">
  <td><a class="linkProcesso" href="/cpopg/show.do?processo.codigo=ABC">0009876-54.2022.8.26.0053</a></td>
  <td>Procedimento Comum Cível</td>
  <td>Improbidade Administrativa</td>
  <td>Campinas</td>
  <td>02/08/2022</td>
</tr>
</table>
</body></html>`

func TestParseTJSPResult(t *testing.T) {
	records, err := ParseTJSPResult(tjspResultPage)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1234567-89.2023.8.26.0100", records[0].CaseNumber)
	assert.Equal(t, "criminal", records[0].Kind)
	assert.Equal(t, "São Paulo", records[0].Venue)
	assert.Equal(t, "2023-03-15", records[0].Date)
	assert.Equal(t, "https://esaj.tjsp.jus.br/cpopg/show.do?processo.codigo=XYZ", records[0].URL)

	assert.Equal(t, "0009876-54.2022.8.26.0053", records[1].CaseNumber)
	assert.Equal(t, "civel", records[1].Kind)
}

func TestParseTJSPResultEmptyPage(t *testing.T) {
	records, err := ParseTJSPResult("<html><body>Nenhum resultado</body></html>")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBuildDOEQuery(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	stub := BuildDOEQuery("Maria Souza", start, end)

	assert.Equal(t, SourceDOE, stub.Source)
	assert.Contains(t, stub.URL, "imprensaoficial.com.br")
	assert.Contains(t, stub.URL, "txtDataIni=10%2F01%2F2025")
	assert.Contains(t, stub.URL, "txtDataFim=10%2F01%2F2026")
}

const doeResultPage = `<html><body>
<table class="resultado">
<tr>
  <td>20/06/2025</td>
  <td>Executivo</td>
  <td>12</td>
  <td>Nomear MARIA SOUZA para o cargo de Diretor Técnico <a href="/DO/GatewayPDF.aspx?id=999">PDF</a></td>
</tr>
<tr>
  <td>21/06/2025</td>
  <td>Executivo</td>
  <td>8</td>
  <td>Exonerar, a pedido, MARIA SOUZA do cargo em comissão</td>
</tr>
</table>
</body></html>`

func TestParseDOEResult(t *testing.T) {
	records, err := ParseDOEResult(doeResultPage)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "nomeacao", records[0].Kind)
	assert.Equal(t, "2025-06-20", records[0].Date)
	assert.Equal(t, "Executivo", records[0].Venue)
	assert.Equal(t, "https://www.imprensaoficial.com.br/DO/GatewayPDF.aspx?id=999", records[0].URL)

	assert.Equal(t, "exoneracao", records[1].Kind)
}

func TestParseDOEResultPDFLinksFallback(t *testing.T) {
	page := `<html><body>
	<a href="/DO/GatewayPDF.aspx?id=1">Publicação de 05/05/2025</a>
	</body></html>`

	records, err := ParseDOEResult(page)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-05-05", records[0].Date)
}

func TestBuildTRF3Query(t *testing.T) {
	stub := BuildTRF3Query(Subject{Name: "João Silva", CPF: "123.456.789-00"})

	assert.Equal(t, SourceTRF3, stub.Source)
	assert.Contains(t, stub.URL, "web.trf3.jus.br")
	assert.Contains(t, stub.URL, "CpfCnpj=12345678900")
	assert.Contains(t, stub.URL, "NomeParte=Jo")
}

const trf3ResultPage = `<html><body>
<table class="table"><tbody>
<tr>
  <td><a href="/consultas/Internet/ConsultaProcessual/Processo?numero=1">5001234-56.2024.4.03.6100</a></td>
  <td>Execução Fiscal</td>
  <td>Dívida Ativa</td>
  <td>1ª Vara Federal</td>
  <td>10/01/2024</td>
</tr>
</tbody></table>
</body></html>`

func TestParseTRF3Result(t *testing.T) {
	records, err := ParseTRF3Result(trf3ResultPage)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "5001234-56.2024.4.03.6100", records[0].CaseNumber)
	assert.Equal(t, "Execução Fiscal", records[0].Class)
	assert.Equal(t, "2024-01-10", records[0].Date)
	assert.Equal(t, "civel", records[0].Kind)
	assert.Equal(t, "https://web.trf3.jus.br/consultas/Internet/ConsultaProcessual/Processo?numero=1", records[0].URL)
}

func TestParseTRF3ResultFreeFormBlock(t *testing.T) {
	page := `<html><body>
	<div class="processo-item">
	  Processo 5009999-11.2023.4.03.6105 em tramitação
	  <span class="classe">Mandado de Segurança</span>
	</div>
	</body></html>`

	records, err := ParseTRF3Result(page)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "5009999-11.2023.4.03.6105", records[0].CaseNumber)
	assert.Equal(t, "Mandado de Segurança", records[0].Class)
}

func TestWeeklyStubs(t *testing.T) {
	stubs := WeeklyStubs(Subject{Name: "João Silva", CPF: "12345678900"})
	require.Len(t, stubs, 4)

	sources := map[string]int{}
	for _, s := range stubs {
		sources[s.Source]++
		assert.NotEmpty(t, s.URL)
		assert.NotEmpty(t, s.Instructions)
	}
	assert.Equal(t, 2, sources[SourceTJSP])
	assert.Equal(t, 1, sources[SourceDOE])
	assert.Equal(t, 1, sources[SourceTRF3])
}

func TestFormatCaseNumber(t *testing.T) {
	assert.Equal(t, "1234567-89.2023.8.26.0100", formatCaseNumber("12345678920238260100"))
	assert.Equal(t, "abc-123", formatCaseNumber(" abc-123 "))
}

func TestClassifyActKind(t *testing.T) {
	assert.Equal(t, "nomeacao", classifyActKind("Nomear fulano para o cargo"))
	assert.Equal(t, "penalidade", classifyActKind("Aplicar suspensão de 30 dias"))
	assert.Equal(t, "outros", classifyActKind("Comunicado geral"))
}
