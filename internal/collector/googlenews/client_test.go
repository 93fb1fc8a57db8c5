package googlenews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"joão silva" - Google News</title>
  <item>
    <title>João Silva visita obra - G1</title>
    <link>https://news.google.com/rss/articles/abc123</link>
    <pubDate>Tue, 25 Aug 2026 10:00:00 GMT</pubDate>
    <description>O prefeito visitou as obras da nova escola.</description>
    <source url="https://g1.globo.com">G1</source>
  </item>
  <item>
    <title>Câmara aprova projeto - Folha de S.Paulo</title>
    <link>https://news.google.com/rss/articles/def456</link>
    <pubDate>Tue, 25 Aug 2026 08:00:00 GMT</pubDate>
    <source url="https://folha.uol.com.br">Folha de S.Paulo</source>
  </item>
</channel>
</rss>`

func TestSearchNews(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	c := New(server.Client(), 0, 20)
	c.SetBaseURL(server.URL)

	items, err := c.SearchNews(context.Background(), `"joão silva"`)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Contains(t, gotPath, "/search?q=")
	assert.Contains(t, gotPath, "hl=pt-BR")

	assert.Equal(t, "João Silva visita obra", items[0].Title)
	assert.Equal(t, "G1", items[0].SourceName)
	assert.Equal(t, "https://news.google.com/rss/articles/abc123", items[0].URL)
	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, 2026, items[0].PublishedAt.Year())

	assert.Equal(t, "Câmara aprova projeto", items[1].Title)
	assert.Equal(t, "Folha de S.Paulo", items[1].SourceName)
}

func TestSearchNewsMaxItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	c := New(server.Client(), 0, 1)
	c.SetBaseURL(server.URL)

	items, err := c.SearchNews(context.Background(), "teste")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSearchNewsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.Client(), 0, 20)
	c.SetBaseURL(server.URL)

	_, err := c.SearchNews(context.Background(), "teste")
	assert.Error(t, err)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "João Silva visita obra", cleanTitle("João Silva visita obra - G1"))
	assert.Equal(t, "Sem sufixo", cleanTitle("Sem sufixo"))
	assert.Equal(t, "G1", titleSource("João Silva visita obra - G1"))
	assert.Equal(t, "", titleSource("Sem sufixo"))
}

const sampleArticleHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title | Portal</title>
  <meta property="og:title" content="João Silva anuncia investimento em saúde">
  <meta property="og:description" content="Prefeito anunciou R$ 10 milhões para a rede municipal.">
  <meta property="og:image" content="https://portal.com/img/hero.jpg">
  <meta property="article:published_time" content="2026-08-25T10:30:00-03:00">
</head>
<body>
  <article>
    <p>Curto.</p>
    <p>O prefeito João Silva anunciou nesta segunda-feira um investimento de dez milhões de reais na rede municipal de saúde.</p>
    <p>Segundo a prefeitura, os recursos serão aplicados na reforma de unidades básicas e na compra de equipamentos.</p>
  </article>
</body>
</html>`

func TestFetchArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(sampleArticleHTML))
	}))
	defer server.Close()

	c := New(server.Client(), 0, 20)

	article, err := c.FetchArticle(context.Background(), server.URL+"/noticia/1")
	require.NoError(t, err)

	assert.Equal(t, "João Silva anuncia investimento em saúde", article.Title)
	assert.Equal(t, "Prefeito anunciou R$ 10 milhões para a rede municipal.", article.Description)
	assert.Equal(t, "https://portal.com/img/hero.jpg", article.ImageURL)
	require.NotNil(t, article.PublishedAt)
	assert.Contains(t, article.Body, "dez milhões de reais")
	// Sub-40-char paragraphs are treated as boilerplate
	assert.NotContains(t, article.Body, "Curto.")
}

func TestExtractArticleFallbacks(t *testing.T) {
	html := `<html><head><title>Only a title</title></head><body><p>` +
		strings.Repeat("conteúdo relevante ", 5) + `</p></body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	article := extractArticle(doc)
	assert.Equal(t, "Only a title", article.Title)
	assert.Nil(t, article.PublishedAt)
	assert.NotEmpty(t, article.Body)
}
