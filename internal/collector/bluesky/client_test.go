package bluesky

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePost = `{
  "uri": "at://did:plc:abc123/app.bsky.feed.post/3k44deefam52a",
  "author": {"handle": "cidadao.bsky.social", "displayName": "Cidadão Atento"},
  "record": {"text": "João Silva fez um ótimo trabalho na saúde", "createdAt": "2026-08-25T12:00:00Z"},
  "likeCount": 10,
  "replyCount": 3,
  "repostCount": 2
}`

func TestSearchPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.searchPosts", r.URL.Path)
		assert.Equal(t, "João Silva", r.URL.Query().Get("q"))
		w.Write([]byte(`{"posts": [` + samplePost + `]}`))
	}))
	defer server.Close()

	c := New(server.Client(), 25, 0)
	c.SetBaseURL(server.URL)

	posts, err := c.SearchPosts(context.Background(), "João Silva")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, "bluesky", p.Platform)
	assert.Equal(t, "3k44deefam52a", p.PostID)
	assert.Equal(t, "https://bsky.app/profile/cidadao.bsky.social/post/3k44deefam52a", p.URL)
	assert.Equal(t, "Cidadão Atento", p.AuthorName)
	assert.Equal(t, "cidadao.bsky.social", p.AuthorHandle)
	assert.Equal(t, 10, p.Likes)
	assert.Equal(t, 3, p.Comments)
	assert.Equal(t, 2, p.Shares)
	// 10 + 2*3 + 3*2 = 22
	assert.Equal(t, 22.0, p.EngagementScore)
	require.NotNil(t, p.PostedAt)
}

func TestAuthorFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/xrpc/app.bsky.feed.getAuthorFeed", r.URL.Path)
		assert.Equal(t, "joaosilva.bsky.social", r.URL.Query().Get("actor"))
		w.Write([]byte(`{"feed": [{"post": ` + samplePost + `}]}`))
	}))
	defer server.Close()

	c := New(server.Client(), 25, 0)
	c.SetBaseURL(server.URL)

	// Leading @ is tolerated
	posts, err := c.AuthorFeed(context.Background(), "@joaosilva.bsky.social")
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestSearchPostsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.Client(), 25, 0)
	c.SetBaseURL(server.URL)

	_, err := c.SearchPosts(context.Background(), "teste")
	assert.Error(t, err)
}

func TestPostIDAndURL(t *testing.T) {
	assert.Equal(t, "xyz", postID("at://did:plc:abc/app.bsky.feed.post/xyz"))
	assert.Equal(t, "plain", postID("plain"))
}
