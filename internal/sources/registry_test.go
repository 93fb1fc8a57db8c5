package sources

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	sources []Source
	updated map[string]float64
	listErr error
}

func (f *fakeStore) ListSources(ctx context.Context) ([]Source, error) {
	return f.sources, f.listErr
}

func (f *fakeStore) UpdateSourceWeight(ctx context.Context, domain string, weight float64) error {
	if f.updated == nil {
		f.updated = make(map[string]float64)
	}
	f.updated[domain] = weight
	return nil
}

func newLoadedRegistry(t *testing.T) *Registry {
	t.Helper()
	store := &fakeStore{sources: []Source{
		{Domain: "g1.globo.com", Name: "G1", Category: "national", TrustWeight: 1.5, Active: true},
		{Domain: "folha.uol.com.br", Name: "Folha", Category: "national", TrustWeight: 1.4, Active: true},
		{Domain: "blogdozinho.com", Name: "Blog", Category: "local", TrustWeight: 0.5, Active: false},
	}}
	r := NewRegistry(store)
	require.NoError(t, r.Load(context.Background()))
	return r
}

func TestRegistryLoad(t *testing.T) {
	r := newLoadedRegistry(t)
	// Inactive sources are not loaded
	assert.Equal(t, 2, r.Len())
}

func TestRegistryLookupExact(t *testing.T) {
	r := newLoadedRegistry(t)

	s, ok := r.Lookup("g1.globo.com")
	require.True(t, ok)
	assert.Equal(t, 1.5, s.TrustWeight)

	// www. prefix is ignored
	s, ok = r.Lookup("www.g1.globo.com")
	require.True(t, ok)
	assert.Equal(t, "G1", s.Name)
}

func TestRegistryLookupSuffix(t *testing.T) {
	r := newLoadedRegistry(t)

	// Subdomain of a registered entry resolves to it
	s, ok := r.Lookup("especiais.g1.globo.com")
	require.True(t, ok)
	assert.Equal(t, "G1", s.Name)
}

func TestRegistryWeightDefault(t *testing.T) {
	r := newLoadedRegistry(t)
	assert.Equal(t, DefaultWeight, r.Weight("unknown-site.com"))
	assert.Equal(t, 1.4, r.Weight("folha.uol.com.br"))
}

func TestRegistrySetWeight(t *testing.T) {
	store := &fakeStore{sources: []Source{
		{Domain: "g1.globo.com", TrustWeight: 1.5, Active: true},
	}}
	r := NewRegistry(store)
	require.NoError(t, r.Load(context.Background()))

	require.NoError(t, r.SetWeight(context.Background(), "g1.globo.com", 1.8))
	assert.Equal(t, 1.8, r.Weight("g1.globo.com"))
	assert.Equal(t, 1.8, store.updated["g1.globo.com"])

	// Out-of-range weights are rejected before touching the store
	assert.Error(t, r.SetWeight(context.Background(), "g1.globo.com", 2.5))
	assert.Error(t, r.SetWeight(context.Background(), "g1.globo.com", -0.1))
}

func TestRegistryLoadError(t *testing.T) {
	r := NewRegistry(&fakeStore{listErr: errors.New("store down")})
	assert.Error(t, r.Load(context.Background()))
}
