// Package sources keeps the in-memory registry of news sources and their
// trust weights. The registry is loaded from the store at startup and
// consulted on every scored item, so reads take only a shared lock.
package sources

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultWeight is used for domains not present in the registry.
const DefaultWeight = 1.0

// Source describes one registered news source.
type Source struct {
	Domain      string
	Name        string
	Category    string // national, regional, local, social
	TrustWeight float64
	Active      bool
}

// Store is the persistence surface the registry needs.
type Store interface {
	ListSources(ctx context.Context) ([]Source, error)
	UpdateSourceWeight(ctx context.Context, domain string, weight float64) error
}

// Registry maps domains to trust weights. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byDomain map[string]Source
	store    Store
}

// NewRegistry creates an empty registry backed by the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		byDomain: make(map[string]Source),
		store:    store,
	}
}

// Load replaces the in-memory table with the store's active sources.
func (r *Registry) Load(ctx context.Context) error {
	srcs, err := r.store.ListSources(ctx)
	if err != nil {
		return fmt.Errorf("loading sources: %w", err)
	}

	table := make(map[string]Source, len(srcs))
	for _, s := range srcs {
		if !s.Active {
			continue
		}
		table[strings.ToLower(s.Domain)] = s
	}

	r.mu.Lock()
	r.byDomain = table
	r.mu.Unlock()
	return nil
}

// Lookup finds the source entry for a domain: exact match first, then any
// entry whose domain is contained in the queried one (so "globo.com"
// covers "g1.globo.com").
func (r *Registry) Lookup(domain string) (Source, bool) {
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byDomain[domain]; ok {
		return s, true
	}
	for key, s := range r.byDomain {
		if strings.Contains(domain, key) {
			return s, true
		}
	}
	return Source{}, false
}

// Weight returns the trust weight for a domain, or DefaultWeight when the
// domain is unknown.
func (r *Registry) Weight(domain string) float64 {
	if s, ok := r.Lookup(domain); ok {
		return s.TrustWeight
	}
	return DefaultWeight
}

// SetWeight updates a source's trust weight in the store and in memory.
// Weights outside [0, 2] are rejected.
func (r *Registry) SetWeight(ctx context.Context, domain string, weight float64) error {
	if weight < 0 || weight > 2 {
		return fmt.Errorf("trust weight %.2f out of range [0, 2]", weight)
	}
	domain = strings.ToLower(strings.TrimPrefix(domain, "www."))

	if err := r.store.UpdateSourceWeight(ctx, domain, weight); err != nil {
		return fmt.Errorf("persisting weight for %s: %w", domain, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byDomain[domain]
	if !ok {
		s = Source{Domain: domain, TrustWeight: weight, Active: true}
	}
	s.TrustWeight = weight
	r.byDomain[domain] = s
	return nil
}

// Len reports how many sources are loaded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byDomain)
}
