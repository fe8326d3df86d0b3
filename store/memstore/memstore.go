// Package memstore is the map-backed graph store. It is the default backend
// and the one the test suites run against.
package memstore

import (
	"context"
	"sync"

	"github.com/c360/semexchange/store"
)

// graph holds one named graph indexed by subject. The subject index keeps
// Construct's reachability walk from scanning the whole graph per hop.
type graph struct {
	bySubject map[string][]store.Triple
	size      int
}

func newGraph() *graph {
	return &graph{bySubject: make(map[string][]store.Triple)}
}

// Store is an in-memory triple store safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	graphs map[string]*graph
}

// New returns an empty store with the offerings and ontology graphs created.
func New() *Store {
	return &Store{
		graphs: map[string]*graph{
			store.GraphOfferings: newGraph(),
			store.GraphOntology:  newGraph(),
		},
	}
}

// Upsert adds triples to the named graph, skipping exact duplicates.
func (s *Store) Upsert(ctx context.Context, graphID string, triples []store.Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.graphs[graphID]
	if !ok {
		g = newGraph()
		s.graphs[graphID] = g
	}
	for _, t := range triples {
		if containsTriple(g.bySubject[t.Subject], t) {
			continue
		}
		g.bySubject[t.Subject] = append(g.bySubject[t.Subject], t)
		g.size++
	}
	return nil
}

// Delete removes every triple in the named graph matching the pattern.
func (s *Store) Delete(ctx context.Context, graphID string, pattern store.Pattern) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.graphs[graphID]
	if !ok {
		return nil
	}
	subjects := g.bySubject
	if pattern.Subject != "" {
		if _, ok := g.bySubject[pattern.Subject]; !ok {
			return nil
		}
		subjects = map[string][]store.Triple{pattern.Subject: g.bySubject[pattern.Subject]}
	}
	for subj, triples := range subjects {
		kept := triples[:0]
		for _, t := range triples {
			if pattern.Matches(t) {
				g.size--
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) == 0 {
			delete(g.bySubject, subj)
			continue
		}
		g.bySubject[subj] = kept
	}
	return nil
}

// Query returns every triple matching the pattern across the given graphs.
func (s *Store) Query(ctx context.Context, pattern store.Pattern, graphs ...string) ([]store.Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Triple
	s.scan(pattern, graphs, func(t store.Triple) bool {
		out = append(out, t)
		return true
	})
	return out, nil
}

// Ask reports whether at least one triple matches the pattern.
func (s *Store) Ask(ctx context.Context, pattern store.Pattern, graphs ...string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := false
	s.scan(pattern, graphs, func(store.Triple) bool {
		found = true
		return false
	})
	return found, nil
}

// Construct assembles the subgraph reachable from the pattern. IRI objects of
// collected triples are followed as subjects, each subject expanded at most
// once.
func (s *Store) Construct(ctx context.Context, pattern store.Pattern, graphs ...string) ([]store.Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Triple
	var frontier []string
	visited := make(map[string]bool)

	s.scan(pattern, graphs, func(t store.Triple) bool {
		out = append(out, t)
		visited[t.Subject] = true
		if t.Object.IsIRI() {
			frontier = append(frontier, t.Object.Str)
		}
		return true
	})
	for len(frontier) > 0 {
		subj := frontier[0]
		frontier = frontier[1:]
		if visited[subj] {
			continue
		}
		visited[subj] = true
		s.scan(store.Pattern{Subject: subj}, graphs, func(t store.Triple) bool {
			out = append(out, t)
			if t.Object.IsIRI() && !visited[t.Object.Str] {
				frontier = append(frontier, t.Object.Str)
			}
			return true
		})
	}
	return out, nil
}

// Close is a no-op for the in-memory backend.
func (s *Store) Close() error { return nil }

// Len reports the triple count of one graph, for tests and metrics.
func (s *Store) Len(graphID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.graphs[graphID]; ok {
		return g.size
	}
	return 0
}

// scan visits matching triples under the read lock. The visitor returns
// false to stop early.
func (s *Store) scan(pattern store.Pattern, graphIDs []string, visit func(store.Triple) bool) {
	for _, g := range s.selectGraphs(graphIDs) {
		if pattern.Subject != "" {
			for _, t := range g.bySubject[pattern.Subject] {
				if pattern.Matches(t) && !visit(t) {
					return
				}
			}
			continue
		}
		for _, triples := range g.bySubject {
			for _, t := range triples {
				if pattern.Matches(t) && !visit(t) {
					return
				}
			}
		}
	}
}

func (s *Store) selectGraphs(graphIDs []string) []*graph {
	if len(graphIDs) == 0 {
		out := make([]*graph, 0, len(s.graphs))
		for _, g := range s.graphs {
			out = append(out, g)
		}
		return out
	}
	out := make([]*graph, 0, len(graphIDs))
	for _, id := range graphIDs {
		if g, ok := s.graphs[id]; ok {
			out = append(out, g)
		}
	}
	return out
}

func containsTriple(triples []store.Triple, t store.Triple) bool {
	for _, existing := range triples {
		if existing.Predicate == t.Predicate && existing.Object.Equal(t.Object) {
			return true
		}
	}
	return false
}
