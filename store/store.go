// Package store defines the graph store adapter: triples grouped into named
// graphs, pattern matching over them, and the Store interface implemented by
// the in-memory and sqlite backends.
package store

import (
	"context"
	"fmt"
)

// Graph identifiers. All offering, provider, consumer, query and subscription
// state lives in GraphOfferings; category and annotation declarations live in
// GraphOntology so taxonomy refreshes never scan instance data.
const (
	GraphOfferings = "urn:exchange:graph:offerings"
	GraphOntology  = "urn:exchange:graph:ontology"
)

// Triple is one edge of the graph: subject and predicate are IRIs, the object
// is a tagged term.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    Term   `json:"object"`
}

// T is shorthand for building a triple.
func T(subject, predicate string, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// String renders the triple for logs.
func (t Triple) String() string {
	return fmt.Sprintf("<%s> <%s> %s", t.Subject, t.Predicate, t.Object)
}

// Pattern selects triples. An empty Subject or Predicate matches any value in
// that position; a nil Object matches any object.
type Pattern struct {
	Subject   string
	Predicate string
	Object    *Term
}

// Matches reports whether the triple satisfies every bound position of the
// pattern.
func (p Pattern) Matches(t Triple) bool {
	if p.Subject != "" && p.Subject != t.Subject {
		return false
	}
	if p.Predicate != "" && p.Predicate != t.Predicate {
		return false
	}
	if p.Object != nil && !p.Object.Equal(t.Object) {
		return false
	}
	return true
}

// Obj pins the object position of a pattern.
func Obj(t Term) *Term { return &t }

// Store is the graph store adapter. Implementations must be safe for
// concurrent use. Upsert and Delete address a single named graph; the read
// operations span the given graphs, or every graph when none is named.
//
// Upsert has set semantics: inserting a triple that is already present is a
// no-op, which is what makes event replay idempotent.
type Store interface {
	// Upsert adds triples to the named graph, ignoring exact duplicates.
	Upsert(ctx context.Context, graphID string, triples []Triple) error

	// Delete removes every triple in the named graph matching the pattern.
	// Deleting with a pattern that matches nothing is not an error.
	Delete(ctx context.Context, graphID string, pattern Pattern) error

	// Query returns every triple matching the pattern.
	Query(ctx context.Context, pattern Pattern, graphs ...string) ([]Triple, error)

	// Ask reports whether at least one triple matches the pattern.
	Ask(ctx context.Context, pattern Pattern, graphs ...string) (bool, error)

	// Construct assembles the subgraph reachable from the pattern: the
	// matching triples plus, transitively, every triple whose subject
	// appears as an IRI object of a triple already collected.
	Construct(ctx context.Context, pattern Pattern, graphs ...string) ([]Triple, error)

	// Close releases backend resources.
	Close() error
}
