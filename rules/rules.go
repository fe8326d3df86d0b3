// Package rules implements the fixed derivation rules of the exchange as
// explicit, independently testable passes: category closure, annotation
// inheritance, free-price normalization, and simple-type classification.
// The passes are pure functions over plain maps so both the taxonomy
// projection and the matcher can run them without depending on each other.
package rules

import (
	"github.com/c360/semexchange/types/offering"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// AncestorClosure computes, for every category, the set of its ancestors up
// to the root. parents maps child URI to parent URI; the root has no entry
// (or an empty parent). The pass is a memoized worklist bounded by tree
// depth: each node's chain is computed once and reused by its descendants.
// A parent cycle truncates the chain at the revisit instead of looping.
func AncestorClosure(parents map[string]string) map[string][]string {
	closure := make(map[string][]string, len(parents))

	var chain func(uri string, visiting map[string]bool) []string
	chain = func(uri string, visiting map[string]bool) []string {
		if memo, ok := closure[uri]; ok {
			return memo
		}
		parent, ok := parents[uri]
		if !ok || parent == "" || visiting[uri] {
			closure[uri] = nil
			return nil
		}
		visiting[uri] = true
		ancestors := append([]string{parent}, chain(parent, visiting)...)
		delete(visiting, uri)
		closure[uri] = ancestors
		return ancestors
	}
	for uri := range parents {
		chain(uri, make(map[string]bool))
	}
	return closure
}

// Descendants returns the set of categories at or below root: root itself
// plus every category whose ancestor chain contains it. An offering tagged
// with any member of this set is considered tagged with root for matching.
func Descendants(parents map[string]string, root string) map[string]bool {
	closure := AncestorClosure(parents)
	out := map[string]bool{root: true}
	for uri, ancestors := range closure {
		for _, a := range ancestors {
			if a == root {
				out[uri] = true
				break
			}
		}
	}
	return out
}

// InheritedAnnotations recomputes the expected-annotation set of every
// category: its own declarations unioned with every ancestor's declarations.
// declared maps category URI to its directly declared annotation URIs. The
// result preserves own-first order and drops duplicates.
func InheritedAnnotations(parents map[string]string, declared map[string][]string) map[string][]string {
	closure := AncestorClosure(parents)
	out := make(map[string][]string, len(declared))

	collect := func(uri string) []string {
		seen := make(map[string]bool)
		var merged []string
		add := func(uris []string) {
			for _, a := range uris {
				if seen[a] {
					continue
				}
				seen[a] = true
				merged = append(merged, a)
			}
		}
		add(declared[uri])
		for _, ancestor := range closure[uri] {
			add(declared[ancestor])
		}
		return merged
	}
	for uri := range parents {
		out[uri] = collect(uri)
	}
	for uri := range declared {
		if _, ok := out[uri]; !ok {
			out[uri] = collect(uri)
		}
	}
	return out
}

// NormalizePrice applies the free-price rule: pricingModel FREE forces
// amount 0.0 and currency EUR regardless of the declared money. Non-free
// prices pass through unchanged.
func NormalizePrice(p offering.Price) offering.Price {
	return p.Normalized()
}

// IsSimpleRange reports whether an annotation range IRI classifies the
// annotation as simple-valued.
func IsSimpleRange(rangeURI string) bool {
	return vocabulary.IsSimpleType(rangeURI)
}

// KindForRange maps an annotation range IRI to the value kind its fields
// carry. Simple ranges map to their primitive family; anything else is an
// object annotation with members.
func KindForRange(rangeURI string) semantic.ValueKind {
	if rangeURI == "" {
		return semantic.KindUndefined
	}
	switch vocabulary.SchemaForRange(rangeURI) {
	case vocabulary.BooleanSchema:
		return semantic.KindBoolean
	case vocabulary.DateTimeSchema:
		return semantic.KindDateTime
	case vocabulary.NumberSchema:
		if rangeURI == vocabulary.SchemaNS+"Integer" {
			return semantic.KindInteger
		}
		return semantic.KindNumber
	case vocabulary.StringSchema:
		return semantic.KindText
	default:
		return semantic.KindObject
	}
}
