package semantic

// AnnotationRef identifies an annotation by IRI together with its curation
// flags. Data fields and category declarations reference annotations through
// this shape without pulling in the full member tree.
type AnnotationRef struct {
	URI        string `json:"uri"`
	Label      string `json:"label"`
	Proposed   bool   `json:"proposed,omitempty"`
	Deprecated bool   `json:"deprecated,omitempty"`
}

// Annotation is a fully assembled datatype annotation: its reference plus the
// declared value shape. Object-valued annotations carry their ordered member
// fields inside Value.
type Annotation struct {
	AnnotationRef
	Value ValueType `json:"value"`
}

// IsSimple reports whether the annotation's declared range is primitive.
func (a Annotation) IsSimple() bool {
	return a.Value.Kind != KindObject && a.Value.Kind != KindUndefined
}

// Category is a fully assembled node of the offering taxonomy tree.
// Expected holds the inherited union: the category's own declared
// annotations plus every ancestor's, as recomputed by the rule engine.
type Category struct {
	URI        string          `json:"uri"`
	Label      string          `json:"label"`
	Parent     string          `json:"parent,omitempty"`
	Proposed   bool            `json:"proposed,omitempty"`
	Deprecated bool            `json:"deprecated,omitempty"`
	Children   []Category      `json:"children,omitempty"`
	Expected   []AnnotationRef `json:"expectedAnnotations,omitempty"`
}

// HasExpected reports whether the category's inherited annotation set
// contains the given annotation URI.
func (c Category) HasExpected(uri string) bool {
	for _, ref := range c.Expected {
		if ref.URI == uri {
			return true
		}
	}
	return false
}

// Walk visits the category and all descendants depth-first.
// The callback returning false prunes that subtree.
func (c Category) Walk(visit func(Category) bool) {
	if !visit(c) {
		return
	}
	for _, child := range c.Children {
		child.Walk(visit)
	}
}

// DataField describes one typed input or output field of an offering or
// query: a display name, the annotation it refers to, the declared value
// shape, and whether the field is required.
type DataField struct {
	Name       string        `json:"name"`
	Annotation AnnotationRef `json:"annotation"`
	Value      ValueType     `json:"value"`
	Encoding   string        `json:"encoding,omitempty"`
	Required   bool          `json:"required,omitempty"`
}

// ReferencedAnnotations returns the annotation URIs this field touches,
// including every transitively referenced object member. The matcher's
// flattened index is built from exactly this set.
func (df DataField) ReferencedAnnotations() []string {
	var uris []string
	seen := make(map[string]struct{})
	var walk func(DataField)
	walk = func(f DataField) {
		if f.Annotation.URI == "" {
			return
		}
		if _, ok := seen[f.Annotation.URI]; ok {
			return
		}
		seen[f.Annotation.URI] = struct{}{}
		uris = append(uris, f.Annotation.URI)
		for _, member := range f.Value.Members {
			walk(member)
		}
	}
	walk(df)
	return uris
}
