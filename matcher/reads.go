package matcher

import (
	"context"
	"sort"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// The query API reads delegate to the taxonomy projection; they live on the
// matcher so callers get discovery and taxonomy browsing from one surface.

// GetCategoryTree returns the assembled taxonomy from the root, optionally
// including proposed categories.
func (m *Matcher) GetCategoryTree(ctx context.Context, includeProposed bool) (semantic.Category, error) {
	return m.tax.CategoryTree(ctx, includeProposed)
}

// GetAnnotationTree returns every declared annotation with its member tree.
func (m *Matcher) GetAnnotationTree(ctx context.Context) ([]semantic.Annotation, error) {
	return m.tax.AnnotationTree(ctx)
}

// GetOfferingCategory resolves an offering ID to its assembled category.
func (m *Matcher) GetOfferingCategory(ctx context.Context, offeringID string) (semantic.Category, error) {
	iri := vocabulary.ResourceIRI(offeringID)
	triples, err := m.query(ctx, store.Pattern{Subject: iri, Predicate: vocabulary.PropCategory})
	if err != nil {
		return semantic.Category{}, err
	}
	if len(triples) == 0 {
		return semantic.Category{}, errors.WrapInvalid(errors.ErrUnknownCategory, "matcher", "GetOfferingCategory",
			"offering "+offeringID+" has no category")
	}
	return m.tax.FindCategory(ctx, triples[0].Object.Str)
}

// GetDataField resolves an annotation URI to the data field shape it
// declares.
func (m *Matcher) GetDataField(ctx context.Context, annotationURI string) (semantic.DataField, error) {
	return m.tax.FindDataField(ctx, annotationURI)
}

// GetOfferingFields reads back an offering's input and output field lists
// from its stored field nodes, in declaration order.
func (m *Matcher) GetOfferingFields(ctx context.Context, offeringID string) (inputs, outputs []semantic.DataField, err error) {
	iri := vocabulary.ResourceIRI(offeringID)
	sub, err := m.construct(ctx, iri)
	if err != nil {
		return nil, nil, err
	}
	view := indexSubgraph(iri, sub)
	inputs = m.assembleFields(view, view.fieldRoots[vocabulary.PropHasInput])
	outputs = m.assembleFields(view, view.fieldRoots[vocabulary.PropHasOutput])
	return inputs, outputs, nil
}

func (m *Matcher) assembleFields(view *offeringView, roots []string) []semantic.DataField {
	type indexed struct {
		index int64
		field semantic.DataField
	}
	out := make([]indexed, 0, len(roots))
	for _, node := range roots {
		out = append(out, indexed{
			index: view.nodeInt(node, vocabulary.PropIndex),
			field: m.assembleField(view, node, map[string]bool{}),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })

	fields := make([]semantic.DataField, 0, len(out))
	for _, entry := range out {
		fields = append(fields, entry.field)
	}
	return fields
}

func (m *Matcher) assembleField(view *offeringView, node string, visited map[string]bool) semantic.DataField {
	if visited[node] {
		return semantic.DataField{}
	}
	visited[node] = true

	field := semantic.DataField{
		Name:     view.nodeText(node, vocabulary.PropName),
		Encoding: view.nodeText(node, vocabulary.PropEncoding),
		Required: view.nodeBool(node, vocabulary.PropRequired),
	}
	if annURI := view.nodeIRI(node, vocabulary.PropRDFAnnotation); annURI != "" {
		field.Annotation = semantic.AnnotationRef{URI: annURI}
	}
	members := view.memberNodes(node)
	if len(members) > 0 {
		assembled := make([]semantic.DataField, 0, len(members))
		for _, member := range members {
			assembled = append(assembled, m.assembleField(view, member, visited))
		}
		field.Value = semantic.Object(assembled...)
		return field
	}
	field.Value = semantic.ValueType{Kind: semantic.KindForURI(view.nodeIRI(node, vocabulary.PropValueType))}
	return field
}
