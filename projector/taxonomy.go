package projector

import (
	"context"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/event"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// Handlers for structural taxonomy mutations. Every mutation on the
// ontology graph ends with a synchronous snapshot refresh, so readers after
// the handler returns see the new structure.

// HandleCategoryCreated declares a category under an existing parent.
// Re-declaring a known URI is the idempotent no-op case.
func (p *Projector) HandleCategoryCreated(ctx context.Context, ev event.CategoryCreatedEvent) error {
	exists, err := p.tax.HasCategory(ctx, ev.URI)
	if err != nil {
		return err
	}
	if exists {
		p.log.Debug("category already declared", "uri", ev.URI)
		return nil
	}
	parent := ev.Parent
	if parent == "" {
		parent = vocabulary.RootCategory
	}
	if err := p.requireCategory(ctx, parent); err != nil {
		return err
	}

	class := vocabulary.ClassCategory
	if ev.Proposed {
		class = vocabulary.ClassProposedCategory
	}
	triples := []store.Triple{
		store.T(ev.URI, vocabulary.PropType, store.IRI(class)),
		store.T(ev.URI, vocabulary.PropLabel, store.Text(ev.Name)),
		store.T(parent, vocabulary.PropNarrower, store.IRI(ev.URI)),
	}
	if err := p.upsert(ctx, store.GraphOntology, triples); err != nil {
		return err
	}
	return p.refreshTaxonomy(ctx)
}

// HandleCategoryNameChanged relabels a category.
func (p *Projector) HandleCategoryNameChanged(ctx context.Context, ev event.CategoryNameChangedEvent) error {
	if err := p.requireCategory(ctx, ev.URI); err != nil {
		return err
	}
	if err := p.delete(ctx, store.GraphOntology, store.Pattern{Subject: ev.URI, Predicate: vocabulary.PropLabel}); err != nil {
		return err
	}
	if err := p.upsert(ctx, store.GraphOntology, []store.Triple{
		store.T(ev.URI, vocabulary.PropLabel, store.Text(ev.Name)),
	}); err != nil {
		return err
	}
	return p.refreshTaxonomy(ctx)
}

// HandleCategoryParentChanged moves a category under a new parent. The
// inherited annotation sets of the moved subtree are recomputed by the
// refresh; nothing inherited from the old chain is kept unless declared
// directly.
func (p *Projector) HandleCategoryParentChanged(ctx context.Context, ev event.CategoryParentChangedEvent) error {
	if err := p.requireCategory(ctx, ev.URI); err != nil {
		return err
	}
	if err := p.requireCategory(ctx, ev.Parent); err != nil {
		return err
	}
	if err := p.delete(ctx, store.GraphOntology, store.Pattern{
		Predicate: vocabulary.PropNarrower,
		Object:    store.Obj(store.IRI(ev.URI)),
	}); err != nil {
		return err
	}
	if err := p.upsert(ctx, store.GraphOntology, []store.Triple{
		store.T(ev.Parent, vocabulary.PropNarrower, store.IRI(ev.URI)),
	}); err != nil {
		return err
	}
	return p.refreshTaxonomy(ctx)
}

// HandleCategoryDeprecated marks a category deprecated. The node stays in
// the tree; deprecation never deletes.
func (p *Projector) HandleCategoryDeprecated(ctx context.Context, ev event.CategoryURIEvent) error {
	return p.setDeprecated(ctx, ev.URI, true, p.requireCategory)
}

// HandleCategoryUndeprecated clears the deprecation flag.
func (p *Projector) HandleCategoryUndeprecated(ctx context.Context, ev event.CategoryURIEvent) error {
	return p.setDeprecated(ctx, ev.URI, false, p.requireCategory)
}

// HandleTypeAdded declares an annotation expected by a category. An unknown
// annotation URI is auto-materialized as proposed.
func (p *Projector) HandleTypeAdded(ctx context.Context, ev event.TypeAddedEvent) error {
	if err := p.requireCategory(ctx, ev.CategoryURI); err != nil {
		return err
	}
	if err := p.proposeAnnotation(ctx, ev.CategoryURI, ev.Annotation); err != nil && !errors.IsDuplicateProposed(err) {
		return err
	}
	// The duplicate case still may add the expectation edge for a
	// previously unattached category.
	if err := p.upsert(ctx, store.GraphOntology, []store.Triple{
		store.T(ev.CategoryURI, vocabulary.PropExpectedAnnotation, store.IRI(ev.Annotation.URI)),
	}); err != nil {
		return err
	}
	return p.refreshTaxonomy(ctx)
}

// HandleAnnotationDeprecated marks an annotation deprecated.
func (p *Projector) HandleAnnotationDeprecated(ctx context.Context, ev event.AnnotationURIEvent) error {
	return p.setDeprecated(ctx, ev.URI, true, p.requireAnnotation)
}

// HandleAnnotationUndeprecated clears the deprecation flag.
func (p *Projector) HandleAnnotationUndeprecated(ctx context.Context, ev event.AnnotationURIEvent) error {
	return p.setDeprecated(ctx, ev.URI, false, p.requireAnnotation)
}

func (p *Projector) requireAnnotation(ctx context.Context, uri string) error {
	ok, err := p.tax.HasAnnotation(ctx, uri)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownAnnotation, "projector", "requireAnnotation", uri)
	}
	return nil
}

func (p *Projector) setDeprecated(ctx context.Context, uri string, deprecated bool, require func(context.Context, string) error) error {
	if err := require(ctx, uri); err != nil {
		return err
	}
	if err := p.delete(ctx, store.GraphOntology, store.Pattern{Subject: uri, Predicate: vocabulary.PropIsDeprecated}); err != nil {
		return err
	}
	if deprecated {
		if err := p.upsert(ctx, store.GraphOntology, []store.Triple{
			store.T(uri, vocabulary.PropIsDeprecated, store.Boolean(true)),
		}); err != nil {
			return err
		}
	}
	return p.refreshTaxonomy(ctx)
}

// proposeAnnotation inserts a proposed annotation and attaches it to the
// referencing category. A URI already in the snapshot signals
// ErrDuplicateProposedAnnotation; callers treat it as the idempotent no-op.
func (p *Projector) proposeAnnotation(ctx context.Context, categoryURI string, ref semantic.AnnotationRef) error {
	exists, err := p.tax.HasAnnotation(ctx, ref.URI)
	if err != nil {
		return err
	}
	if exists {
		return errors.WrapInvalid(errors.ErrDuplicateProposedAnnotation, "projector", "proposeAnnotation", ref.URI)
	}

	label := ref.Label
	if label == "" {
		label = localName(ref.URI)
	}
	triples := []store.Triple{
		store.T(ref.URI, vocabulary.PropType, store.IRI(vocabulary.ClassProposedAnnotation)),
		store.T(ref.URI, vocabulary.PropLabel, store.Text(label)),
	}
	if categoryURI != "" {
		triples = append(triples, store.T(categoryURI, vocabulary.PropExpectedAnnotation, store.IRI(ref.URI)))
	}
	if err := p.upsert(ctx, store.GraphOntology, triples); err != nil {
		return err
	}
	p.log.Info("auto-materialized proposed annotation", "uri", ref.URI, "category", categoryURI)
	return p.refreshTaxonomy(ctx)
}
