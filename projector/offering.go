package projector

import (
	"context"
	"strings"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/event"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// HandleOfferingCreated expands the payload into the offering sub-graph and
// writes it in one upsert. The category must already exist; referenced
// annotations that do not are auto-materialized as proposed before the
// write, so the delta never references undeclared vocabulary.
func (p *Projector) HandleOfferingCreated(ctx context.Context, ev event.OfferingCreatedEvent) error {
	off := ev.Offering
	iri := vocabulary.ResourceIRI(off.ID)

	if err := p.requireCategory(ctx, off.CategoryURI); err != nil {
		return err
	}
	if err := p.materializeFieldAnnotations(ctx, off.CategoryURI, append(off.Inputs, off.Outputs...)); err != nil {
		return err
	}

	triples := []store.Triple{
		store.T(iri, vocabulary.PropType, store.IRI(vocabulary.ClassOffering)),
		store.T(iri, vocabulary.PropOfferingID, store.Text(off.ID)),
		store.T(iri, vocabulary.PropName, store.Text(off.Name)),
		store.T(iri, vocabulary.PropCategory, store.IRI(off.CategoryURI)),
		store.T(iri, vocabulary.PropIsProvidedBy, store.IRI(vocabulary.ResourceIRI(off.ProviderID))),
	}
	triples = append(triples, expandActivation(iri, off.Activation)...)
	triples = append(triples, expandEndpoints(iri, off.Endpoints)...)
	triples = append(triples, expandLicense(iri, off.License)...)
	triples = append(triples, expandPrice(iri, off.Price)...)
	triples = append(triples, expandSpatialExtent(iri, off.SpatialExtent)...)
	triples = append(triples, expandTemporalExtent(iri, off.TemporalExtent)...)
	triples = append(triples, expandDataFields(iri, vocabulary.PropHasInput, vocabulary.PropHasFlattenedInput, off.Inputs)...)
	triples = append(triples, expandDataFields(iri, vocabulary.PropHasOutput, vocabulary.PropHasFlattenedOutput, off.Outputs)...)
	triples = append(triples, expandAccessWhiteList(iri, off.AccessWhiteList)...)

	return p.upsert(ctx, store.GraphOfferings, triples)
}

// HandleOfferingDeleted removes the offering and every exclusively owned
// sub-resource. Shared nodes (category, annotations, provider) are reachable
// from the offering but not owned by it, so they survive.
func (p *Projector) HandleOfferingDeleted(ctx context.Context, ev event.DeletedEvent) error {
	return p.cascadeDelete(ctx, vocabulary.ResourceIRI(ev.ID))
}

// HandleOfferingNameChanged swaps the offering's name triple.
func (p *Projector) HandleOfferingNameChanged(ctx context.Context, ev event.NameChangedEvent) error {
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropName, store.Text(ev.Name))
}

// HandleOfferingCategoryChanged re-tags the offering. The new category must
// exist.
func (p *Projector) HandleOfferingCategoryChanged(ctx context.Context, ev event.CategoryChangedEvent) error {
	if err := p.requireCategory(ctx, ev.CategoryURI); err != nil {
		return err
	}
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropCategory, store.IRI(ev.CategoryURI))
}

// HandleOfferingEndpointsChanged replaces the whole endpoint set.
func (p *Projector) HandleOfferingEndpointsChanged(ctx context.Context, ev event.EndpointsChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.deleteOwned(ctx, iri, vocabulary.PropEndpoint); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, expandEndpoints(iri, ev.Endpoints))
}

// HandleOfferingInputsChanged replaces the whole input field set, flattened
// edges included.
func (p *Projector) HandleOfferingInputsChanged(ctx context.Context, ev event.DataChangedEvent) error {
	return p.replaceDataFields(ctx, vocabulary.ResourceIRI(ev.ID),
		vocabulary.PropHasInput, vocabulary.PropHasFlattenedInput, ev.Fields)
}

// HandleOfferingOutputsChanged replaces the whole output field set.
func (p *Projector) HandleOfferingOutputsChanged(ctx context.Context, ev event.DataChangedEvent) error {
	return p.replaceDataFields(ctx, vocabulary.ResourceIRI(ev.ID),
		vocabulary.PropHasOutput, vocabulary.PropHasFlattenedOutput, ev.Fields)
}

// HandleOfferingSpatialExtentChanged replaces the region sub-resource.
func (p *Projector) HandleOfferingSpatialExtentChanged(ctx context.Context, ev event.SpatialExtentChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.deleteOwned(ctx, iri, vocabulary.PropSpatialCoverage); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, expandSpatialExtent(iri, ev.Extent))
}

// HandleOfferingTemporalExtentChanged replaces the validity window.
func (p *Projector) HandleOfferingTemporalExtentChanged(ctx context.Context, ev event.TemporalExtentChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	for _, prop := range []string{vocabulary.PropValidFrom, vocabulary.PropValidThrough} {
		if err := p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: iri, Predicate: prop}); err != nil {
			return err
		}
	}
	return p.upsert(ctx, store.GraphOfferings, expandTemporalExtent(iri, ev.Extent))
}

// HandleOfferingLicenseChanged replaces the license sub-resource.
func (p *Projector) HandleOfferingLicenseChanged(ctx context.Context, ev event.LicenseChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.deleteOwned(ctx, iri, vocabulary.PropLicense); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, expandLicense(iri, ev.License))
}

// HandleOfferingPriceChanged replaces the price sub-resource.
func (p *Projector) HandleOfferingPriceChanged(ctx context.Context, ev event.PriceChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.deleteOwned(ctx, iri, vocabulary.PropPriceSpecification); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, expandPrice(iri, ev.Price))
}

// HandleOfferingActivationChanged swaps status and expiration together.
func (p *Projector) HandleOfferingActivationChanged(ctx context.Context, ev event.ActivationChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	for _, prop := range []string{vocabulary.PropIsActivated, vocabulary.PropExpirationTime} {
		if err := p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: iri, Predicate: prop}); err != nil {
			return err
		}
	}
	return p.upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T(iri, vocabulary.PropIsActivated, store.Boolean(ev.Status)),
		store.T(iri, vocabulary.PropExpirationTime, store.Int(ev.ExpirationTime)),
	})
}

// HandleOfferingAccessWhiteListChanged replaces the whitelist edges.
func (p *Projector) HandleOfferingAccessWhiteListChanged(ctx context.Context, ev event.AccessWhiteListChangedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: iri, Predicate: vocabulary.PropIsAccessedBy}); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, expandAccessWhiteList(iri, ev.AccessWhiteList))
}

// HandleQueryCreated expands the payload into the query sub-graph. A query
// may omit its category; when present it must exist.
func (p *Projector) HandleQueryCreated(ctx context.Context, ev event.QueryCreatedEvent) error {
	q := ev.Query
	iri := vocabulary.ResourceIRI(q.ID)

	if q.CategoryURI != "" {
		if err := p.requireCategory(ctx, q.CategoryURI); err != nil {
			return err
		}
		if err := p.materializeFieldAnnotations(ctx, q.CategoryURI, append(q.Inputs, q.Outputs...)); err != nil {
			return err
		}
	}

	triples := []store.Triple{
		store.T(iri, vocabulary.PropType, store.IRI(vocabulary.ClassOfferingQuery)),
		store.T(iri, vocabulary.PropQueryID, store.Text(q.ID)),
		store.T(iri, vocabulary.PropName, store.Text(q.Name)),
		store.T(iri, vocabulary.PropIsRegisteredBy, store.IRI(vocabulary.ResourceIRI(q.ConsumerID))),
	}
	if q.CategoryURI != "" {
		triples = append(triples, store.T(iri, vocabulary.PropCategory, store.IRI(q.CategoryURI)))
	}
	if q.License != nil {
		triples = append(triples, expandLicense(iri, *q.License)...)
	}
	if q.Price != nil {
		triples = append(triples, expandPrice(iri, *q.Price)...)
	}
	triples = append(triples, expandSpatialExtent(iri, q.SpatialExtent)...)
	triples = append(triples, expandTemporalExtent(iri, q.TemporalExtent)...)
	triples = append(triples, expandDataFields(iri, vocabulary.PropHasInput, vocabulary.PropHasFlattenedInput, q.Inputs)...)
	triples = append(triples, expandDataFields(iri, vocabulary.PropHasOutput, vocabulary.PropHasFlattenedOutput, q.Outputs)...)

	return p.upsert(ctx, store.GraphOfferings, triples)
}

// HandleQueryDeleted removes the query and its owned sub-resources.
func (p *Projector) HandleQueryDeleted(ctx context.Context, ev event.DeletedEvent) error {
	return p.cascadeDelete(ctx, vocabulary.ResourceIRI(ev.ID))
}

// HandleQueryNameChanged swaps the query's name triple.
func (p *Projector) HandleQueryNameChanged(ctx context.Context, ev event.NameChangedEvent) error {
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropName, store.Text(ev.Name))
}

// HandleQueryCategoryChanged re-tags the query.
func (p *Projector) HandleQueryCategoryChanged(ctx context.Context, ev event.CategoryChangedEvent) error {
	if err := p.requireCategory(ctx, ev.CategoryURI); err != nil {
		return err
	}
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropCategory, store.IRI(ev.CategoryURI))
}

// HandleQueryInputsChanged replaces the query's input field set.
func (p *Projector) HandleQueryInputsChanged(ctx context.Context, ev event.DataChangedEvent) error {
	return p.replaceDataFields(ctx, vocabulary.ResourceIRI(ev.ID),
		vocabulary.PropHasInput, vocabulary.PropHasFlattenedInput, ev.Fields)
}

// HandleQueryOutputsChanged replaces the query's output field set.
func (p *Projector) HandleQueryOutputsChanged(ctx context.Context, ev event.DataChangedEvent) error {
	return p.replaceDataFields(ctx, vocabulary.ResourceIRI(ev.ID),
		vocabulary.PropHasOutput, vocabulary.PropHasFlattenedOutput, ev.Fields)
}

// HandleQuerySpatialExtentChanged replaces the query's region.
func (p *Projector) HandleQuerySpatialExtentChanged(ctx context.Context, ev event.SpatialExtentChangedEvent) error {
	return p.HandleOfferingSpatialExtentChanged(ctx, ev)
}

// HandleQueryTemporalExtentChanged replaces the query's validity window.
func (p *Projector) HandleQueryTemporalExtentChanged(ctx context.Context, ev event.TemporalExtentChangedEvent) error {
	return p.HandleOfferingTemporalExtentChanged(ctx, ev)
}

// HandleQueryLicenseChanged replaces the query's license constraint.
func (p *Projector) HandleQueryLicenseChanged(ctx context.Context, ev event.LicenseChangedEvent) error {
	return p.HandleOfferingLicenseChanged(ctx, ev)
}

// HandleQueryPriceChanged replaces the query's price ceiling.
func (p *Projector) HandleQueryPriceChanged(ctx context.Context, ev event.PriceChangedEvent) error {
	return p.HandleOfferingPriceChanged(ctx, ev)
}

// requireCategory fails the whole operation before any write when the
// referenced category is unknown.
func (p *Projector) requireCategory(ctx context.Context, uri string) error {
	ok, err := p.tax.HasCategory(ctx, uri)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WrapInvalid(errors.ErrUnknownCategory, "projector", "requireCategory", uri)
	}
	return nil
}

// materializeFieldAnnotations auto-materializes every transitively
// referenced annotation that is not yet declared, as a proposed annotation
// attached to the referencing category. Already-declared URIs are the
// idempotent no-op case.
func (p *Projector) materializeFieldAnnotations(ctx context.Context, categoryURI string, fields []semantic.DataField) error {
	seen := make(map[string]bool)
	for _, field := range fields {
		for _, annURI := range field.ReferencedAnnotations() {
			if seen[annURI] {
				continue
			}
			seen[annURI] = true
			ref := semantic.AnnotationRef{URI: annURI, Label: fieldLabel(field, annURI)}
			if err := p.proposeAnnotation(ctx, categoryURI, ref); err != nil && !errors.IsDuplicateProposed(err) {
				return err
			}
		}
	}
	return nil
}

// fieldLabel picks a label for an auto-materialized annotation: the field's
// own name when it is the directly referenced annotation, otherwise the IRI
// local name.
func fieldLabel(field semantic.DataField, annURI string) string {
	if field.Annotation.URI == annURI && field.Name != "" {
		return field.Name
	}
	return localName(annURI)
}

func localName(uri string) string {
	for _, sep := range []string{"#", "/", ":"} {
		if idx := strings.LastIndex(uri, sep); idx >= 0 && idx < len(uri)-1 {
			return uri[idx+1:]
		}
	}
	return uri
}

// replaceLiteral is the single-valued delete-then-insert shape.
func (p *Projector) replaceLiteral(ctx context.Context, subject, predicate string, value store.Term) error {
	if err := p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: subject, Predicate: predicate}); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, []store.Triple{store.T(subject, predicate, value)})
}

// replaceDataFields is whole-field replace for inputs or outputs: the edge
// set, the owned field nodes, and the flattened index edges all go before
// the replacement is written.
func (p *Projector) replaceDataFields(ctx context.Context, ownerIRI, edgeProp, flattenedProp string, fields []semantic.DataField) error {
	if err := p.deleteOwned(ctx, ownerIRI, edgeProp); err != nil {
		return err
	}
	if err := p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: ownerIRI, Predicate: flattenedProp}); err != nil {
		return err
	}
	return p.upsert(ctx, store.GraphOfferings, expandDataFields(ownerIRI, edgeProp, flattenedProp, fields))
}

// deleteOwned removes the edge triples for one predicate plus the owned
// sub-resource nodes they point to, members included.
func (p *Projector) deleteOwned(ctx context.Context, ownerIRI, edgeProp string) error {
	edges, err := p.store.Query(ctx, store.Pattern{Subject: ownerIRI, Predicate: edgeProp}, store.GraphOfferings)
	if err != nil {
		p.metrics.ObserveStoreError("projector")
		return errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "deleteOwned", err.Error())
	}
	for _, edge := range edges {
		if !edge.Object.IsIRI() || !strings.HasPrefix(edge.Object.Str, ownerIRI) {
			continue
		}
		if err := p.deleteSubtree(ctx, edge.Object.Str); err != nil {
			return err
		}
	}
	return p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: ownerIRI, Predicate: edgeProp})
}

// deleteSubtree removes a sub-resource node and, recursively, the owned
// nodes under it (object members, geometry).
func (p *Projector) deleteSubtree(ctx context.Context, nodeIRI string) error {
	triples, err := p.store.Query(ctx, store.Pattern{Subject: nodeIRI}, store.GraphOfferings)
	if err != nil {
		p.metrics.ObserveStoreError("projector")
		return errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "deleteSubtree", err.Error())
	}
	for _, t := range triples {
		if t.Object.IsIRI() && strings.HasPrefix(t.Object.Str, nodeIRI) && t.Object.Str != nodeIRI {
			if err := p.deleteSubtree(ctx, t.Object.Str); err != nil {
				return err
			}
		}
	}
	return p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: nodeIRI})
}

// cascadeDelete removes a resource and every node whose IRI marks it as
// exclusively owned (derived from the owner's IRI). Shared nodes referenced
// by IRI survive.
func (p *Projector) cascadeDelete(ctx context.Context, iri string) error {
	triples, err := p.store.Construct(ctx, store.Pattern{Subject: iri}, store.GraphOfferings)
	if err != nil {
		p.metrics.ObserveStoreError("projector")
		return errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "cascadeDelete", err.Error())
	}
	deleted := make(map[string]bool)
	for _, t := range triples {
		subject := t.Subject
		if subject != iri && !strings.HasPrefix(subject, iri) {
			continue
		}
		if deleted[subject] {
			continue
		}
		deleted[subject] = true
		if err := p.delete(ctx, store.GraphOfferings, store.Pattern{Subject: subject}); err != nil {
			return err
		}
	}
	return nil
}
