package projector

import (
	"context"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/event"
	"github.com/c360/semexchange/vocabulary"
)

// HandleOrganizationCreated declares an organization node.
func (p *Projector) HandleOrganizationCreated(ctx context.Context, ev event.OrganizationCreatedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	return p.upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T(iri, vocabulary.PropType, store.IRI(vocabulary.ClassOrganization)),
		store.T(iri, vocabulary.PropOrganizationID, store.Text(ev.ID)),
		store.T(iri, vocabulary.PropName, store.Text(ev.Name)),
	})
}

// HandleOrganizationNameChanged renames an organization.
func (p *Projector) HandleOrganizationNameChanged(ctx context.Context, ev event.NameChangedEvent) error {
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropName, store.Text(ev.Name))
}

// HandleProviderCreated declares a provider inside its organization.
func (p *Projector) HandleProviderCreated(ctx context.Context, ev event.ProviderCreatedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	return p.upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T(iri, vocabulary.PropType, store.IRI(vocabulary.ClassProvider)),
		store.T(iri, vocabulary.PropProviderID, store.Text(ev.ID)),
		store.T(iri, vocabulary.PropName, store.Text(ev.Name)),
		store.T(iri, vocabulary.PropSourceOrganization, store.IRI(vocabulary.ResourceIRI(ev.OrganizationID))),
	})
}

// HandleProviderNameChanged renames a provider.
func (p *Projector) HandleProviderNameChanged(ctx context.Context, ev event.NameChangedEvent) error {
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropName, store.Text(ev.Name))
}

// HandleProviderDeleted removes the provider together with every offering
// it registered, each offering cascading to its own sub-resources.
func (p *Projector) HandleProviderDeleted(ctx context.Context, ev event.DeletedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.deleteRegistered(ctx, vocabulary.PropIsProvidedBy, iri); err != nil {
		return err
	}
	return p.cascadeDelete(ctx, iri)
}

// HandleConsumerCreated declares a consumer inside its organization.
func (p *Projector) HandleConsumerCreated(ctx context.Context, ev event.ConsumerCreatedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	return p.upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T(iri, vocabulary.PropType, store.IRI(vocabulary.ClassConsumer)),
		store.T(iri, vocabulary.PropConsumerID, store.Text(ev.ID)),
		store.T(iri, vocabulary.PropName, store.Text(ev.Name)),
		store.T(iri, vocabulary.PropSourceOrganization, store.IRI(vocabulary.ResourceIRI(ev.OrganizationID))),
	})
}

// HandleConsumerNameChanged renames a consumer.
func (p *Projector) HandleConsumerNameChanged(ctx context.Context, ev event.NameChangedEvent) error {
	return p.replaceLiteral(ctx, vocabulary.ResourceIRI(ev.ID), vocabulary.PropName, store.Text(ev.Name))
}

// HandleConsumerDeleted removes the consumer together with every query it
// registered.
func (p *Projector) HandleConsumerDeleted(ctx context.Context, ev event.DeletedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	if err := p.deleteRegistered(ctx, vocabulary.PropIsRegisteredBy, iri); err != nil {
		return err
	}
	return p.cascadeDelete(ctx, iri)
}

// HandleSubscriptionCreated links a query to the offering it subscribes to.
func (p *Projector) HandleSubscriptionCreated(ctx context.Context, ev event.SubscriptionCreatedEvent) error {
	iri := vocabulary.ResourceIRI(ev.ID)
	return p.upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T(iri, vocabulary.PropType, store.IRI(vocabulary.ClassSubscription)),
		store.T(iri, vocabulary.PropSubscriptionID, store.Text(ev.ID)),
		store.T(iri, vocabulary.PropSubscribeTo, store.IRI(vocabulary.ResourceIRI(ev.SubscribableID))),
		store.T(iri, vocabulary.PropSubscribedQuery, store.IRI(vocabulary.ResourceIRI(ev.SubscriberID))),
	})
}

// HandleSubscriptionDeleted removes the subscription node.
func (p *Projector) HandleSubscriptionDeleted(ctx context.Context, ev event.DeletedEvent) error {
	return p.cascadeDelete(ctx, vocabulary.ResourceIRI(ev.ID))
}

// deleteRegistered cascades deletion to every resource registered by the
// owner through the given predicate.
func (p *Projector) deleteRegistered(ctx context.Context, predicate, ownerIRI string) error {
	edges, err := p.store.Query(ctx, store.Pattern{
		Predicate: predicate,
		Object:    store.Obj(store.IRI(ownerIRI)),
	}, store.GraphOfferings)
	if err != nil {
		p.metrics.ObserveStoreError("projector")
		return errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "deleteRegistered", err.Error())
	}
	for _, edge := range edges {
		if err := p.cascadeDelete(ctx, edge.Subject); err != nil {
			return err
		}
	}
	return nil
}
