// Package projector turns domain events into idempotent graph deltas.
// Creation events expand their payload into a sub-graph in one upsert;
// field-change events delete the owned sub-resource by pattern and insert
// the replacement; structural taxonomy mutations additionally refresh the
// taxonomy snapshot before the handler returns.
package projector

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/metric"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/taxonomy"
	"github.com/c360/semexchange/types/event"
)

// Projector applies domain events to the graph store. Handlers are safe to
// replay: deterministic sub-resource IRIs plus the store's set semantics
// make a second application of the same event a no-op.
type Projector struct {
	log     *slog.Logger
	store   store.Store
	tax     *taxonomy.Projection
	metrics *metric.Metrics
}

// New creates a projector writing to st and keeping tax in sync. metrics
// may be nil.
func New(st store.Store, tax *taxonomy.Projection, log *slog.Logger, metrics *metric.Metrics) *Projector {
	return &Projector{
		log:     log.With("component", "projector"),
		store:   st,
		tax:     tax,
		metrics: metrics,
	}
}

// Apply decodes a raw event payload and dispatches it to the handler for
// its type. Unknown types fail with ErrUnknownEvent.
func (p *Projector) Apply(ctx context.Context, evtType event.Type, payload []byte) error {
	start := time.Now()
	err := p.dispatch(ctx, evtType, payload)
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.ObserveEvent(string(evtType), status, time.Since(start))
	if err != nil {
		p.log.Error("event projection failed", "event_type", evtType, "error", err)
		return err
	}
	p.log.Debug("event projected", "event_type", evtType, "elapsed", time.Since(start))
	return nil
}

func (p *Projector) dispatch(ctx context.Context, evtType event.Type, payload []byte) error {
	switch evtType {
	case event.OrganizationCreated:
		return decodeThen(ctx, payload, p.HandleOrganizationCreated)
	case event.OrganizationNameChanged:
		return decodeThen(ctx, payload, p.HandleOrganizationNameChanged)
	case event.ProviderCreated:
		return decodeThen(ctx, payload, p.HandleProviderCreated)
	case event.ProviderNameChanged:
		return decodeThen(ctx, payload, p.HandleProviderNameChanged)
	case event.ProviderDeleted:
		return decodeThen(ctx, payload, p.HandleProviderDeleted)
	case event.ConsumerCreated:
		return decodeThen(ctx, payload, p.HandleConsumerCreated)
	case event.ConsumerNameChanged:
		return decodeThen(ctx, payload, p.HandleConsumerNameChanged)
	case event.ConsumerDeleted:
		return decodeThen(ctx, payload, p.HandleConsumerDeleted)
	case event.OfferingCreated:
		return decodeThen(ctx, payload, p.HandleOfferingCreated)
	case event.OfferingDeleted:
		return decodeThen(ctx, payload, p.HandleOfferingDeleted)
	case event.OfferingNameChanged:
		return decodeThen(ctx, payload, p.HandleOfferingNameChanged)
	case event.OfferingCategoryChanged:
		return decodeThen(ctx, payload, p.HandleOfferingCategoryChanged)
	case event.OfferingEndpointsChanged:
		return decodeThen(ctx, payload, p.HandleOfferingEndpointsChanged)
	case event.OfferingInputsChanged:
		return decodeThen(ctx, payload, p.HandleOfferingInputsChanged)
	case event.OfferingOutputsChanged:
		return decodeThen(ctx, payload, p.HandleOfferingOutputsChanged)
	case event.OfferingSpatialExtentChanged:
		return decodeThen(ctx, payload, p.HandleOfferingSpatialExtentChanged)
	case event.OfferingTemporalExtentChanged:
		return decodeThen(ctx, payload, p.HandleOfferingTemporalExtentChanged)
	case event.OfferingLicenseChanged:
		return decodeThen(ctx, payload, p.HandleOfferingLicenseChanged)
	case event.OfferingPriceChanged:
		return decodeThen(ctx, payload, p.HandleOfferingPriceChanged)
	case event.OfferingActivated, event.OfferingDeactivated:
		return decodeThen(ctx, payload, p.HandleOfferingActivationChanged)
	case event.OfferingAccessWhiteListChanged:
		return decodeThen(ctx, payload, p.HandleOfferingAccessWhiteListChanged)
	case event.QueryCreated:
		return decodeThen(ctx, payload, p.HandleQueryCreated)
	case event.QueryDeleted:
		return decodeThen(ctx, payload, p.HandleQueryDeleted)
	case event.QueryNameChanged:
		return decodeThen(ctx, payload, p.HandleQueryNameChanged)
	case event.QueryCategoryChanged:
		return decodeThen(ctx, payload, p.HandleQueryCategoryChanged)
	case event.QueryInputsChanged:
		return decodeThen(ctx, payload, p.HandleQueryInputsChanged)
	case event.QueryOutputsChanged:
		return decodeThen(ctx, payload, p.HandleQueryOutputsChanged)
	case event.QuerySpatialExtentChanged:
		return decodeThen(ctx, payload, p.HandleQuerySpatialExtentChanged)
	case event.QueryTemporalExtentChanged:
		return decodeThen(ctx, payload, p.HandleQueryTemporalExtentChanged)
	case event.QueryLicenseChanged:
		return decodeThen(ctx, payload, p.HandleQueryLicenseChanged)
	case event.QueryPriceChanged:
		return decodeThen(ctx, payload, p.HandleQueryPriceChanged)
	case event.SubscriptionCreated:
		return decodeThen(ctx, payload, p.HandleSubscriptionCreated)
	case event.SubscriptionDeleted:
		return decodeThen(ctx, payload, p.HandleSubscriptionDeleted)
	case event.CategoryCreated:
		return decodeThen(ctx, payload, p.HandleCategoryCreated)
	case event.CategoryNameChanged:
		return decodeThen(ctx, payload, p.HandleCategoryNameChanged)
	case event.CategoryParentChanged:
		return decodeThen(ctx, payload, p.HandleCategoryParentChanged)
	case event.CategoryDeprecated:
		return decodeThen(ctx, payload, p.HandleCategoryDeprecated)
	case event.CategoryUndeprecated:
		return decodeThen(ctx, payload, p.HandleCategoryUndeprecated)
	case event.InputTypeAdded, event.OutputTypeAdded:
		return decodeThen(ctx, payload, p.HandleTypeAdded)
	case event.AnnotationDeprecated:
		return decodeThen(ctx, payload, p.HandleAnnotationDeprecated)
	case event.AnnotationUndeprecated:
		return decodeThen(ctx, payload, p.HandleAnnotationUndeprecated)
	default:
		return errors.WrapInvalid(errors.ErrUnknownEvent, "projector", "Apply", string(evtType))
	}
}

// decodeThen unmarshals the payload into the handler's event type and
// invokes it.
func decodeThen[E any](ctx context.Context, payload []byte, handle func(context.Context, E) error) error {
	var ev E
	if err := json.Unmarshal(payload, &ev); err != nil {
		return errors.WrapInvalid(errors.ErrParsingFailed, "projector", "Apply", err.Error())
	}
	return handle(ctx, ev)
}

// upsert writes triples recording store faults against the projector.
func (p *Projector) upsert(ctx context.Context, graphID string, triples []store.Triple) error {
	if err := p.store.Upsert(ctx, graphID, triples); err != nil {
		p.metrics.ObserveStoreError("projector")
		return errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "upsert", err.Error())
	}
	return nil
}

// delete removes triples recording store faults against the projector.
func (p *Projector) delete(ctx context.Context, graphID string, pattern store.Pattern) error {
	if err := p.store.Delete(ctx, graphID, pattern); err != nil {
		p.metrics.ObserveStoreError("projector")
		return errors.WrapTransient(errors.ErrStoreUnavailable, "projector", "delete", err.Error())
	}
	return nil
}

// refreshTaxonomy rebuilds the snapshot after a structural mutation. It runs
// synchronously inside the triggering handler so readers never observe the
// mutation without the refreshed snapshot for longer than the handler takes.
func (p *Projector) refreshTaxonomy(ctx context.Context) error {
	return p.tax.Refresh(ctx)
}
