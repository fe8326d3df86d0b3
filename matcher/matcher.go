// Package matcher resolves a query spec into the set of satisfying offering
// IDs. Each criterion runs as an independent filter; filters that were
// computed are intersected, absent criteria never narrow the result.
package matcher

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/metric"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/taxonomy"
	"github.com/c360/semexchange/types/offering"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// FieldRequirement asks for an offering field by annotation URI, with an
// optional exact value-kind constraint. KindUndefined means any kind.
type FieldRequirement struct {
	AnnotationURI string             `json:"annotationUri"`
	Kind          semantic.ValueKind `json:"kind,omitempty"`
}

// PriceConstraint caps the acceptable price. FREE offerings always satisfy
// it; otherwise the stored amount must not exceed Ceiling in the same
// currency. A currency mismatch is no match, never a conversion.
type PriceConstraint struct {
	Ceiling  float64 `json:"ceiling"`
	Currency string  `json:"currency"`
}

// QuerySpec is the matcher input. Nil or zero criteria apply no constraint.
type QuerySpec struct {
	CategoryURI     string                   `json:"categoryUri,omitempty"`
	RequiredInputs  []FieldRequirement       `json:"requiredInputs,omitempty"`
	RequiredOutputs []FieldRequirement       `json:"requiredOutputs,omitempty"`
	SpatialExtent   *offering.SpatialExtent  `json:"spatialExtent,omitempty"`
	TemporalExtent  *offering.TemporalExtent `json:"temporalExtent,omitempty"`
	Price           *PriceConstraint         `json:"price,omitempty"`
	License         *offering.License        `json:"license,omitempty"`
}

// Matcher answers offering discovery queries against the live graph.
// Matching is read-only and safe to run concurrently with projection.
type Matcher struct {
	log     *slog.Logger
	store   store.Store
	tax     *taxonomy.Projection
	metrics *metric.Metrics
	now     func() time.Time
}

// New creates a matcher reading st with the taxonomy projection tax.
// metrics may be nil.
func New(st store.Store, tax *taxonomy.Projection, log *slog.Logger, metrics *metric.Metrics) *Matcher {
	return &Matcher{
		log:     log.With("component", "matcher"),
		store:   st,
		tax:     tax,
		metrics: metrics,
		now:     time.Now,
	}
}

// MatchOfferings returns the IDs of the active offerings satisfying spec.
// The spatial, temporal and semantic filters run concurrently; an empty
// spatial or temporal result short-circuits the intersection to empty.
func (m *Matcher) MatchOfferings(ctx context.Context, spec QuerySpec) ([]string, error) {
	start := time.Now()
	ids, err := m.match(ctx, spec)
	status := "success"
	if err != nil {
		status = "error"
	}
	m.metrics.ObserveMatch(status, time.Since(start), len(ids))
	if err != nil {
		m.log.Error("match failed", "error", err)
		return nil, err
	}
	m.log.Debug("match served", "results", len(ids), "elapsed", time.Since(start))
	return ids, nil
}

func (m *Matcher) match(ctx context.Context, spec QuerySpec) ([]string, error) {
	var spatial, temporal, semanticSet map[string]bool
	runSpatial := spec.SpatialExtent != nil && spec.SpatialExtent.Boundary != nil
	runTemporal := spec.TemporalExtent != nil && (spec.TemporalExtent.From != 0 || spec.TemporalExtent.To != 0)

	g, gctx := errgroup.WithContext(ctx)
	if runSpatial {
		g.Go(func() error {
			var err error
			spatial, err = m.spatialFilter(gctx, *spec.SpatialExtent.Boundary)
			return err
		})
	}
	if runTemporal {
		g.Go(func() error {
			var err error
			temporal, err = m.temporalFilter(gctx, *spec.TemporalExtent)
			return err
		})
	}
	g.Go(func() error {
		var err error
		semanticSet, err = m.semanticFilter(gctx, spec)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if runSpatial && len(spatial) == 0 {
		return nil, nil
	}
	if runTemporal && len(temporal) == 0 {
		return nil, nil
	}

	result := semanticSet
	if runSpatial {
		result = intersect(result, spatial)
	}
	if runTemporal {
		result = intersect(result, temporal)
	}
	return m.resolveIDs(ctx, result)
}

// spatialFilter returns the offerings whose stored geometry intersects the
// query box. Offerings without geometry never intersect.
func (m *Matcher) spatialFilter(ctx context.Context, box offering.BoundingBox) (map[string]bool, error) {
	edges, err := m.query(ctx, store.Pattern{Predicate: vocabulary.PropSpatialCoverage})
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, edge := range edges {
		if !edge.Object.IsIRI() {
			continue
		}
		region, err := m.regionBox(ctx, edge.Object.Str)
		if err != nil {
			return nil, err
		}
		if region == nil {
			continue
		}
		if region.Intersects(box) {
			out[edge.Subject] = true
		}
	}
	return out, nil
}

func (m *Matcher) regionBox(ctx context.Context, regionIRI string) (*offering.BoundingBox, error) {
	triples, err := m.query(ctx, store.Pattern{Subject: regionIRI})
	if err != nil {
		return nil, err
	}
	var box offering.BoundingBox
	var bounds int
	for _, t := range triples {
		switch t.Predicate {
		case vocabulary.PropLowerBoundLat:
			box.L1.Lat = t.Object.Num
			bounds++
		case vocabulary.PropLowerBoundLng:
			box.L1.Lng = t.Object.Num
			bounds++
		case vocabulary.PropUpperBoundLat:
			box.L2.Lat = t.Object.Num
			bounds++
		case vocabulary.PropUpperBoundLng:
			box.L2.Lng = t.Object.Num
			bounds++
		}
	}
	if bounds < 4 {
		return nil, nil
	}
	return &box, nil
}

// temporalFilter returns the offerings whose validity window overlaps the
// query window. A missing bound on either side, query or stored, is
// unbounded on that side.
func (m *Matcher) temporalFilter(ctx context.Context, ext offering.TemporalExtent) (map[string]bool, error) {
	from := ext.From
	to := ext.To
	if to == 0 {
		to = math.MaxInt64
	}

	offerings, err := m.query(ctx, store.Pattern{
		Predicate: vocabulary.PropType,
		Object:    store.Obj(store.IRI(vocabulary.ClassOffering)),
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, t := range offerings {
		stored, err := m.storedExtent(ctx, t.Subject)
		if err != nil {
			return nil, err
		}
		// No stored extent means valid at all times.
		if stored == nil || stored.Overlaps(from, to) {
			out[t.Subject] = true
		}
	}
	return out, nil
}

func (m *Matcher) storedExtent(ctx context.Context, offeringIRI string) (*offering.TemporalExtent, error) {
	fromTriples, err := m.query(ctx, store.Pattern{Subject: offeringIRI, Predicate: vocabulary.PropValidFrom})
	if err != nil {
		return nil, err
	}
	toTriples, err := m.query(ctx, store.Pattern{Subject: offeringIRI, Predicate: vocabulary.PropValidThrough})
	if err != nil {
		return nil, err
	}
	if len(fromTriples) == 0 && len(toTriples) == 0 {
		return nil, nil
	}
	var ext offering.TemporalExtent
	if len(fromTriples) > 0 {
		ext.From = fromTriples[0].Object.Int
	}
	if len(toTriples) > 0 {
		ext.To = toTriples[0].Object.Int
	}
	return &ext, nil
}

// semanticFilter returns the active, unexpired offerings matching category
// closure, required fields, price ceiling, and license.
func (m *Matcher) semanticFilter(ctx context.Context, spec QuerySpec) (map[string]bool, error) {
	var closure map[string]bool
	if spec.CategoryURI != "" {
		var err error
		closure, err = m.tax.Descendants(ctx, spec.CategoryURI)
		if err != nil {
			if errors.Is(err, errors.ErrUnknownCategory) {
				// An unknown category matches nothing.
				return map[string]bool{}, nil
			}
			return nil, err
		}
	}

	offerings, err := m.query(ctx, store.Pattern{
		Predicate: vocabulary.PropType,
		Object:    store.Obj(store.IRI(vocabulary.ClassOffering)),
	})
	if err != nil {
		return nil, err
	}

	now := m.now().UnixMilli()
	out := make(map[string]bool)
	for _, t := range offerings {
		ok, err := m.offeringMatches(ctx, t.Subject, spec, closure, now)
		if err != nil {
			return nil, err
		}
		if ok {
			out[t.Subject] = true
		}
	}
	return out, nil
}

func (m *Matcher) offeringMatches(ctx context.Context, offeringIRI string, spec QuerySpec, closure map[string]bool, now int64) (bool, error) {
	sub, err := m.construct(ctx, offeringIRI)
	if err != nil {
		return false, err
	}
	view := indexSubgraph(offeringIRI, sub)

	if !view.activated || view.expiration < now {
		return false, nil
	}
	if closure != nil && !closure[view.category] {
		return false, nil
	}
	for _, req := range spec.RequiredInputs {
		if !view.satisfies(req, vocabulary.PropHasFlattenedInput, vocabulary.PropHasInput) {
			return false, nil
		}
	}
	for _, req := range spec.RequiredOutputs {
		if !view.satisfies(req, vocabulary.PropHasFlattenedOutput, vocabulary.PropHasOutput) {
			return false, nil
		}
	}
	if spec.Price != nil && !view.priceWithin(*spec.Price) {
		return false, nil
	}
	if spec.License != nil && view.license != spec.License.URI() {
		return false, nil
	}
	return true, nil
}

// resolveIDs maps matched offering IRIs to offering IDs, deduplicated and
// sorted for stable output.
func (m *Matcher) resolveIDs(ctx context.Context, matched map[string]bool) ([]string, error) {
	ids := make(map[string]bool, len(matched))
	for iri := range matched {
		triples, err := m.query(ctx, store.Pattern{Subject: iri, Predicate: vocabulary.PropOfferingID})
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			ids[t.Object.Str] = true
		}
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Matcher) query(ctx context.Context, pattern store.Pattern) ([]store.Triple, error) {
	triples, err := m.store.Query(ctx, pattern, store.GraphOfferings)
	if err != nil {
		m.metrics.ObserveStoreError("matcher")
		return nil, errors.WrapTransient(errors.ErrStoreUnavailable, "matcher", "query", err.Error())
	}
	return triples, nil
}

func (m *Matcher) construct(ctx context.Context, subject string) ([]store.Triple, error) {
	triples, err := m.store.Construct(ctx, store.Pattern{Subject: subject}, store.GraphOfferings)
	if err != nil {
		m.metrics.ObserveStoreError("matcher")
		return nil, errors.WrapTransient(errors.ErrStoreUnavailable, "matcher", "construct", err.Error())
	}
	return triples, nil
}

func intersect(a, b map[string]bool) map[string]bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[string]bool)
	for key := range a {
		if b[key] {
			out[key] = true
		}
	}
	return out
}
