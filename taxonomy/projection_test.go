package taxonomy

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/store/memstore"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

const (
	catMobility = vocabulary.MobilityNS + "mobility"
	catParking  = vocabulary.MobilityNS + "parking"
	catProposed = vocabulary.MobilityNS + "chargingWip"
	annLatitude = vocabulary.SchemaNS + "latitude"
	annAddress  = vocabulary.SchemaNS + "address"
	annStreet   = vocabulary.SchemaNS + "streetAddress"
	annLocality = vocabulary.SchemaNS + "addressLocality"
)

func category(uri, label, parent string, proposed bool, expected ...string) []store.Triple {
	class := vocabulary.ClassCategory
	if proposed {
		class = vocabulary.ClassProposedCategory
	}
	triples := []store.Triple{
		store.T(uri, vocabulary.PropType, store.IRI(class)),
		store.T(uri, vocabulary.PropLabel, store.Text(label)),
	}
	if parent != "" {
		triples = append(triples, store.T(parent, vocabulary.PropNarrower, store.IRI(uri)))
	}
	for _, ann := range expected {
		triples = append(triples, store.T(uri, vocabulary.PropExpectedAnnotation, store.IRI(ann)))
	}
	return triples
}

func simpleAnnotation(uri, label, rangeURI string) []store.Triple {
	return []store.Triple{
		store.T(uri, vocabulary.PropType, store.IRI(vocabulary.ClassAnnotation)),
		store.T(uri, vocabulary.PropLabel, store.Text(label)),
		store.T(uri, vocabulary.PropRangeIncludes, store.IRI(rangeURI)),
	}
}

func seedOntology(t *testing.T, st store.Store, triples []store.Triple) {
	t.Helper()
	require.NoError(t, st.Upsert(context.Background(), store.GraphOntology, triples))
}

func newProjection(t *testing.T, st store.Store) *Projection {
	t.Helper()
	return New(st, slog.Default(), nil)
}

func baseOntology() []store.Triple {
	var triples []store.Triple
	triples = append(triples, category(vocabulary.RootCategory, "All Offerings", "", false)...)
	triples = append(triples, category(catMobility, "Mobility", vocabulary.RootCategory, false, annLatitude)...)
	triples = append(triples, category(catParking, "Parking", catMobility, false, annAddress)...)
	triples = append(triples, category(catProposed, "Charging (proposed)", catMobility, true)...)
	triples = append(triples, simpleAnnotation(annLatitude, "latitude", vocabulary.SchemaNS+"Number")...)
	triples = append(triples, simpleAnnotation(annAddress, "address", vocabulary.SchemaNS+"PostalAddress")...)
	return triples
}

func TestFindCategoryAssemblesSubtree(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)
	ctx := context.Background()

	mobility, err := p.FindCategory(ctx, catMobility)
	require.NoError(t, err)

	assert.Equal(t, "Mobility", mobility.Label)
	assert.Equal(t, vocabulary.RootCategory, mobility.Parent)
	require.Len(t, mobility.Children, 2)

	var parking semantic.Category
	for _, child := range mobility.Children {
		if child.URI == catParking {
			parking = child
		}
	}
	require.NotEmpty(t, parking.URI)
	// Inherited set: own declaration plus the ancestor's.
	assert.True(t, parking.HasExpected(annAddress))
	assert.True(t, parking.HasExpected(annLatitude))
	// The ancestor's set is a subset of every descendant's set.
	for _, ref := range mobility.Expected {
		assert.True(t, parking.HasExpected(ref.URI))
	}
}

func TestCategoryTreeFiltersProposed(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)
	ctx := context.Background()

	curated, err := p.CategoryTree(ctx, false)
	require.NoError(t, err)
	curated.Walk(func(c semantic.Category) bool {
		assert.False(t, c.Proposed, c.URI)
		return true
	})

	full, err := p.CategoryTree(ctx, true)
	require.NoError(t, err)
	found := false
	full.Walk(func(c semantic.Category) bool {
		if c.URI == catProposed {
			found = true
		}
		return true
	})
	assert.True(t, found)
}

func TestFindCategoryUnknown(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)

	_, err := p.FindCategory(context.Background(), vocabulary.MobilityNS+"nope")
	assert.ErrorIs(t, err, errors.ErrUnknownCategory)
}

func TestCycleIsTreeIntegrityViolation(t *testing.T) {
	st := memstore.New()
	triples := baseOntology()
	// parking -> mobility closes a narrower cycle.
	triples = append(triples, store.T(catParking, vocabulary.PropNarrower, store.IRI(catMobility)))
	seedOntology(t, st, triples)
	p := newProjection(t, st)

	_, err := p.FindCategory(context.Background(), catMobility)
	assert.ErrorIs(t, err, errors.ErrTreeIntegrity)
}

func TestAllCategoryURIs(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)

	uris, err := p.AllCategoryURIs(context.Background())
	require.NoError(t, err)
	assert.Contains(t, uris, vocabulary.RootCategory)
	assert.Contains(t, uris, catParking)
	assert.Contains(t, uris, catProposed)
}

func TestDescendants(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)

	got, err := p.Descendants(context.Background(), catMobility)
	require.NoError(t, err)
	assert.True(t, got[catMobility])
	assert.True(t, got[catParking])
	assert.False(t, got[vocabulary.RootCategory])
}

func TestFindAnnotationSimple(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)

	ann, err := p.FindAnnotation(context.Background(), annLatitude)
	require.NoError(t, err)
	assert.Equal(t, "latitude", ann.Label)
	assert.Equal(t, semantic.KindNumber, ann.Value.Kind)
	assert.True(t, ann.IsSimple())
}

func TestFindAnnotationObjectMembersOrdered(t *testing.T) {
	st := memstore.New()
	triples := baseOntology()
	triples = append(triples, simpleAnnotation(annStreet, "streetAddress", vocabulary.SchemaNS+"Text")...)
	triples = append(triples, simpleAnnotation(annLocality, "addressLocality", vocabulary.SchemaNS+"Text")...)

	member0 := vocabulary.OwnedIRI(annAddress, "member0")
	member1 := vocabulary.OwnedIRI(annAddress, "member1")
	triples = append(triples,
		store.T(annAddress, vocabulary.PropHasMember, store.IRI(member0)),
		store.T(annAddress, vocabulary.PropHasMember, store.IRI(member1)),
		store.T(member0, vocabulary.PropName, store.Text("street")),
		store.T(member0, vocabulary.PropRDFAnnotation, store.IRI(annStreet)),
		store.T(member0, vocabulary.PropIndex, store.Int(0)),
		store.T(member1, vocabulary.PropName, store.Text("locality")),
		store.T(member1, vocabulary.PropRDFAnnotation, store.IRI(annLocality)),
		store.T(member1, vocabulary.PropIndex, store.Int(1)),
	)
	seedOntology(t, st, triples)
	p := newProjection(t, st)

	ann, err := p.FindAnnotation(context.Background(), annAddress)
	require.NoError(t, err)
	require.Equal(t, semantic.KindObject, ann.Value.Kind)
	require.Len(t, ann.Value.Members, 2)
	assert.Equal(t, "street", ann.Value.Members[0].Name)
	assert.Equal(t, semantic.KindText, ann.Value.Members[0].Value.Kind)
	assert.Equal(t, "locality", ann.Value.Members[1].Name)
	assert.False(t, ann.IsSimple())
}

func TestAnnotationTree(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)

	anns, err := p.AnnotationTree(context.Background())
	require.NoError(t, err)
	require.Len(t, anns, 2)
	// Sorted by URI.
	assert.Equal(t, annAddress, anns[0].URI)
	assert.Equal(t, annLatitude, anns[1].URI)
}

func TestInvalidateTriggersRebuild(t *testing.T) {
	st := memstore.New()
	seedOntology(t, st, baseOntology())
	p := newProjection(t, st)
	ctx := context.Background()

	_, err := p.AllCategoryURIs(ctx)
	require.NoError(t, err)
	v1 := p.Version()

	newCat := vocabulary.MobilityNS + "bikeSharing"
	seedOntology(t, st, category(newCat, "Bike Sharing", catMobility, false))

	// Stale snapshot until invalidated.
	ok, err := p.HasCategory(ctx, newCat)
	require.NoError(t, err)
	assert.False(t, ok)

	p.Invalidate()
	ok, err = p.HasCategory(ctx, newCat)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Greater(t, p.Version(), v1)
}

func TestSynthesizedRoot(t *testing.T) {
	st := memstore.New()
	// Ontology with no declared root at all.
	seedOntology(t, st, category(catMobility, "Mobility", vocabulary.RootCategory, false))
	p := newProjection(t, st)

	root, err := p.CategoryTree(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, vocabulary.RootCategory, root.URI)
	assert.Equal(t, RootLabel, root.Label)
	require.Len(t, root.Children, 1)
	assert.Equal(t, catMobility, root.Children[0].URI)
}
