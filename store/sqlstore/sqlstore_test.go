package sqlstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semexchange/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	triples := []store.Triple{
		store.T("urn:a", "urn:p", store.Text("x")),
		store.T("urn:a", "urn:q", store.Float(1.5)),
	}
	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, triples))
	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, triples))

	got, err := s.Query(ctx, store.Pattern{Subject: "urn:a"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestTermsRoundTripThroughStorage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := []store.Triple{
		store.T("urn:a", "urn:iri", store.IRI("urn:b")),
		store.T("urn:a", "urn:text", store.Text("hello")),
		store.T("urn:a", "urn:num", store.Float(3.25)),
		store.T("urn:a", "urn:int", store.Int(1514764800000)),
		store.T("urn:a", "urn:bool", store.Boolean(true)),
	}
	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, in))

	got, err := s.Query(ctx, store.Pattern{Subject: "urn:a"})
	require.NoError(t, err)
	require.Len(t, got, len(in))
	for _, want := range in {
		found := false
		for _, g := range got {
			if g.Predicate == want.Predicate && g.Object.Equal(want.Object) {
				found = true
			}
		}
		assert.True(t, found, "missing %s", want)
	}
}

func TestDeleteAndAsk(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOntology, []store.Triple{
		store.T("urn:cat1", "urn:parent", store.IRI("urn:root")),
		store.T("urn:cat1", "urn:label", store.Text("mobility")),
	}))

	ok, err := s.Ask(ctx, store.Pattern{Subject: "urn:cat1", Predicate: "urn:parent"}, store.GraphOntology)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, store.GraphOntology, store.Pattern{Subject: "urn:cat1", Predicate: "urn:parent"}))

	ok, err = s.Ask(ctx, store.Pattern{Subject: "urn:cat1", Predicate: "urn:parent"}, store.GraphOntology)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Ask(ctx, store.Pattern{Subject: "urn:cat1", Predicate: "urn:label"}, store.GraphOntology)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestQueryRespectsGraphBoundary(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T("urn:off1", "urn:label", store.Text("parking")),
	}))
	require.NoError(t, s.Upsert(ctx, store.GraphOntology, []store.Triple{
		store.T("urn:cat1", "urn:label", store.Text("mobility")),
	}))

	got, err := s.Query(ctx, store.Pattern{Predicate: "urn:label"}, store.GraphOntology)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "urn:cat1", got[0].Subject)
}

func TestConstructExpandsFrontier(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T("urn:off1", "urn:hasPrice", store.IRI("urn:off1price")),
		store.T("urn:off1price", "urn:amount", store.Float(0)),
		store.T("urn:off2", "urn:label", store.Text("unrelated")),
	}))

	sub, err := s.Construct(ctx, store.Pattern{Subject: "urn:off1"}, store.GraphOfferings)
	require.NoError(t, err)
	assert.Len(t, sub, 2)
}
