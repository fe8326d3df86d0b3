package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semexchange/store"
)

func TestUpsertIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	triples := []store.Triple{
		store.T("urn:a", "urn:p", store.Text("x")),
		store.T("urn:a", "urn:q", store.Int(7)),
	}
	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, triples))
	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, triples))

	assert.Equal(t, 2, s.Len(store.GraphOfferings))
}

func TestDeleteByPattern(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T("urn:a", "urn:p", store.Text("x")),
		store.T("urn:a", "urn:q", store.Text("y")),
		store.T("urn:b", "urn:p", store.Text("z")),
	}))

	tests := []struct {
		name    string
		pattern store.Pattern
		want    int
	}{
		{"no match is not an error", store.Pattern{Subject: "urn:missing"}, 3},
		{"by subject and predicate", store.Pattern{Subject: "urn:a", Predicate: "urn:p"}, 2},
		{"by predicate across subjects", store.Pattern{Predicate: "urn:p"}, 1},
		{"whole subject", store.Pattern{Subject: "urn:a"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, s.Delete(ctx, store.GraphOfferings, tt.pattern))
			assert.Equal(t, tt.want, s.Len(store.GraphOfferings))
		})
	}
}

func TestQuerySpansGraphs(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T("urn:off1", "urn:label", store.Text("parking")),
	}))
	require.NoError(t, s.Upsert(ctx, store.GraphOntology, []store.Triple{
		store.T("urn:cat1", "urn:label", store.Text("mobility")),
	}))

	all, err := s.Query(ctx, store.Pattern{Predicate: "urn:label"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ontologyOnly, err := s.Query(ctx, store.Pattern{Predicate: "urn:label"}, store.GraphOntology)
	require.NoError(t, err)
	require.Len(t, ontologyOnly, 1)
	assert.Equal(t, "urn:cat1", ontologyOnly[0].Subject)
}

func TestAsk(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOntology, []store.Triple{
		store.T("urn:cat1", "urn:parent", store.IRI("urn:root")),
	}))

	ok, err := s.Ask(ctx, store.Pattern{Subject: "urn:cat1", Object: store.Obj(store.IRI("urn:root"))})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Ask(ctx, store.Pattern{Subject: "urn:cat1", Object: store.Obj(store.IRI("urn:other"))})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConstructFollowsIRIObjects(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOfferings, []store.Triple{
		store.T("urn:off1", "urn:hasPrice", store.IRI("urn:off1price")),
		store.T("urn:off1price", "urn:amount", store.Float(9.5)),
		store.T("urn:off1price", "urn:currency", store.Text("EUR")),
		store.T("urn:off2", "urn:hasPrice", store.IRI("urn:off2price")),
	}))

	sub, err := s.Construct(ctx, store.Pattern{Subject: "urn:off1"}, store.GraphOfferings)
	require.NoError(t, err)
	assert.Len(t, sub, 3)
	for _, triple := range sub {
		assert.NotEqual(t, "urn:off2", triple.Subject)
	}
}

func TestConstructSurvivesCycles(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, store.GraphOntology, []store.Triple{
		store.T("urn:a", "urn:next", store.IRI("urn:b")),
		store.T("urn:b", "urn:next", store.IRI("urn:a")),
	}))

	sub, err := s.Construct(ctx, store.Pattern{Subject: "urn:a"}, store.GraphOntology)
	require.NoError(t, err)
	assert.Len(t, sub, 2)
}

func TestCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Upsert(ctx, store.GraphOfferings, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Query(ctx, store.Pattern{})
	assert.ErrorIs(t, err, context.Canceled)
}
