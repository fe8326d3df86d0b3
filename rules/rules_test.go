package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/semexchange/types/offering"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// root -> mobility -> parking -> parkingSpaces
var testParents = map[string]string{
	"urn:mobility":      "urn:root",
	"urn:parking":       "urn:mobility",
	"urn:parkingSpaces": "urn:parking",
	"urn:weather":       "urn:root",
}

func TestAncestorClosure(t *testing.T) {
	closure := AncestorClosure(testParents)

	assert.Equal(t, []string{"urn:root"}, closure["urn:mobility"])
	assert.Equal(t, []string{"urn:parking", "urn:mobility", "urn:root"}, closure["urn:parkingSpaces"])
	assert.Empty(t, closure["urn:root"])
}

func TestAncestorClosureSurvivesCycle(t *testing.T) {
	parents := map[string]string{
		"urn:a": "urn:b",
		"urn:b": "urn:a",
	}
	closure := AncestorClosure(parents)
	// The chain truncates at the revisit instead of recursing forever.
	for _, ancestors := range closure {
		assert.LessOrEqual(t, len(ancestors), 2)
	}
}

func TestDescendants(t *testing.T) {
	got := Descendants(testParents, "urn:mobility")

	assert.Equal(t, map[string]bool{
		"urn:mobility":      true,
		"urn:parking":       true,
		"urn:parkingSpaces": true,
	}, got)
	assert.False(t, got["urn:weather"])
}

func TestInheritedAnnotationsIsAncestorUnion(t *testing.T) {
	declared := map[string][]string{
		"urn:root":     {"urn:ann:id"},
		"urn:mobility": {"urn:ann:location"},
		"urn:parking":  {"urn:ann:spaces", "urn:ann:id"},
	}
	inherited := InheritedAnnotations(testParents, declared)

	assert.Equal(t, []string{"urn:ann:spaces", "urn:ann:id", "urn:ann:location"}, inherited["urn:parking"])
	// A descendant's set is a superset of every ancestor's set.
	for _, ancestorAnn := range inherited["urn:mobility"] {
		assert.Contains(t, inherited["urn:parkingSpaces"], ancestorAnn)
	}
	assert.Equal(t, []string{"urn:ann:id"}, inherited["urn:root"])
}

func TestInheritedAnnotationsAfterReparent(t *testing.T) {
	declared := map[string][]string{
		"urn:mobility": {"urn:ann:location"},
		"urn:weather":  {"urn:ann:temperature"},
		"urn:parking":  {"urn:ann:spaces"},
	}
	before := InheritedAnnotations(testParents, declared)
	assert.Contains(t, before["urn:parking"], "urn:ann:location")
	assert.NotContains(t, before["urn:parking"], "urn:ann:temperature")

	reparented := map[string]string{}
	for child, parent := range testParents {
		reparented[child] = parent
	}
	reparented["urn:parking"] = "urn:weather"

	after := InheritedAnnotations(reparented, declared)
	assert.Contains(t, after["urn:parking"], "urn:ann:temperature")
	assert.NotContains(t, after["urn:parking"], "urn:ann:location")
	assert.Contains(t, after["urn:parking"], "urn:ann:spaces")
}

func TestNormalizePrice(t *testing.T) {
	free := NormalizePrice(offering.Price{
		Model: offering.PriceFree,
		Money: &offering.Money{Amount: 9.99, Currency: "USD"},
	})
	assert.Equal(t, 0.0, free.Amount())
	assert.Equal(t, "EUR", free.Currency())

	paid := NormalizePrice(offering.Price{
		Model: offering.PricePerAccess,
		Money: &offering.Money{Amount: 0.4, Currency: "EUR"},
	})
	assert.Equal(t, 0.4, paid.Amount())
}

func TestKindForRange(t *testing.T) {
	tests := []struct {
		rangeURI string
		want     semantic.ValueKind
	}{
		{vocabulary.SchemaNS + "Text", semantic.KindText},
		{vocabulary.SchemaNS + "URL", semantic.KindText},
		{vocabulary.SchemaNS + "Number", semantic.KindNumber},
		{vocabulary.SchemaNS + "Float", semantic.KindNumber},
		{vocabulary.SchemaNS + "Integer", semantic.KindInteger},
		{vocabulary.SchemaNS + "Boolean", semantic.KindBoolean},
		{vocabulary.SchemaNS + "DateTime", semantic.KindDateTime},
		{vocabulary.SchemaNS + "Date", semantic.KindDateTime},
		{vocabulary.MobilityNS + "parkingSite", semantic.KindObject},
		{"", semantic.KindUndefined},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindForRange(tt.rangeURI), tt.rangeURI)
	}
}
