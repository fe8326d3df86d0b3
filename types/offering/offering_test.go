package offering

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLicenseURIRoundTrip(t *testing.T) {
	for _, l := range []License{
		LicenseCreativeCommons, LicenseOpenData, LicenseNonCommercial, LicenseProjectInternal,
	} {
		require.True(t, l.IsValid())
		require.NotEmpty(t, l.URI())
		assert.Equal(t, l, LicenseFromURI(l.URI()))
	}

	assert.Empty(t, License("SOMETHING_ELSE").URI())
	assert.Empty(t, LicenseFromURI("urn:unknown"))
}

func TestPricingModelURIRoundTrip(t *testing.T) {
	for _, pm := range []PricingModel{PricePerAccess, PricePerMonth, PricePerByte, PriceFree} {
		require.True(t, pm.IsValid())
		require.NotEmpty(t, pm.URI())
		assert.Equal(t, pm, PricingModelFromURI(pm.URI()))
	}
}

func TestEndpointAndAccessURIs(t *testing.T) {
	for _, et := range []EndpointType{EndpointHTTPGet, EndpointHTTPPost, EndpointWebSocket} {
		assert.True(t, et.IsValid())
		assert.NotEmpty(t, et.URI())
	}
	for _, at := range []AccessInterfaceType{AccessMarketplaceLib, AccessExternal} {
		assert.True(t, at.IsValid())
		assert.NotEmpty(t, at.URI())
	}
}

func TestEnumJSONPreservesUnknownValues(t *testing.T) {
	var l License
	require.NoError(t, json.Unmarshal([]byte(`"FUTURE_LICENSE"`), &l))
	assert.Equal(t, License("FUTURE_LICENSE"), l)
	assert.False(t, l.IsValid())

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `"FUTURE_LICENSE"`, string(data))
}

func TestPriceNormalized(t *testing.T) {
	declared := Price{
		Model: PriceFree,
		Money: &Money{Amount: 9.99, Currency: "USD"},
	}

	normalized := declared.Normalized()
	assert.Equal(t, 0.0, normalized.Amount())
	assert.Equal(t, "EUR", normalized.Currency())

	paid := Price{Model: PricePerAccess, Money: &Money{Amount: 0.25, Currency: "EUR"}}
	assert.Equal(t, paid, paid.Normalized())
}

func TestPriceAccessorsWithoutMoney(t *testing.T) {
	p := Price{Model: PricePerMonth}
	assert.Equal(t, 0.0, p.Amount())
	assert.Empty(t, p.Currency())
}

func TestBoundingBoxIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b BoundingBox
		want bool
	}{
		{
			name: "contained box",
			a:    BoundingBox{L1: Point{0, 0}, L2: Point{10, 10}},
			b:    BoundingBox{L1: Point{5, 5}, L2: Point{6, 6}},
			want: true,
		},
		{
			name: "disjoint boxes",
			a:    BoundingBox{L1: Point{0, 0}, L2: Point{10, 10}},
			b:    BoundingBox{L1: Point{50, 50}, L2: Point{60, 60}},
			want: false,
		},
		{
			name: "touching edge counts",
			a:    BoundingBox{L1: Point{0, 0}, L2: Point{10, 10}},
			b:    BoundingBox{L1: Point{10, 10}, L2: Point{20, 20}},
			want: true,
		},
		{
			name: "partial overlap",
			a:    BoundingBox{L1: Point{0, 0}, L2: Point{10, 10}},
			b:    BoundingBox{L1: Point{8, -5}, L2: Point{15, 5}},
			want: true,
		},
		{
			name: "swapped corners still intersect",
			a:    BoundingBox{L1: Point{10, 10}, L2: Point{0, 0}},
			b:    BoundingBox{L1: Point{6, 6}, L2: Point{5, 5}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersects(tt.b))
			assert.Equal(t, tt.want, tt.b.Intersects(tt.a))
		})
	}
}

func TestTemporalExtentOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		extent   TemporalExtent
		from, to int64
		want     bool
	}{
		{"window inside extent", TemporalExtent{From: 100, To: 200}, 150, 180, true},
		{"extent after window", TemporalExtent{From: 300, To: 400}, 150, 180, false},
		{"extent before window", TemporalExtent{From: 10, To: 20}, 150, 180, false},
		{"unbounded end", TemporalExtent{From: 100, To: 0}, 150, 180, true},
		{"unbounded start", TemporalExtent{From: 0, To: 160}, 150, 180, true},
		{"fully unbounded", TemporalExtent{}, 150, 180, true},
		{"touching boundary", TemporalExtent{From: 180, To: 300}, 150, 180, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.extent.Overlaps(tt.from, tt.to))
		})
	}
}
