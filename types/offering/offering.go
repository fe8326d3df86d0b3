package offering

import (
	"github.com/c360/semexchange/types/semantic"
)

// Money is a price amount in a given currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Price combines a pricing model with its optional money component.
// Money is present iff the model is not FREE.
type Price struct {
	Model PricingModel `json:"pricingModel"`
	Money *Money       `json:"money,omitempty"`
}

// Free returns the canonical free price.
func Free() Price {
	return Price{Model: PriceFree, Money: &Money{Amount: 0.0, Currency: "EUR"}}
}

// Normalized applies the free-price rule: a FREE model forces amount 0.0 and
// currency EUR regardless of declared fields. Non-free prices pass through.
func (p Price) Normalized() Price {
	if p.Model == PriceFree {
		return Free()
	}
	return p
}

// Amount returns the price amount, 0.0 when no money component is present.
func (p Price) Amount() float64 {
	if p.Money == nil {
		return 0.0
	}
	return p.Money.Amount
}

// Currency returns the price currency, "" when no money component is present.
func (p Price) Currency() string {
	if p.Money == nil {
		return ""
	}
	return p.Money.Currency
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is an axis-aligned box between two corner points.
// Corners may arrive in any order; Normalize orients L1 to the lower-left.
type BoundingBox struct {
	L1 Point `json:"l1"`
	L2 Point `json:"l2"`
}

// Normalized returns the box with L1 at the minimum corner and L2 at the
// maximum corner.
func (b BoundingBox) Normalized() BoundingBox {
	out := b
	if out.L1.Lat > out.L2.Lat {
		out.L1.Lat, out.L2.Lat = out.L2.Lat, out.L1.Lat
	}
	if out.L1.Lng > out.L2.Lng {
		out.L1.Lng, out.L2.Lng = out.L2.Lng, out.L1.Lng
	}
	return out
}

// Intersects reports whether two boxes overlap, touching edges included.
func (b BoundingBox) Intersects(other BoundingBox) bool {
	a, o := b.Normalized(), other.Normalized()
	return a.L1.Lat <= o.L2.Lat && o.L1.Lat <= a.L2.Lat &&
		a.L1.Lng <= o.L2.Lng && o.L1.Lng <= a.L2.Lng
}

// SpatialExtent is a city label with an optional bounding box.
type SpatialExtent struct {
	City     string       `json:"city"`
	Boundary *BoundingBox `json:"boundary,omitempty"`
}

// TemporalExtent is a validity window in epoch milliseconds.
// The zero value on either side means unbounded on that side.
type TemporalExtent struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Overlaps reports whether the extent intersects the window [from, to],
// honoring the 0-sentinel on either side of the stored extent.
func (te TemporalExtent) Overlaps(from, to int64) bool {
	startsInTime := te.From == 0 || te.From <= to
	endsInTime := te.To == 0 || te.To >= from
	return startsInTime && endsInTime
}

// Endpoint is one access point of an offering.
type Endpoint struct {
	URI             string              `json:"uri"`
	EndpointType    EndpointType        `json:"endpointType"`
	AccessInterface AccessInterfaceType `json:"accessInterfaceType"`
}

// Activation pairs the activation status with its expiration time.
// The two fields are always present together.
type Activation struct {
	Status         bool  `json:"status"`
	ExpirationTime int64 `json:"expirationTime"`
}

// Offering is a published endpoint with its semantic, spatial, temporal,
// price, and license metadata.
type Offering struct {
	ID              string               `json:"id"`
	ProviderID      string               `json:"providerId"`
	Name            string               `json:"name"`
	CategoryURI     string               `json:"categoryUri"`
	Endpoints       []Endpoint           `json:"endpoints,omitempty"`
	Inputs          []semantic.DataField `json:"inputs,omitempty"`
	Outputs         []semantic.DataField `json:"outputs,omitempty"`
	SpatialExtent   *SpatialExtent       `json:"spatialExtent,omitempty"`
	TemporalExtent  *TemporalExtent      `json:"temporalExtent,omitempty"`
	Price           Price                `json:"price"`
	License         License              `json:"license"`
	Activation      Activation           `json:"activation"`
	AccessWhiteList []string             `json:"accessWhiteList,omitempty"`
}

// Query is a published discovery request: the same shape as an Offering
// minus endpoints, plus its subscriptions.
type Query struct {
	ID             string               `json:"id"`
	ConsumerID     string               `json:"consumerId"`
	Name           string               `json:"name"`
	CategoryURI    string               `json:"categoryUri,omitempty"`
	Inputs         []semantic.DataField `json:"inputs,omitempty"`
	Outputs        []semantic.DataField `json:"outputs,omitempty"`
	SpatialExtent  *SpatialExtent       `json:"spatialExtent,omitempty"`
	TemporalExtent *TemporalExtent      `json:"temporalExtent,omitempty"`
	Price          *Price               `json:"price,omitempty"`
	License        *License             `json:"license,omitempty"`
	Subscriptions  []string             `json:"subscriptions,omitempty"`
}
