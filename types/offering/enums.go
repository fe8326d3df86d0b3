// Package offering provides the instance-side domain types of the exchange:
// offerings, offering queries, prices, licenses, and spatial/temporal extents.
package offering

import (
	"encoding/json"

	"github.com/c360/semexchange/vocabulary"
)

// License is the usage license attached to an offering or requested by a
// query.
type License string

const (
	// LicenseCreativeCommons allows reuse under Creative Commons terms.
	LicenseCreativeCommons License = "CREATIVE_COMMONS"
	// LicenseOpenData allows unrestricted open-data reuse.
	LicenseOpenData License = "OPEN_DATA_LICENSE"
	// LicenseNonCommercial restricts reuse to non-commercial purposes.
	LicenseNonCommercial License = "NON_COMMERCIAL_DATA_LICENSE"
	// LicenseProjectInternal restricts reuse to project-internal use.
	LicenseProjectInternal License = "PROJECT_INTERNAL_USE_ONLY"
)

// String returns the string representation of the License.
func (l License) String() string { return string(l) }

// IsValid checks if the License is one of the defined constants.
func (l License) IsValid() bool {
	switch l {
	case LicenseCreativeCommons, LicenseOpenData, LicenseNonCommercial, LicenseProjectInternal:
		return true
	default:
		return false
	}
}

// URI returns the ontology individual identifying this license.
func (l License) URI() string {
	switch l {
	case LicenseCreativeCommons:
		return vocabulary.CoreNS + "creative_commons"
	case LicenseOpenData:
		return vocabulary.CoreNS + "open_data_license"
	case LicenseNonCommercial:
		return vocabulary.CoreNS + "non_commercial_data_lc"
	case LicenseProjectInternal:
		return vocabulary.CoreNS + "project_internal_use_only"
	default:
		return ""
	}
}

// LicenseFromURI resolves an ontology individual back to its License.
// Returns "" for unknown URIs.
func LicenseFromURI(uri string) License {
	for _, l := range []License{
		LicenseCreativeCommons, LicenseOpenData, LicenseNonCommercial, LicenseProjectInternal,
	} {
		if l.URI() == uri {
			return l
		}
	}
	return ""
}

// PricingModel describes how access to an offering is billed.
type PricingModel string

const (
	// PricePerAccess bills each access individually.
	PricePerAccess PricingModel = "PER_ACCESS"
	// PricePerMonth bills a flat monthly rate.
	PricePerMonth PricingModel = "PER_MONTH"
	// PricePerByte bills by transferred volume.
	PricePerByte PricingModel = "PER_BYTE"
	// PriceFree marks the offering as free of charge.
	PriceFree PricingModel = "FREE"
)

// String returns the string representation of the PricingModel.
func (pm PricingModel) String() string { return string(pm) }

// IsValid checks if the PricingModel is one of the defined constants.
func (pm PricingModel) IsValid() bool {
	switch pm {
	case PricePerAccess, PricePerMonth, PricePerByte, PriceFree:
		return true
	default:
		return false
	}
}

// URI returns the ontology individual identifying this pricing model.
func (pm PricingModel) URI() string {
	switch pm {
	case PricePerAccess:
		return vocabulary.CoreNS + "per_access_price"
	case PricePerMonth:
		return vocabulary.CoreNS + "per_month_price"
	case PricePerByte:
		return vocabulary.CoreNS + "per_byte_price"
	case PriceFree:
		return vocabulary.CoreNS + "free_price"
	default:
		return ""
	}
}

// PricingModelFromURI resolves an ontology individual back to its
// PricingModel. Returns "" for unknown URIs.
func PricingModelFromURI(uri string) PricingModel {
	for _, pm := range []PricingModel{PricePerAccess, PricePerMonth, PricePerByte, PriceFree} {
		if pm.URI() == uri {
			return pm
		}
	}
	return ""
}

// EndpointType describes the protocol flavor of an offering endpoint.
type EndpointType string

const (
	// EndpointHTTPGet serves the offering over HTTP GET.
	EndpointHTTPGet EndpointType = "HTTP_GET"
	// EndpointHTTPPost serves the offering over HTTP POST.
	EndpointHTTPPost EndpointType = "HTTP_POST"
	// EndpointWebSocket serves the offering over a WebSocket stream.
	EndpointWebSocket EndpointType = "WEBSOCKET"
)

// IsValid checks if the EndpointType is one of the defined constants.
func (et EndpointType) IsValid() bool {
	switch et {
	case EndpointHTTPGet, EndpointHTTPPost, EndpointWebSocket:
		return true
	default:
		return false
	}
}

// URI returns the ontology individual identifying this endpoint type.
func (et EndpointType) URI() string {
	switch et {
	case EndpointHTTPGet:
		return vocabulary.CoreNS + "http_get"
	case EndpointHTTPPost:
		return vocabulary.CoreNS + "http_post"
	case EndpointWebSocket:
		return vocabulary.CoreNS + "endpoint_socket"
	default:
		return ""
	}
}

// AccessInterfaceType describes how consumers integrate with an endpoint.
type AccessInterfaceType string

const (
	// AccessMarketplaceLib integrates via the marketplace client library.
	AccessMarketplaceLib AccessInterfaceType = "BIGIOT_LIB"
	// AccessExternal integrates via an external, self-managed client.
	AccessExternal AccessInterfaceType = "EXTERNAL"
)

// IsValid checks if the AccessInterfaceType is one of the defined constants.
func (at AccessInterfaceType) IsValid() bool {
	return at == AccessMarketplaceLib || at == AccessExternal
}

// URI returns the ontology individual identifying this access interface.
func (at AccessInterfaceType) URI() string {
	switch at {
	case AccessMarketplaceLib:
		return vocabulary.CoreNS + "ac_bigiot_lib"
	case AccessExternal:
		return vocabulary.CoreNS + "ac_external_lib"
	default:
		return ""
	}
}

// enumJSON round-trips a string enum while preserving unknown inputs, so a
// payload carrying a value this build does not know survives re-encoding.
func enumJSON[T ~string](v *T, data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = T(s)
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *License) UnmarshalJSON(data []byte) error { return enumJSON(l, data) }

// UnmarshalJSON implements json.Unmarshaler.
func (pm *PricingModel) UnmarshalJSON(data []byte) error { return enumJSON(pm, data) }

// UnmarshalJSON implements json.Unmarshaler.
func (et *EndpointType) UnmarshalJSON(data []byte) error { return enumJSON(et, data) }

// UnmarshalJSON implements json.Unmarshaler.
func (at *AccessInterfaceType) UnmarshalJSON(data []byte) error { return enumJSON(at, data) }
