// Package vocabulary provides the semantic vocabulary of the exchange:
// ontology namespaces, class and property IRIs, prefix expansion, and the
// fixed value-type tables used by the rule engine.
package vocabulary

// Namespace IRIs used across the exchange ontology.
const (
	CoreNS     = "http://schema.big-iot.org/core/"
	BaseNS     = "http://schema.big-iot.org/resources#"
	MobilityNS = "http://schema.big-iot.org/mobility/"
	SchemaNS   = "http://schema.org/"
	SKOSNS     = "http://www.w3.org/2004/02/skos/core#"
	RDFNS      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNS     = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNS      = "http://www.w3.org/2001/XMLSchema#"
	OWLNS      = "https://www.w3.org/2002/07/owl#"
	WGS84NS    = "http://www.w3.org/2003/01/geo/wgs84_pos#"
)

// Class IRIs.
const (
	ClassOrganization       = SchemaNS + "Organization"
	ClassProvider           = CoreNS + "Provider"
	ClassConsumer           = CoreNS + "Consumer"
	ClassOffering           = CoreNS + "Offering"
	ClassOfferingQuery      = CoreNS + "OfferingQuery"
	ClassSubscription       = CoreNS + "Subscription"
	ClassCategory           = CoreNS + "OfferingCategory"
	ClassProposedCategory   = CoreNS + "ProposedOfferingCategory"
	ClassAnnotation         = CoreNS + "DatatypeAnnotation"
	ClassProposedAnnotation = CoreNS + "ProposedDatatypeAnnotation"
	ClassEndpoint           = CoreNS + "Endpoint"
	ClassLicense            = CoreNS + "License"
	ClassPrice              = CoreNS + "Price"
	ClassRegion             = SchemaNS + "Region"
	ClassDataField          = CoreNS + "Data"
	ClassDataValue          = CoreNS + "DataValue"
	ClassObjectSchema       = CoreNS + "ObjectSchema"
)

// RootCategory is the fixed root of the offering taxonomy tree.
const RootCategory = "urn:big-iot:allOfferingsCategory"

// Property IRIs.
const (
	PropType               = RDFNS + "type"
	PropLabel              = RDFSNS + "label"
	PropOrganizationID     = CoreNS + "organizationId"
	PropProviderID         = CoreNS + "providerId"
	PropConsumerID         = CoreNS + "consumerId"
	PropOfferingID         = CoreNS + "offeringId"
	PropQueryID            = CoreNS + "queryId"
	PropSubscriptionID     = CoreNS + "subscriptionId"
	PropName               = SchemaNS + "name"
	PropCategory           = SchemaNS + "category"
	PropSourceOrganization = SchemaNS + "sourceOrganization"
	PropIsProvidedBy       = CoreNS + "isProvidedBy"
	PropOffering           = CoreNS + "offering"
	PropIsRegisteredBy     = CoreNS + "isRegisteredBy"
	PropIsActivated        = CoreNS + "isActivated"
	PropExpirationTime     = CoreNS + "offeringExpirationTime"
	PropEndpoint           = CoreNS + "endpoint"
	PropEndpointURL        = SchemaNS + "url"
	PropEndpointType       = CoreNS + "endpointType"
	PropAccessInterface    = CoreNS + "accessInterfaceType"
	PropLicense            = SchemaNS + "license"
	PropLicenseType        = CoreNS + "licenseType"
	PropPriceSpecification = SchemaNS + "priceSpecification"
	PropPricingModel       = CoreNS + "pricingModel"
	PropPriceCurrency      = SchemaNS + "priceCurrency"
	PropPriceAmount        = SchemaNS + "price"
	PropSpatialCoverage    = SchemaNS + "spatialCoverage"
	PropGeometry           = WGS84NS + "geometry"
	PropLowerBoundLat      = CoreNS + "lowerBoundLatitude"
	PropLowerBoundLng      = CoreNS + "lowerBoundLongitude"
	PropUpperBoundLat      = CoreNS + "upperBoundLatitude"
	PropUpperBoundLng      = CoreNS + "upperBoundLongitude"
	PropValidFrom          = SchemaNS + "validFrom"
	PropValidThrough       = SchemaNS + "validThrough"
	PropHasInput           = CoreNS + "hasInput"
	PropHasOutput          = CoreNS + "hasOutput"
	PropHasFlattenedInput  = CoreNS + "hasFlattenedInput"
	PropHasFlattenedOutput = CoreNS + "hasFlattenedOutput"
	PropRDFAnnotation      = CoreNS + "rdfAnnotation"
	PropValue              = CoreNS + "value"
	PropValueType          = CoreNS + "valueType"
	PropHasMember          = CoreNS + "hasMember"
	PropExpectedAnnotation = CoreNS + "expectedAnnotation"
	PropNarrower           = SKOSNS + "narrower"
	PropIsDeprecated       = CoreNS + "isDeprecated"
	PropIsAccessedBy       = CoreNS + "isAccessedBy"
	PropSubscribeTo        = CoreNS + "subscribeTo"
	PropSubscribedQuery    = CoreNS + "subscribedQuery"
	PropRangeIncludes      = SchemaNS + "rangeIncludes"
	PropDomainIncludes     = SchemaNS + "domainIncludes"
	PropIndex              = CoreNS + "index"
	PropRequired           = CoreNS + "isRequired"
	PropEncoding           = CoreNS + "encodingType"
)

// Value-type IRIs for tagged DataField value nodes.
const (
	ValueTypeText     = SchemaNS + "Text"
	ValueTypeNumber   = SchemaNS + "Number"
	ValueTypeInteger  = SchemaNS + "Integer"
	ValueTypeDateTime = SchemaNS + "DateTime"
	ValueTypeBoolean  = SchemaNS + "Boolean"
	ValueTypeObject   = SchemaNS + "Object"
)

// ResourceIRI builds the instance IRI for a marketplace resource ID.
// Resource IDs are opaque strings minted by the exchange; the IRI anchors
// them in the base namespace so instance data and ontology data never
// collide.
func ResourceIRI(id string) string {
	return BaseNS + id
}

// OwnedIRI builds the IRI of a sub-resource exclusively owned by its parent
// resource, such as an offering's price or license node. Owned IRIs are
// deterministic so that replayed creation events upsert the same nodes.
func OwnedIRI(parentIRI, kind string) string {
	return parentIRI + kind
}
