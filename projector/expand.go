package projector

import (
	"fmt"

	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/offering"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// The expansion functions turn payload values into triples. Sub-resource
// IRIs are derived from the owner IRI so replaying a creation event rebuilds
// exactly the same nodes.

func expandEndpoints(ownerIRI string, endpoints []offering.Endpoint) []store.Triple {
	var triples []store.Triple
	for i, ep := range endpoints {
		node := vocabulary.OwnedIRI(ownerIRI, fmt.Sprintf("endpoint%d", i))
		triples = append(triples,
			store.T(ownerIRI, vocabulary.PropEndpoint, store.IRI(node)),
			store.T(node, vocabulary.PropType, store.IRI(vocabulary.ClassEndpoint)),
			store.T(node, vocabulary.PropEndpointURL, store.Text(ep.URI)),
		)
		if uri := ep.EndpointType.URI(); uri != "" {
			triples = append(triples, store.T(node, vocabulary.PropEndpointType, store.IRI(uri)))
		}
		if uri := ep.AccessInterface.URI(); uri != "" {
			triples = append(triples, store.T(node, vocabulary.PropAccessInterface, store.IRI(uri)))
		}
	}
	return triples
}

func expandLicense(ownerIRI string, license offering.License) []store.Triple {
	node := vocabulary.OwnedIRI(ownerIRI, "license")
	triples := []store.Triple{
		store.T(ownerIRI, vocabulary.PropLicense, store.IRI(node)),
		store.T(node, vocabulary.PropType, store.IRI(vocabulary.ClassLicense)),
	}
	if uri := license.URI(); uri != "" {
		triples = append(triples, store.T(node, vocabulary.PropLicenseType, store.IRI(uri)))
	}
	return triples
}

// expandPrice applies the free-price rule before writing: the stored price
// of a FREE offering is always 0.0 EUR.
func expandPrice(ownerIRI string, price offering.Price) []store.Triple {
	normalized := price.Normalized()
	node := vocabulary.OwnedIRI(ownerIRI, "price")
	triples := []store.Triple{
		store.T(ownerIRI, vocabulary.PropPriceSpecification, store.IRI(node)),
		store.T(node, vocabulary.PropType, store.IRI(vocabulary.ClassPrice)),
	}
	if uri := normalized.Model.URI(); uri != "" {
		triples = append(triples, store.T(node, vocabulary.PropPricingModel, store.IRI(uri)))
	}
	if normalized.Money != nil {
		triples = append(triples,
			store.T(node, vocabulary.PropPriceAmount, store.Float(normalized.Money.Amount)),
			store.T(node, vocabulary.PropPriceCurrency, store.Text(normalized.Money.Currency)),
		)
	}
	return triples
}

func expandSpatialExtent(ownerIRI string, extent *offering.SpatialExtent) []store.Triple {
	if extent == nil {
		return nil
	}
	node := vocabulary.OwnedIRI(ownerIRI, "region")
	triples := []store.Triple{
		store.T(ownerIRI, vocabulary.PropSpatialCoverage, store.IRI(node)),
		store.T(node, vocabulary.PropType, store.IRI(vocabulary.ClassRegion)),
	}
	if extent.City != "" {
		triples = append(triples, store.T(node, vocabulary.PropName, store.Text(extent.City)))
	}
	if extent.Boundary != nil {
		box := extent.Boundary.Normalized()
		triples = append(triples,
			store.T(node, vocabulary.PropLowerBoundLat, store.Float(box.L1.Lat)),
			store.T(node, vocabulary.PropLowerBoundLng, store.Float(box.L1.Lng)),
			store.T(node, vocabulary.PropUpperBoundLat, store.Float(box.L2.Lat)),
			store.T(node, vocabulary.PropUpperBoundLng, store.Float(box.L2.Lng)),
		)
	}
	return triples
}

func expandTemporalExtent(ownerIRI string, extent *offering.TemporalExtent) []store.Triple {
	if extent == nil {
		return nil
	}
	return []store.Triple{
		store.T(ownerIRI, vocabulary.PropValidFrom, store.Int(extent.From)),
		store.T(ownerIRI, vocabulary.PropValidThrough, store.Int(extent.To)),
	}
}

// expandDataFields expands input or output fields into field nodes hung off
// edgeProp, plus one flattened edge per transitively referenced annotation.
// The flattened edges are the matcher's semantic index.
func expandDataFields(ownerIRI, edgeProp, flattenedProp string, fields []semantic.DataField) []store.Triple {
	prefix := "input"
	if edgeProp == vocabulary.PropHasOutput {
		prefix = "output"
	}
	var triples []store.Triple
	for i, field := range fields {
		node := vocabulary.OwnedIRI(ownerIRI, fmt.Sprintf("%s%d", prefix, i))
		triples = append(triples,
			store.T(ownerIRI, edgeProp, store.IRI(node)),
			store.T(node, vocabulary.PropIndex, store.Int(int64(i))),
		)
		triples = append(triples, expandFieldNode(node, field)...)
		for _, annURI := range field.ReferencedAnnotations() {
			triples = append(triples, store.T(ownerIRI, flattenedProp, store.IRI(annURI)))
		}
	}
	return triples
}

// expandFieldNode writes one field node, recursing into object members.
// An undefined value kind omits the valueType triple entirely; the field
// node survives with its annotation reference so the resource stays intact.
func expandFieldNode(node string, field semantic.DataField) []store.Triple {
	triples := []store.Triple{
		store.T(node, vocabulary.PropType, store.IRI(vocabulary.ClassDataField)),
		store.T(node, vocabulary.PropName, store.Text(field.Name)),
	}
	if field.Annotation.URI != "" {
		triples = append(triples, store.T(node, vocabulary.PropRDFAnnotation, store.IRI(field.Annotation.URI)))
	}
	if uri := field.Value.Kind.URI(); uri != "" {
		triples = append(triples, store.T(node, vocabulary.PropValueType, store.IRI(uri)))
	}
	if field.Required {
		triples = append(triples, store.T(node, vocabulary.PropRequired, store.Boolean(true)))
	}
	if field.Encoding != "" {
		triples = append(triples, store.T(node, vocabulary.PropEncoding, store.Text(field.Encoding)))
	}
	for j, member := range field.Value.Members {
		memberNode := vocabulary.OwnedIRI(node, fmt.Sprintf("member%d", j))
		triples = append(triples,
			store.T(node, vocabulary.PropHasMember, store.IRI(memberNode)),
			store.T(memberNode, vocabulary.PropIndex, store.Int(int64(j))),
		)
		triples = append(triples, expandFieldNode(memberNode, member)...)
	}
	return triples
}

func expandActivation(ownerIRI string, activation offering.Activation) []store.Triple {
	return []store.Triple{
		store.T(ownerIRI, vocabulary.PropIsActivated, store.Boolean(activation.Status)),
		store.T(ownerIRI, vocabulary.PropExpirationTime, store.Int(activation.ExpirationTime)),
	}
}

func expandAccessWhiteList(ownerIRI string, orgIDs []string) []store.Triple {
	var triples []store.Triple
	for _, orgID := range orgIDs {
		triples = append(triples,
			store.T(ownerIRI, vocabulary.PropIsAccessedBy, store.IRI(vocabulary.ResourceIRI(orgID))))
	}
	return triples
}
