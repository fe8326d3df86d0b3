package vocabulary

import "strings"

// prefixMap maps compact prefixes to their namespace IRIs. Event payloads may
// reference categories and annotations in either compact ("bigiot-core:xyz")
// or fully expanded form.
var prefixMap = map[string]string{
	"bigiot-core":     CoreNS,
	"bigiot-base":     BaseNS,
	"bigiot-mobility": MobilityNS,
	"schema":          SchemaNS,
	"skos":            SKOSNS,
	"rdf":             RDFNS,
	"rdfs":            RDFSNS,
	"xsd":             XSDNS,
	"owl":             OWLNS,
	"wgs84":           WGS84NS,
}

// Prefixes returns a copy of the prefix table.
func Prefixes() map[string]string {
	out := make(map[string]string, len(prefixMap))
	for k, v := range prefixMap {
		out[k] = v
	}
	return out
}

// PrefixNS returns the namespace registered for a prefix, or "" if unknown.
func PrefixNS(prefix string) string {
	return prefixMap[prefix]
}

// Expand resolves a possibly-prefixed IRI reference to its full form.
// Already-expanded IRIs (http/https/urn) pass through unchanged, as do
// references with unknown prefixes.
func Expand(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "urn:") {
		return ref
	}
	idx := strings.Index(ref, ":")
	if idx <= 0 {
		return ref
	}
	ns, ok := prefixMap[ref[:idx]]
	if !ok {
		return ref
	}
	return ns + ref[idx+1:]
}

// Compact rewrites a full IRI into prefixed form when a registered namespace
// matches. Used for log output; stored triples always carry expanded IRIs.
func Compact(iri string) string {
	for prefix, ns := range prefixMap {
		if strings.HasPrefix(iri, ns) {
			return prefix + ":" + iri[len(ns):]
		}
	}
	return iri
}
