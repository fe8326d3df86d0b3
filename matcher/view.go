package matcher

import (
	"sort"
	"strings"

	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/offering"
	"github.com/c360/semexchange/vocabulary"
)

// offeringView is one offering's constructed subgraph indexed for the
// semantic filter's checks.
type offeringView struct {
	iri        string
	category   string
	activated  bool
	expiration int64
	license    string

	priceModel    string
	priceAmount   float64
	priceCurrency string
	hasPrice      bool

	// flattened annotation URIs per index predicate
	flattened map[string]map[string]bool
	// field node edges per structural predicate (hasInput/hasOutput)
	fieldRoots map[string][]string
	// field node subject -> predicate -> object terms
	nodes map[string]map[string][]store.Term
}

func indexSubgraph(offeringIRI string, triples []store.Triple) *offeringView {
	view := &offeringView{
		iri:       offeringIRI,
		flattened: map[string]map[string]bool{},
		fieldRoots: map[string][]string{
			vocabulary.PropHasInput:  nil,
			vocabulary.PropHasOutput: nil,
		},
		nodes: map[string]map[string][]store.Term{},
	}
	var priceNode, licenseNode string

	for _, t := range triples {
		props, ok := view.nodes[t.Subject]
		if !ok {
			props = map[string][]store.Term{}
			view.nodes[t.Subject] = props
		}
		props[t.Predicate] = append(props[t.Predicate], t.Object)

		if t.Subject != offeringIRI {
			continue
		}
		switch t.Predicate {
		case vocabulary.PropCategory:
			view.category = t.Object.Str
		case vocabulary.PropIsActivated:
			view.activated = t.Object.Bool
		case vocabulary.PropExpirationTime:
			view.expiration = t.Object.Int
		case vocabulary.PropLicense:
			licenseNode = t.Object.Str
		case vocabulary.PropPriceSpecification:
			priceNode = t.Object.Str
		case vocabulary.PropHasFlattenedInput, vocabulary.PropHasFlattenedOutput:
			set, ok := view.flattened[t.Predicate]
			if !ok {
				set = map[string]bool{}
				view.flattened[t.Predicate] = set
			}
			set[t.Object.Str] = true
		case vocabulary.PropHasInput, vocabulary.PropHasOutput:
			view.fieldRoots[t.Predicate] = append(view.fieldRoots[t.Predicate], t.Object.Str)
		}
	}

	if licenseNode != "" {
		for _, term := range view.nodes[licenseNode][vocabulary.PropLicenseType] {
			view.license = term.Str
		}
	}
	if priceNode != "" {
		props := view.nodes[priceNode]
		if props != nil {
			view.hasPrice = true
			for _, term := range props[vocabulary.PropPricingModel] {
				view.priceModel = term.Str
			}
			for _, term := range props[vocabulary.PropPriceAmount] {
				view.priceAmount = term.Num
			}
			for _, term := range props[vocabulary.PropPriceCurrency] {
				view.priceCurrency = term.Str
			}
		}
	}
	return view
}

// satisfies checks one field requirement: the annotation must appear in the
// flattened index, and when a kind is declared some field node on that side
// must reference the annotation with exactly that kind.
func (v *offeringView) satisfies(req FieldRequirement, flattenedProp, edgeProp string) bool {
	if !v.flattened[flattenedProp][req.AnnotationURI] {
		return false
	}
	kindURI := req.Kind.URI()
	if kindURI == "" {
		return true
	}
	for _, root := range v.fieldRoots[edgeProp] {
		if v.fieldHasKind(root, req.AnnotationURI, kindURI, map[string]bool{}) {
			return true
		}
	}
	return false
}

// fieldHasKind walks a field node and its members looking for the
// annotation declared with the wanted value kind.
func (v *offeringView) fieldHasKind(node, annotationURI, kindURI string, visited map[string]bool) bool {
	if visited[node] {
		return false
	}
	visited[node] = true

	props := v.nodes[node]
	if props == nil {
		return false
	}
	matchesAnnotation := false
	for _, term := range props[vocabulary.PropRDFAnnotation] {
		if term.Str == annotationURI {
			matchesAnnotation = true
		}
	}
	if matchesAnnotation {
		for _, term := range props[vocabulary.PropValueType] {
			if term.Str == kindURI {
				return true
			}
		}
	}
	for _, term := range props[vocabulary.PropHasMember] {
		if term.IsIRI() && v.fieldHasKind(term.Str, annotationURI, kindURI, visited) {
			return true
		}
	}
	return false
}

func (v *offeringView) nodeText(node, predicate string) string {
	for _, term := range v.nodes[node][predicate] {
		if term.Kind == store.KindText {
			return term.Str
		}
	}
	return ""
}

func (v *offeringView) nodeIRI(node, predicate string) string {
	for _, term := range v.nodes[node][predicate] {
		if term.IsIRI() {
			return term.Str
		}
	}
	return ""
}

func (v *offeringView) nodeBool(node, predicate string) bool {
	for _, term := range v.nodes[node][predicate] {
		if term.Kind == store.KindBool {
			return term.Bool
		}
	}
	return false
}

func (v *offeringView) nodeInt(node, predicate string) int64 {
	for _, term := range v.nodes[node][predicate] {
		if term.Kind == store.KindInteger {
			return term.Int
		}
	}
	return 0
}

// memberNodes returns a field node's member nodes in index order.
func (v *offeringView) memberNodes(node string) []string {
	var members []string
	for _, term := range v.nodes[node][vocabulary.PropHasMember] {
		if term.IsIRI() {
			members = append(members, term.Str)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return v.nodeInt(members[i], vocabulary.PropIndex) < v.nodeInt(members[j], vocabulary.PropIndex)
	})
	return members
}

// priceWithin checks the price ceiling: FREE always passes, otherwise the
// amount must not exceed the ceiling in the same currency.
func (v *offeringView) priceWithin(c PriceConstraint) bool {
	if !v.hasPrice || v.priceModel == offering.PriceFree.URI() {
		return true
	}
	if !strings.EqualFold(v.priceCurrency, c.Currency) {
		return false
	}
	return v.priceAmount <= c.Ceiling
}
