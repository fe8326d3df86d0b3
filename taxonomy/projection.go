// Package taxonomy materializes the category tree and annotation graph as an
// in-memory snapshot for low-latency reads. The snapshot is rebuilt from the
// ontology graph after every structural mutation and versioned so callers
// can detect staleness.
package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/c360/semexchange/errors"
	"github.com/c360/semexchange/metric"
	"github.com/c360/semexchange/rules"
	"github.com/c360/semexchange/store"
	"github.com/c360/semexchange/types/semantic"
	"github.com/c360/semexchange/vocabulary"
)

// RootLabel names the synthetic root when the bootstrap ontology did not
// label it.
const RootLabel = "All Offerings"

// categoryNode is the arena representation of one category: URI references
// to parent and children instead of recursive values, so cycles that slip
// into the graph cannot produce cyclic Go structures.
type categoryNode struct {
	uri        string
	label      string
	parent     string
	proposed   bool
	deprecated bool
	children   []string
	declared   []string
}

// annotationNode is the arena representation of one annotation. members
// holds the IRIs of its ordered member field nodes when the annotation is
// object-valued.
type annotationNode struct {
	uri        string
	label      string
	proposed   bool
	deprecated bool
	rangeURI   string
	members    []string
}

// fieldNode is a member field node of an object annotation.
type fieldNode struct {
	name       string
	annotation string
	valueType  string
	index      int64
	required   bool
	encoding   string
	members    []string
}

// Projection is the process-wide taxonomy snapshot. All reads assemble from
// the snapshot under a read lock; refreshes swap the arenas under the write
// lock and bump the version.
type Projection struct {
	log     *slog.Logger
	store   store.Store
	graph   string
	metrics *metric.Metrics

	mu          sync.RWMutex
	valid       bool
	version     uint64
	categories  map[string]*categoryNode
	annotations map[string]*annotationNode
	fields      map[string]*fieldNode
	parents     map[string]string
	expected    map[string][]string
}

// New creates a projection reading the ontology graph of st. metrics may be
// nil.
func New(st store.Store, log *slog.Logger, metrics *metric.Metrics) *Projection {
	return &Projection{
		log:         log.With("component", "taxonomy"),
		store:       st,
		graph:       store.GraphOntology,
		metrics:     metrics,
		categories:  make(map[string]*categoryNode),
		annotations: make(map[string]*annotationNode),
		fields:      make(map[string]*fieldNode),
	}
}

// Version returns the snapshot version. It increases on every refresh.
func (p *Projection) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// Invalidate marks the snapshot stale. The next read rebuilds it.
func (p *Projection) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.mu.Unlock()
}

// Refresh rebuilds both sides of the snapshot from the ontology graph.
func (p *Projection) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshLocked(ctx)
}

// RefreshCategories rebuilds the category arena only.
func (p *Projection) RefreshCategories(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	triples, err := p.store.Query(ctx, store.Pattern{}, p.graph)
	if err != nil {
		return errors.WrapTransient(errors.ErrStoreUnavailable, "taxonomy", "RefreshCategories",
			fmt.Sprintf("querying ontology graph: %v", err))
	}
	p.rebuildCategories(indexTriples(triples))
	p.bumpLocked()
	return nil
}

// RefreshAnnotations rebuilds the annotation arena only.
func (p *Projection) RefreshAnnotations(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	triples, err := p.store.Query(ctx, store.Pattern{}, p.graph)
	if err != nil {
		return errors.WrapTransient(errors.ErrStoreUnavailable, "taxonomy", "RefreshAnnotations",
			fmt.Sprintf("querying ontology graph: %v", err))
	}
	p.rebuildAnnotations(indexTriples(triples))
	p.bumpLocked()
	return nil
}

func (p *Projection) refreshLocked(ctx context.Context) error {
	triples, err := p.store.Query(ctx, store.Pattern{}, p.graph)
	if err != nil {
		return errors.WrapTransient(errors.ErrStoreUnavailable, "taxonomy", "Refresh",
			fmt.Sprintf("querying ontology graph: %v", err))
	}
	index := indexTriples(triples)
	p.rebuildCategories(index)
	p.rebuildAnnotations(index)
	p.valid = true
	p.bumpLocked()
	p.log.Debug("taxonomy snapshot rebuilt",
		"version", p.version,
		"categories", len(p.categories),
		"annotations", len(p.annotations))
	return nil
}

func (p *Projection) bumpLocked() {
	p.version++
	p.metrics.ObserveRefresh(p.version)
}

// subjectProps indexes the ontology graph as subject -> predicate -> terms.
type subjectProps map[string]map[string][]store.Term

func indexTriples(triples []store.Triple) subjectProps {
	index := make(subjectProps)
	for _, t := range triples {
		props, ok := index[t.Subject]
		if !ok {
			props = make(map[string][]store.Term)
			index[t.Subject] = props
		}
		props[t.Predicate] = append(props[t.Predicate], t.Object)
	}
	return index
}

func (sp subjectProps) iri(subject, predicate string) string {
	for _, term := range sp[subject][predicate] {
		if term.IsIRI() {
			return term.Str
		}
	}
	return ""
}

func (sp subjectProps) text(subject, predicate string) string {
	for _, term := range sp[subject][predicate] {
		if term.Kind == store.KindText {
			return term.Str
		}
	}
	return ""
}

func (sp subjectProps) boolean(subject, predicate string) bool {
	for _, term := range sp[subject][predicate] {
		if term.Kind == store.KindBool {
			return term.Bool
		}
	}
	return false
}

func (sp subjectProps) integer(subject, predicate string) int64 {
	for _, term := range sp[subject][predicate] {
		if term.Kind == store.KindInteger {
			return term.Int
		}
	}
	return 0
}

func (sp subjectProps) iris(subject, predicate string) []string {
	var out []string
	for _, term := range sp[subject][predicate] {
		if term.IsIRI() {
			out = append(out, term.Str)
		}
	}
	sort.Strings(out)
	return out
}

func (p *Projection) rebuildCategories(index subjectProps) {
	nodes := make(map[string]*categoryNode)
	for subject, props := range index {
		for _, term := range props[vocabulary.PropType] {
			switch term.Str {
			case vocabulary.ClassCategory:
				nodes[subject] = &categoryNode{uri: subject}
			case vocabulary.ClassProposedCategory:
				nodes[subject] = &categoryNode{uri: subject, proposed: true}
			}
		}
	}
	// The root is implicit when the bootstrap ontology never declared it.
	if _, ok := nodes[vocabulary.RootCategory]; !ok {
		nodes[vocabulary.RootCategory] = &categoryNode{
			uri:   vocabulary.RootCategory,
			label: RootLabel,
		}
	}

	for uri, node := range nodes {
		if label := index.text(uri, vocabulary.PropLabel); label != "" {
			node.label = label
		}
		node.deprecated = index.boolean(uri, vocabulary.PropIsDeprecated)
		node.declared = index.iris(uri, vocabulary.PropExpectedAnnotation)
		for _, child := range index.iris(uri, vocabulary.PropNarrower) {
			childNode, ok := nodes[child]
			if !ok {
				continue
			}
			childNode.parent = uri
			node.children = append(node.children, child)
		}
	}

	parents := make(map[string]string, len(nodes))
	declared := make(map[string][]string, len(nodes))
	for uri, node := range nodes {
		sort.Strings(node.children)
		parents[uri] = node.parent
		declared[uri] = node.declared
	}

	p.categories = nodes
	p.parents = parents
	p.expected = rules.InheritedAnnotations(parents, declared)
}

func (p *Projection) rebuildAnnotations(index subjectProps) {
	nodes := make(map[string]*annotationNode)
	for subject, props := range index {
		for _, term := range props[vocabulary.PropType] {
			switch term.Str {
			case vocabulary.ClassAnnotation:
				nodes[subject] = &annotationNode{uri: subject}
			case vocabulary.ClassProposedAnnotation:
				nodes[subject] = &annotationNode{uri: subject, proposed: true}
			}
		}
	}

	fields := make(map[string]*fieldNode)
	var parseField func(subject string)
	parseField = func(subject string) {
		if _, ok := fields[subject]; ok {
			return
		}
		node := &fieldNode{
			name:       index.text(subject, vocabulary.PropName),
			annotation: index.iri(subject, vocabulary.PropRDFAnnotation),
			valueType:  index.iri(subject, vocabulary.PropValueType),
			index:      index.integer(subject, vocabulary.PropIndex),
			required:   index.boolean(subject, vocabulary.PropRequired),
			encoding:   index.text(subject, vocabulary.PropEncoding),
			members:    index.iris(subject, vocabulary.PropHasMember),
		}
		fields[subject] = node
		for _, member := range node.members {
			parseField(member)
		}
	}

	for uri, node := range nodes {
		node.label = index.text(uri, vocabulary.PropLabel)
		node.deprecated = index.boolean(uri, vocabulary.PropIsDeprecated)
		node.rangeURI = index.iri(uri, vocabulary.PropRangeIncludes)
		node.members = index.iris(uri, vocabulary.PropHasMember)
		for _, member := range node.members {
			parseField(member)
		}
	}

	p.annotations = nodes
	p.fields = fields
}

// ensureFresh rebuilds the snapshot when it has been invalidated.
func (p *Projection) ensureFresh(ctx context.Context) error {
	p.mu.RLock()
	valid := p.valid
	p.mu.RUnlock()
	if valid {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.valid {
		return nil
	}
	return p.refreshLocked(ctx)
}

// HasCategory reports whether the snapshot knows the category URI.
func (p *Projection) HasCategory(ctx context.Context, uri string) (bool, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return false, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.categories[uri]
	return ok, nil
}

// HasAnnotation reports whether the snapshot knows the annotation URI.
func (p *Projection) HasAnnotation(ctx context.Context, uri string) (bool, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return false, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.annotations[uri]
	return ok, nil
}

// AllCategoryURIs lists every category URI in the snapshot, sorted.
func (p *Projection) AllCategoryURIs(ctx context.Context) ([]string, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.categories))
	for uri := range p.categories {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out, nil
}

// Descendants returns root plus every category below it. The matcher's
// category closure is exactly this set.
func (p *Projection) Descendants(ctx context.Context, root string) (map[string]bool, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.categories[root]; !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownCategory, "taxonomy", "Descendants", root)
	}
	return rules.Descendants(p.parents, root), nil
}

// ExpectedAnnotations returns the inherited expected-annotation URIs of a
// category: its own declarations unioned with every ancestor's.
func (p *Projection) ExpectedAnnotations(ctx context.Context, uri string) ([]string, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.categories[uri]; !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownCategory, "taxonomy", "ExpectedAnnotations", uri)
	}
	return append([]string(nil), p.expected[uri]...), nil
}

// FindCategory assembles the category and its full subtree from the
// snapshot. A cycle among the children aborts with ErrTreeIntegrity.
func (p *Projection) FindCategory(ctx context.Context, uri string) (semantic.Category, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return semantic.Category{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.categories[uri]; !ok {
		return semantic.Category{}, errors.WrapInvalid(errors.ErrUnknownCategory, "taxonomy", "FindCategory", uri)
	}
	return p.assembleCategory(uri, true, make(map[string]bool))
}

// CategoryTree assembles the whole taxonomy from the root. Proposed
// categories and their subtrees are omitted unless includeProposed is set.
func (p *Projection) CategoryTree(ctx context.Context, includeProposed bool) (semantic.Category, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return semantic.Category{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.assembleCategory(vocabulary.RootCategory, includeProposed, make(map[string]bool))
}

func (p *Projection) assembleCategory(uri string, includeProposed bool, visited map[string]bool) (semantic.Category, error) {
	if visited[uri] {
		return semantic.Category{}, errors.WrapInvalid(errors.ErrTreeIntegrity, "taxonomy", "assembleCategory",
			fmt.Sprintf("category %s revisited during assembly", uri))
	}
	visited[uri] = true

	node := p.categories[uri]
	out := semantic.Category{
		URI:        node.uri,
		Label:      node.label,
		Parent:     node.parent,
		Proposed:   node.proposed,
		Deprecated: node.deprecated,
		Expected:   p.annotationRefs(p.expected[uri]),
	}
	for _, child := range node.children {
		childNode, ok := p.categories[child]
		if !ok {
			continue
		}
		if childNode.proposed && !includeProposed {
			continue
		}
		assembled, err := p.assembleCategory(child, includeProposed, visited)
		if err != nil {
			return semantic.Category{}, err
		}
		out.Children = append(out.Children, assembled)
	}
	return out, nil
}

func (p *Projection) annotationRefs(uris []string) []semantic.AnnotationRef {
	if len(uris) == 0 {
		return nil
	}
	out := make([]semantic.AnnotationRef, 0, len(uris))
	for _, uri := range uris {
		ref := semantic.AnnotationRef{URI: uri}
		if node, ok := p.annotations[uri]; ok {
			ref.Label = node.label
			ref.Proposed = node.proposed
			ref.Deprecated = node.deprecated
		}
		out = append(out, ref)
	}
	return out
}

// FindAnnotation assembles the annotation with its full member tree. A cycle
// among object members aborts with ErrTreeIntegrity.
func (p *Projection) FindAnnotation(ctx context.Context, uri string) (semantic.Annotation, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return semantic.Annotation{}, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.assembleAnnotation(uri, make(map[string]bool))
}

// AnnotationTree assembles every declared annotation, sorted by URI.
func (p *Projection) AnnotationTree(ctx context.Context) ([]semantic.Annotation, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	uris := make([]string, 0, len(p.annotations))
	for uri := range p.annotations {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	out := make([]semantic.Annotation, 0, len(uris))
	for _, uri := range uris {
		assembled, err := p.assembleAnnotation(uri, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		out = append(out, assembled)
	}
	return out, nil
}

func (p *Projection) assembleAnnotation(uri string, visited map[string]bool) (semantic.Annotation, error) {
	node, ok := p.annotations[uri]
	if !ok {
		return semantic.Annotation{}, errors.WrapInvalid(errors.ErrUnknownAnnotation, "taxonomy", "assembleAnnotation", uri)
	}
	if visited[uri] {
		return semantic.Annotation{}, errors.WrapInvalid(errors.ErrTreeIntegrity, "taxonomy", "assembleAnnotation",
			fmt.Sprintf("annotation %s revisited during assembly", uri))
	}
	visited[uri] = true
	defer delete(visited, uri)

	out := semantic.Annotation{
		AnnotationRef: semantic.AnnotationRef{
			URI:        node.uri,
			Label:      node.label,
			Proposed:   node.proposed,
			Deprecated: node.deprecated,
		},
	}
	if len(node.members) == 0 && rules.IsSimpleRange(node.rangeURI) {
		out.Value = semantic.ValueType{Kind: rules.KindForRange(node.rangeURI)}
		return out, nil
	}
	if len(node.members) == 0 {
		out.Value = semantic.Undefined()
		return out, nil
	}
	members, err := p.assembleMembers(node.members, visited)
	if err != nil {
		return semantic.Annotation{}, err
	}
	out.Value = semantic.Object(members...)
	return out, nil
}

func (p *Projection) assembleMembers(memberIRIs []string, visited map[string]bool) ([]semantic.DataField, error) {
	nodes := make([]*fieldNode, 0, len(memberIRIs))
	for _, iri := range memberIRIs {
		if node, ok := p.fields[iri]; ok {
			nodes = append(nodes, node)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].index < nodes[j].index })

	out := make([]semantic.DataField, 0, len(nodes))
	for _, node := range nodes {
		field, err := p.assembleField(node, visited)
		if err != nil {
			return nil, err
		}
		out = append(out, field)
	}
	return out, nil
}

func (p *Projection) assembleField(node *fieldNode, visited map[string]bool) (semantic.DataField, error) {
	field := semantic.DataField{
		Name:       node.name,
		Annotation: semantic.AnnotationRef{URI: node.annotation},
		Encoding:   node.encoding,
		Required:   node.required,
	}
	if ann, ok := p.annotations[node.annotation]; ok {
		field.Annotation.Label = ann.label
		field.Annotation.Proposed = ann.proposed
		field.Annotation.Deprecated = ann.deprecated
	}
	switch {
	case len(node.members) > 0:
		members, err := p.assembleMembers(node.members, visited)
		if err != nil {
			return semantic.DataField{}, err
		}
		field.Value = semantic.Object(members...)
	case node.valueType != "":
		field.Value = semantic.ValueType{Kind: semantic.KindForURI(node.valueType)}
	case node.annotation != "":
		// The field's shape is whatever its annotation declares.
		ann, err := p.assembleAnnotation(node.annotation, visited)
		if err != nil {
			if errors.Is(err, errors.ErrUnknownAnnotation) {
				field.Value = semantic.Undefined()
				return field, nil
			}
			return semantic.DataField{}, err
		}
		field.Value = ann.Value
	default:
		field.Value = semantic.Undefined()
	}
	return field, nil
}

// FindDataField resolves an annotation URI to the data field shape it
// declares, for the query API's getDataField read.
func (p *Projection) FindDataField(ctx context.Context, annotationURI string) (semantic.DataField, error) {
	ann, err := p.FindAnnotation(ctx, annotationURI)
	if err != nil {
		return semantic.DataField{}, err
	}
	return semantic.DataField{
		Name:       ann.Label,
		Annotation: ann.AnnotationRef,
		Value:      ann.Value,
	}, nil
}
