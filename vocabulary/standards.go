package vocabulary

// simpleTypeURIs is the fixed set of schema.org ranges that classify an
// annotation as simple-valued. Anything outside this set is an object or
// composite annotation carrying its own members.
var simpleTypeURIs = map[string]struct{}{
	SchemaNS + "Boolean":  {},
	SchemaNS + "Date":     {},
	SchemaNS + "DateTime": {},
	SchemaNS + "Time":     {},
	SchemaNS + "Number":   {},
	SchemaNS + "Integer":  {},
	SchemaNS + "Float":    {},
	SchemaNS + "Text":     {},
	SchemaNS + "URL":      {},
}

// IsSimpleType reports whether a range IRI denotes a simple (primitive)
// annotation value type.
func IsSimpleType(rangeURI string) bool {
	_, ok := simpleTypeURIs[rangeURI]
	return ok
}

// Schema IRIs for the coarse value-type families exposed to consumers.
const (
	BooleanSchema  = CoreNS + "BooleanSchema"
	DateTimeSchema = CoreNS + "DateTimeSchema"
	NumberSchema   = CoreNS + "NumberSchema"
	StringSchema   = CoreNS + "StringSchema"
	ObjectSchema   = CoreNS + "ObjectSchema"
)

// SchemaForRange maps an annotation range IRI to its value-type schema
// family. Unknown ranges map to ObjectSchema.
func SchemaForRange(rangeURI string) string {
	switch rangeURI {
	case SchemaNS + "Boolean":
		return BooleanSchema
	case SchemaNS + "Date", SchemaNS + "DateTime", SchemaNS + "Time":
		return DateTimeSchema
	case SchemaNS + "Number", SchemaNS + "Integer", SchemaNS + "Float":
		return NumberSchema
	case SchemaNS + "Text", SchemaNS + "URL":
		return StringSchema
	default:
		return ObjectSchema
	}
}
