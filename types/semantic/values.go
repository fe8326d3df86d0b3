// Package semantic provides the taxonomy-side domain types of the exchange:
// categories, datatype annotations, tagged value types, and data fields.
package semantic

import (
	"encoding/json"

	"github.com/c360/semexchange/vocabulary"
)

// ValueKind is the tag of a DataField value type. Every consumption site
// switches exhaustively over these values; unsupported tags arriving in
// events degrade to KindUndefined rather than failing the owning resource.
type ValueKind string

const (
	// KindText is a free-form string value.
	KindText ValueKind = "text"
	// KindNumber is a floating point value.
	KindNumber ValueKind = "number"
	// KindInteger is a whole-number value.
	KindInteger ValueKind = "integer"
	// KindDateTime is an instant, carried as epoch milliseconds.
	KindDateTime ValueKind = "datetime"
	// KindBoolean is a true/false value.
	KindBoolean ValueKind = "boolean"
	// KindObject is a composite value with ordered member fields.
	KindObject ValueKind = "object"
	// KindUndefined marks a field whose declared tag was unsupported.
	KindUndefined ValueKind = "undefined"
)

// String returns the string representation of the ValueKind.
func (k ValueKind) String() string {
	return string(k)
}

// IsValid checks if the ValueKind is one of the defined constants.
func (k ValueKind) IsValid() bool {
	switch k {
	case KindText, KindNumber, KindInteger, KindDateTime, KindBoolean, KindObject, KindUndefined:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler to serialize ValueKind as a string.
func (k ValueKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

// UnmarshalJSON implements json.Unmarshaler. Unknown tags decode to
// KindUndefined so a malformed field never fails its owning resource.
func (k *ValueKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed := ValueKind(s)
	if !parsed.IsValid() {
		parsed = KindUndefined
	}
	*k = parsed
	return nil
}

// URI returns the schema.org value-type IRI stored on value nodes.
// KindUndefined has no IRI; projection omits the valueType triple for it.
func (k ValueKind) URI() string {
	switch k {
	case KindText:
		return vocabulary.ValueTypeText
	case KindNumber:
		return vocabulary.ValueTypeNumber
	case KindInteger:
		return vocabulary.ValueTypeInteger
	case KindDateTime:
		return vocabulary.ValueTypeDateTime
	case KindBoolean:
		return vocabulary.ValueTypeBoolean
	case KindObject:
		return vocabulary.ValueTypeObject
	default:
		return ""
	}
}

// KindForURI maps a stored value-type IRI back to its ValueKind.
// Unknown IRIs map to KindUndefined.
func KindForURI(uri string) ValueKind {
	switch uri {
	case vocabulary.ValueTypeText:
		return KindText
	case vocabulary.ValueTypeNumber:
		return KindNumber
	case vocabulary.ValueTypeInteger:
		return KindInteger
	case vocabulary.ValueTypeDateTime:
		return KindDateTime
	case vocabulary.ValueTypeBoolean:
		return KindBoolean
	case vocabulary.ValueTypeObject:
		return KindObject
	default:
		return KindUndefined
	}
}

// ValueType is the tagged union of a DataField's declared value shape.
// Members is populated only when Kind is KindObject; member order is the
// declaration order and is preserved end to end.
type ValueType struct {
	Kind    ValueKind   `json:"kind"`
	Members []DataField `json:"members,omitempty"`
}

// Text returns a text value type.
func Text() ValueType { return ValueType{Kind: KindText} }

// Number returns a floating point value type.
func Number() ValueType { return ValueType{Kind: KindNumber} }

// Integer returns a whole-number value type.
func Integer() ValueType { return ValueType{Kind: KindInteger} }

// DateTime returns an instant value type.
func DateTime() ValueType { return ValueType{Kind: KindDateTime} }

// Boolean returns a true/false value type.
func Boolean() ValueType { return ValueType{Kind: KindBoolean} }

// Object returns a composite value type with the given ordered members.
func Object(members ...DataField) ValueType {
	return ValueType{Kind: KindObject, Members: members}
}

// Undefined returns the degraded value type for unsupported tags.
func Undefined() ValueType { return ValueType{Kind: KindUndefined} }

// IsObject reports whether the value type carries member fields.
func (vt ValueType) IsObject() bool {
	return vt.Kind == KindObject
}
