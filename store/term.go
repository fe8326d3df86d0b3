package store

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TermKind tags the object position of a triple.
type TermKind string

const (
	// KindIRI is a resource reference.
	KindIRI TermKind = "iri"
	// KindText is a string literal.
	KindText TermKind = "text"
	// KindNumber is a floating point literal.
	KindNumber TermKind = "number"
	// KindInteger is a whole-number literal (epoch millis use this).
	KindInteger TermKind = "integer"
	// KindBool is a boolean literal.
	KindBool TermKind = "bool"
)

// Term is the tagged object value of a triple: either a resource IRI or a
// typed literal. Exactly one payload field is meaningful for a given Kind.
type Term struct {
	Kind TermKind `json:"kind"`
	Str  string   `json:"str,omitempty"`
	Num  float64  `json:"num,omitempty"`
	Int  int64    `json:"int,omitempty"`
	Bool bool     `json:"bool,omitempty"`
}

// IRI returns a resource reference term.
func IRI(iri string) Term { return Term{Kind: KindIRI, Str: iri} }

// Text returns a string literal term.
func Text(s string) Term { return Term{Kind: KindText, Str: s} }

// Float returns a floating point literal term.
func Float(f float64) Term { return Term{Kind: KindNumber, Num: f} }

// Int returns a whole-number literal term.
func Int(i int64) Term { return Term{Kind: KindInteger, Int: i} }

// Bool returns a boolean literal term.
func Boolean(b bool) Term { return Term{Kind: KindBool, Bool: b} }

// Equal reports exact term equality (kind and payload).
func (t Term) Equal(other Term) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindIRI, KindText:
		return t.Str == other.Str
	case KindNumber:
		return t.Num == other.Num
	case KindInteger:
		return t.Int == other.Int
	case KindBool:
		return t.Bool == other.Bool
	default:
		return false
	}
}

// IsIRI reports whether the term references a resource.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// Lexical returns the canonical string form of the term payload, used for
// indexing and durable storage.
func (t Term) Lexical() string {
	switch t.Kind {
	case KindIRI, KindText:
		return t.Str
	case KindNumber:
		return strconv.FormatFloat(t.Num, 'g', -1, 64)
	case KindInteger:
		return strconv.FormatInt(t.Int, 10)
	case KindBool:
		return strconv.FormatBool(t.Bool)
	default:
		return ""
	}
}

// TermFromLexical rebuilds a term from its kind and canonical string form.
func TermFromLexical(kind TermKind, lexical string) (Term, error) {
	switch kind {
	case KindIRI:
		return IRI(lexical), nil
	case KindText:
		return Text(lexical), nil
	case KindNumber:
		f, err := strconv.ParseFloat(lexical, 64)
		if err != nil {
			return Term{}, fmt.Errorf("parse number term %q: %w", lexical, err)
		}
		return Float(f), nil
	case KindInteger:
		i, err := strconv.ParseInt(lexical, 10, 64)
		if err != nil {
			return Term{}, fmt.Errorf("parse integer term %q: %w", lexical, err)
		}
		return Int(i), nil
	case KindBool:
		b, err := strconv.ParseBool(lexical)
		if err != nil {
			return Term{}, fmt.Errorf("parse bool term %q: %w", lexical, err)
		}
		return Boolean(b), nil
	default:
		return Term{}, fmt.Errorf("unknown term kind %q", kind)
	}
}

// String renders the term for logs.
func (t Term) String() string {
	if t.Kind == KindIRI {
		return "<" + t.Str + ">"
	}
	return fmt.Sprintf("%q^^%s", t.Lexical(), t.Kind)
}

// MarshalJSON keeps zero-valued payload fields from being dropped ambiguously
// by encoding kind and lexical form.
func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind    TermKind `json:"kind"`
		Lexical string   `json:"lexical"`
	}{t.Kind, t.Lexical()})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (t *Term) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind    TermKind `json:"kind"`
		Lexical string   `json:"lexical"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := TermFromLexical(raw.Kind, raw.Lexical)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
