package errors

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"store unavailable", ErrStoreUnavailable, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"invalid data", ErrInvalidData, false},
		{"unknown category", ErrUnknownCategory, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"network error", fmt.Errorf("network connection failed"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"tree integrity", ErrTreeIntegrity, true},
		{"store unavailable", ErrStoreUnavailable, false},
		{"invalid data", ErrInvalidData, false},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsFatal(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"unknown category", ErrUnknownCategory, true},
		{"unknown event", ErrUnknownEvent, true},
		{"parsing failed", ErrParsingFailed, true},
		{"pattern invalid", ErrPatternInvalid, true},
		{"store unavailable", ErrStoreUnavailable, false},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsDuplicateProposed(t *testing.T) {
	if !IsDuplicateProposed(ErrDuplicateProposedAnnotation) {
		t.Error("expected duplicate proposed annotation to be recognized")
	}
	if !IsDuplicateProposed(ErrDuplicateProposedCategory) {
		t.Error("expected duplicate proposed category to be recognized")
	}
	wrapped := Wrap(ErrDuplicateProposedAnnotation, "Projector", "offeringCreated", "materialize annotation")
	if !IsDuplicateProposed(wrapped) {
		t.Error("expected wrapped duplicate signal to be recognized")
	}
	if IsDuplicateProposed(ErrUnknownCategory) {
		t.Error("unknown category is not a duplicate signal")
	}
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("underlying problem")
	err := Wrap(base, "Taxonomy", "RefreshCategories", "structural query")
	if err == nil {
		t.Fatal("expected wrapped error")
	}
	if !strings.Contains(err.Error(), "Taxonomy.RefreshCategories") {
		t.Errorf("missing component context: %v", err)
	}
	if !Is(err, base) {
		t.Error("wrapped error should match the base error")
	}
	if Wrap(nil, "Taxonomy", "RefreshCategories", "noop") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWrapClassified(t *testing.T) {
	base := fmt.Errorf("boom")

	transient := WrapTransient(base, "Store", "Query", "select")
	if Classify(transient) != ErrorTransient {
		t.Error("expected transient classification")
	}

	invalid := WrapInvalid(base, "Projector", "OfferingCreated", "decode")
	if Classify(invalid) != ErrorInvalid {
		t.Error("expected invalid classification")
	}

	fatal := WrapFatal(base, "Config", "Load", "parse")
	if Classify(fatal) != ErrorFatal {
		t.Error("expected fatal classification")
	}

	var ce *ClassifiedError
	if !As(transient, &ce) {
		t.Fatal("expected ClassifiedError in chain")
	}
	if ce.Component != "Store" || ce.Operation != "Query" {
		t.Errorf("unexpected context: %+v", ce)
	}
	if ce.Unwrap() == nil {
		t.Error("expected unwrappable inner error")
	}
}
