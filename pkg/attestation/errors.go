package attestation

import "fmt"

// InvalidAttestationError reports a structural or decode failure with a
// human-readable reason.
type InvalidAttestationError struct {
	Reason string
}

func (e *InvalidAttestationError) Error() string {
	return fmt.Sprintf("invalid attestation: %s", e.Reason)
}

// MissingFieldError reports an absent required field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// InvalidPredicateTypeError reports a predicate type tag mismatch.
type InvalidPredicateTypeError struct {
	Expected string
	Actual   string
}

func (e *InvalidPredicateTypeError) Error() string {
	return fmt.Sprintf(
		"invalid predicate type: expected %s, got %s",
		e.Expected, e.Actual,
	)
}

// HashMismatchError reports a digest comparison failure, carrying both
// values for diagnostics.
type HashMismatchError struct {
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf(
		"hash verification failed: expected %s, got %s",
		e.Expected, e.Actual,
	)
}
