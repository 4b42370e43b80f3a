package persist

import (
	"errors"
	"fmt"
)

// Kind categorizes write failures.
type Kind string

const (
	// KindConnectivity indicates the store could not be reached at all.
	KindConnectivity Kind = "CONNECTIVITY"

	// KindReferentialIntegrity indicates the analysis does not exist.
	KindReferentialIntegrity Kind = "REFERENTIAL_INTEGRITY"

	// KindValidation indicates one or more recommendations failed schema rules.
	KindValidation Kind = "VALIDATION"

	// KindSchemaDrift indicates the store predates the schema the writer needs.
	KindSchemaDrift Kind = "SCHEMA_DRIFT"

	// KindTransaction indicates a failure inside the open transaction.
	KindTransaction Kind = "TRANSACTION"
)

// Error is returned by SaveRecommendations for every failure.
// Message is the complete, user-facing text.
type Error struct {
	Kind    Kind
	Message string

	// Violations lists every schema violation (KindValidation only).
	Violations []string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

func connectivityError(err error) *Error {
	return &Error{
		Kind:    KindConnectivity,
		Message: "Database connection test failed",
		Err:     err,
	}
}

func missingAnalysisError(analysisID int64) *Error {
	return &Error{
		Kind:    KindReferentialIntegrity,
		Message: fmt.Sprintf("Analysis ID %d does not exist in database", analysisID),
	}
}

func validationError(violations []string, joined string) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    "Validation errors: " + joined,
		Violations: violations,
	}
}

func schemaDriftError(have, want int) *Error {
	return &Error{
		Kind:    KindSchemaDrift,
		Message: fmt.Sprintf("Database schema version %d is older than required %d", have, want),
	}
}

func transactionError(err error) *Error {
	return &Error{
		Kind:    KindTransaction,
		Message: "Failed to save recommendations: " + err.Error(),
		Err:     err,
	}
}
