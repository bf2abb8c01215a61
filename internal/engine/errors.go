package engine

import (
	"errors"
	"fmt"
)

// SessionError represents a contract violation detected by the session.
//
// These are programming errors in the calling handler, not host
// failures: writing to a reserved section-collection key, touching an
// undeclared section, reusing an explicit row id, or finalizing twice.
// They fail fast so a structural mistake never degrades into a silent
// partial write.
type SessionError struct {
	// Code identifies the error category.
	Code SessionErrorCode

	// Message is a human-readable description.
	Message string

	// Section identifies the affected section, when applicable.
	Section string

	// Key identifies the affected attribute key, when applicable.
	Key string
}

// SessionErrorCode categorizes session errors.
type SessionErrorCode string

const (
	// ErrCodeReservedSection indicates a write to a section-collection
	// key as if it were a scalar attribute.
	ErrCodeReservedSection SessionErrorCode = "RESERVED_SECTION"

	// ErrCodeUnknownSection indicates access to a section the session
	// never declared.
	ErrCodeUnknownSection SessionErrorCode = "UNKNOWN_SECTION"

	// ErrCodeDuplicateRowID indicates an explicit append reused an id
	// already present in the session.
	ErrCodeDuplicateRowID SessionErrorCode = "DUPLICATE_ROW_ID"

	// ErrCodeInvalidRowID indicates an explicit append supplied an id
	// that breaks the row key grammar.
	ErrCodeInvalidRowID SessionErrorCode = "INVALID_ROW_ID"

	// ErrCodeSessionFinalized indicates use of a session after its
	// finalize completed.
	ErrCodeSessionFinalized SessionErrorCode = "SESSION_FINALIZED"
)

// Error implements the error interface.
func (e *SessionError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	case e.Section != "":
		return fmt.Sprintf("%s: %s (section=%s)", e.Code, e.Message, e.Section)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsReservedSectionError reports whether err is a reserved-section
// write rejection. Uses errors.As to handle wrapped errors.
func IsReservedSectionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Code == ErrCodeReservedSection
}

// IsUnknownSectionError reports whether err is an undeclared-section
// access rejection.
func IsUnknownSectionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se) && se.Code == ErrCodeUnknownSection
}

func newReservedSectionError(key string) *SessionError {
	return &SessionError{
		Code:    ErrCodeReservedSection,
		Message: "section collection keys are not writable scalars",
		Key:     key,
	}
}

func newUnknownSectionError(section string) *SessionError {
	return &SessionError{
		Code:    ErrCodeUnknownSection,
		Message: "section was not declared when the session opened",
		Section: section,
	}
}

func newInvalidRowIDError(section string, err error) *SessionError {
	return &SessionError{
		Code:    ErrCodeInvalidRowID,
		Message: err.Error(),
		Section: section,
	}
}

func newDuplicateRowIDError(section, id string) *SessionError {
	return &SessionError{
		Code:    ErrCodeDuplicateRowID,
		Message: fmt.Sprintf("row id %q already exists in this session", id),
		Section: section,
	}
}

func newFinalizedError() *SessionError {
	return &SessionError{
		Code:    ErrCodeSessionFinalized,
		Message: "session already finalized",
	}
}
