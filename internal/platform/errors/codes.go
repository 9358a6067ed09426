// Package errors provides structured error handling shared across service
// boundaries.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeValidation marks malformed assembly input rejected before any work.
	CodeValidation Code = "VALIDATION"

	// CodeMissingProtectedScope marks an assembly with no protected-scope
	// candidate at all; the output contract cannot be met.
	CodeMissingProtectedScope Code = "MISSING_PROTECTED_SCOPE"

	// CodeRenderFailed marks a piece whose content failed to resolve.
	CodeRenderFailed Code = "RENDER_FAILED"

	// CodeNotFound marks a missing content or audit record.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "INTERNAL"
)

// Fatal reports whether an error with this code aborts the whole assembly
// rather than degrading into a drop.
func (c Code) Fatal() bool {
	switch c {
	case CodeValidation, CodeMissingProtectedScope, CodeInternal:
		return true
	default:
		return false
	}
}
