// Package errors provides structured error handling for filesift.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (snapshot files, metadata sources)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates snapshot and metadata-source I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	// IO errors (200-299)
	ErrCodeSnapshotNotFound   = "ERR_201_SNAPSHOT_NOT_FOUND"
	ErrCodeSnapshotPermission = "ERR_202_SNAPSHOT_PERMISSION"
	ErrCodeSnapshotLocked     = "ERR_203_SNAPSHOT_LOCKED"
	ErrCodeSnapshotWrite      = "ERR_204_SNAPSHOT_WRITE"
	ErrCodeCorruptSnapshot    = "ERR_205_CORRUPT_SNAPSHOT"
	ErrCodeSnapshotVersion    = "ERR_206_SNAPSHOT_VERSION"
	ErrCodeSourceUnavailable  = "ERR_207_SOURCE_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput       = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidQuery       = "ERR_403_INVALID_QUERY"
	ErrCodeQueryEmpty         = "ERR_404_QUERY_EMPTY"
	ErrCodeInvalidPath        = "ERR_406_INVALID_PATH"
	ErrCodeUnknownFile        = "ERR_407_UNKNOWN_FILE"
	ErrCodeInvalidInteraction = "ERR_408_INVALID_INTERACTION"

	// Internal errors (500-599)
	ErrCodeInternal     = "ERR_501_INTERNAL"
	ErrCodeInvariant    = "ERR_502_INVARIANT_VIOLATION"
	ErrCodeSearchFailed = "ERR_503_SEARCH_FAILED"
	ErrCodeIndexFailed  = "ERR_505_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract the leading digit of the numeric portion (e.g., "1" from
	// "ERR_101_CONFIG_NOT_FOUND").
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInvariant:
		// A posting/token mismatch is a programming defect, not a condition
		// to recover from.
		return SeverityFatal
	case ErrCodeCorruptSnapshot, ErrCodeSnapshotVersion:
		// Recoverable by design: a bad snapshot forces a full rebuild.
		return SeverityWarning
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeSourceUnavailable, ErrCodeSnapshotLocked:
		return true
	default:
		return false
	}
}
