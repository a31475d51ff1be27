package errors

import "strings"

// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Storage errors (open, schema)
//   - 3XX: Index write/read errors
//   - 4XX: Validation and auth errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates index storage errors.
	CategoryStorage Category = "STORAGE"
	// CategoryIndex indicates index read/write errors.
	CategoryIndex Category = "INDEX"
	// CategoryValidation indicates input validation and auth errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Storage errors (200-299)
	ErrCodeStoreOpen    = "ERR_201_STORE_OPEN"
	ErrCodeStoreClosed  = "ERR_202_STORE_CLOSED"
	ErrCodeCorruptIndex = "ERR_203_CORRUPT_INDEX"

	// Index errors (300-399)
	ErrCodeIndexWrite  = "ERR_301_INDEX_WRITE"
	ErrCodeIndexDelete = "ERR_302_INDEX_DELETE"
	ErrCodeQueryFailed = "ERR_303_QUERY_FAILED"

	// Validation and auth errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeUnauthorized = "ERR_402_UNAUTHORIZED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 || !strings.HasPrefix(code, "ERR_") {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryIndex
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// retryableCodes are transient failures the caller may retry.
// Index writes and queries can fail on lock contention; validation and
// config errors never heal on retry.
var retryableCodes = map[string]struct{}{
	ErrCodeIndexWrite:  {},
	ErrCodeIndexDelete: {},
	ErrCodeQueryFailed: {},
}

// isRetryableCode reports whether the code marks a retryable failure.
func isRetryableCode(code string) bool {
	_, ok := retryableCodes[code]
	return ok
}
