package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiftError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with SiftError
	siftErr := New(ErrCodeSnapshotNotFound, "snapshot not found: index.fsif", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, siftErr)
	assert.Equal(t, originalErr, errors.Unwrap(siftErr))
	assert.True(t, errors.Is(siftErr, originalErr))
}

func TestSiftError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "snapshot error",
			code:     ErrCodeCorruptSnapshot,
			message:  "bad magic",
			expected: "[ERR_205_CORRUPT_SNAPSHOT] bad magic",
		},
		{
			name:     "source error",
			code:     ErrCodeSourceUnavailable,
			message:  "metadata source unreachable",
			expected: "[ERR_207_SOURCE_UNAVAILABLE] metadata source unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestSiftError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code
	err1 := New(ErrCodeUnknownFile, "file A unknown", nil)
	err2 := New(ErrCodeUnknownFile, "file B unknown", nil)

	// Then: they match by code
	assert.True(t, errors.Is(err1, err2))
}

func TestSiftError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeUnknownFile, "file unknown", nil)
	err2 := New(ErrCodeConfigNotFound, "config not found", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestSiftError_WithDetail_AddsContext(t *testing.T) {
	err := New(ErrCodeUnknownFile, "file unknown", nil).
		WithDetail("file_id", "f42").
		WithDetail("operation", "record_interaction")

	require.NotNil(t, err.Details)
	assert.Equal(t, "f42", err.Details["file_id"])
	assert.Equal(t, "record_interaction", err.Details["operation"])
}

func TestSiftError_CategoryDerivedFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeCorruptSnapshot, CategoryIO},
		{ErrCodeSourceUnavailable, CategoryIO},
		{ErrCodeInvalidQuery, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestSiftError_SourceUnavailableIsRetryable(t *testing.T) {
	// ReindexAll against a dead source may simply be tried again; the
	// engine keeps its prior READY state.
	err := SourceError("database locked", nil)

	assert.True(t, IsRetryable(err))
	assert.False(t, IsFatal(err))
}

func TestSiftError_CorruptSnapshotIsRecoverable(t *testing.T) {
	// Corruption forces a rebuild; it must never be classified fatal.
	err := CorruptSnapshotError("truncated payload", nil)

	assert.False(t, IsFatal(err))
	assert.Equal(t, SeverityWarning, err.Severity)
	assert.NotEmpty(t, err.Suggestion)
}

func TestSiftError_InvariantViolationIsFatal(t *testing.T) {
	err := New(ErrCodeInvariant, "posting without token", nil)

	assert.True(t, IsFatal(err))
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeQueryEmpty, GetCode(New(ErrCodeQueryEmpty, "empty", nil)))
	assert.Empty(t, GetCode(errors.New("plain")))
	assert.Empty(t, GetCode(nil))
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, CategoryValidation, GetCategory(New(ErrCodeInvalidInput, "bad", nil)))
	assert.Empty(t, GetCategory(errors.New("plain")))
}
