package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"insufficient data", NewInsufficientData(2, 3), ErrInsufficientData, true},
		{"extraction wrapped", fmt.Errorf("analyze: %w", NewExtractionError("no json", nil)), ErrExtractionFailed, true},
		{"persistence", NewPersistenceError("commit", errors.New("disk full")), ErrPersistence, true},
		{"not found", NewNotFoundError("profile not found"), ErrNotFound, true},
		{"different code", NewNotFoundError("profile not found"), ErrPersistence, false},
		{"plain error", errors.New("boom"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestCodeAndUnwrap(t *testing.T) {
	t.Parallel()

	err := NewExtractionError("generation timed out", context.DeadlineExceeded)
	assert.Equal(t, CodeExtractionFailed, Code(fmt.Errorf("wrapped: %w", err)))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "generation timed out: context deadline exceeded", err.Error())

	assert.Equal(t, CodeUnknown, Code(errors.New("plain")))
	assert.Equal(t, "insufficient data: 1 entries, need at least 3", NewInsufficientData(1, 3).Error())
}
