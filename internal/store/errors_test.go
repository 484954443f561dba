package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundSentinels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"task", ErrTaskNotFound, true},
		{"reminder", ErrReminderNotFound, true},
		{"wrapped reminder", fmt.Errorf("loading: %w", ErrReminderNotFound), true},
		{
			"store error wrapping not found",
			NewStoreError("reminder", "get", "no rows", ErrReminderNotFound),
			true,
		},
		{"duplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, ErrNotFound))
		})
	}

	assert.False(t, errors.Is(ErrTaskNotFound, ErrReminderNotFound))
}

func TestStoreError(t *testing.T) {
	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("reminder", "mark_sent", "already cancelled", ErrStateConflict)

		assert.Equal(t,
			"mark_sent operation on reminder failed: already cancelled: state conflict",
			err.Error())
		assert.ErrorIs(t, err, ErrStateConflict)

		var storeErr *StoreError
		assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &storeErr))
		assert.Equal(t, "reminder", storeErr.Entity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("task", "get", "bad id", nil)
		assert.Equal(t, "get operation on task failed: bad id", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
