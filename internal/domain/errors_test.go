package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	err := DayLocked("2024-01-15")
	assert.Equal(t, "day 2024-01-15 is locked", err.Error())

	wrapped := Wrap(CodeIO, "failed to write tags file", errors.New("disk full"))
	assert.Equal(t, "failed to write tags file: disk full", wrapped.Error())

	bare := &Error{Code: CodeConnection}
	assert.Equal(t, "CONNECTION", bare.Error())
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("replace day: %w", DayLocked("2024-01-15"))

	assert.True(t, errors.Is(err, ErrDayLocked))
	assert.False(t, errors.Is(err, ErrEntryLocked))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeSetup, "failed to open database", cause)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrSetup))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"entry_locked", EntryLocked(3), CodeEntryLocked},
		{"not_found", fmt.Errorf("update: %w", EntryNotFound(9)), CodeNotFound},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestIsLockViolation(t *testing.T) {
	assert.True(t, IsLockViolation(DayLocked("2024-01-01")))
	assert.True(t, IsLockViolation(EntryLocked(1)))
	assert.False(t, IsLockViolation(EntryNotFound(1)))
	assert.False(t, IsLockViolation(nil))
}
