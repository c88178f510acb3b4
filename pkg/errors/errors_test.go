package errors

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch")

	if err.Code != ErrCodeNetwork {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNetwork)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeNetwork,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeSchemaInvalid, "test"),
			expected: ErrCodeSchemaInvalid,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJobError(t *testing.T) {
	start := time.Now().Add(-1500 * time.Millisecond)
	err := NewJobError(PhaseMerge, start, New(ErrCodeSchemaInvalid, "duplicate node id"))

	if err.Code != ErrCodeSchemaInvalid {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeSchemaInvalid)
	}
	if err.Phase != PhaseMerge {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseMerge)
	}
	if err.Elapsed < 1500*time.Millisecond {
		t.Errorf("Elapsed = %v, want >= 1.5s", err.Elapsed)
	}
	if !Is(err, ErrCodeSchemaInvalid) {
		t.Error("Is(err, SCHEMA_INVALID) = false, want true")
	}

	plain := NewJobError(PhaseExtract, time.Now(), errors.New("boom"))
	if plain.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", plain.Code, ErrCodeInternal)
	}
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name   string
		ctxErr error
		want   Code
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"cancel", context.Canceled, ErrCodeCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromContext(PhaseExtract, time.Now(), tt.ctxErr)
			if err.Code != tt.want {
				t.Errorf("Code = %v, want %v", err.Code, tt.want)
			}
			if !IsFatal(err) {
				t.Error("IsFatal() = false, want true")
			}
			if !errors.Is(err, tt.ctxErr) {
				t.Error("errors.Is(err, ctxErr) = false, want true")
			}
		})
	}

	if IsFatal(New(ErrCodeAssetMissing, "x")) {
		t.Error("IsFatal(ASSET_MISSING) = true, want false")
	}
}
