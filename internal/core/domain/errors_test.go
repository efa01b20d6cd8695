package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("RK-TEST-1000", "test message"),
			expected: "[RK-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("RK-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[RK-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_RESP(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{"syntax", ErrSyntax, "ERR syntax error"},
		{"not integer", ErrNotInteger, "ERR value is not an integer or out of range"},
		{"details hidden", ErrSyntax.WithDetails("EX and PX"), "ERR syntax error"},
		{"custom prefix", &DomainError{Code: "X", Prefix: "WRONGTYPE", Message: "bad"}, "WRONGTYPE bad"},
		{"no prefix", &DomainError{Code: "X", Message: "bare"}, "bare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.RESP(); got != tt.expected {
				t.Errorf("RESP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("RK-TEST-1000", "message 1")
	err2 := NewDomainError("RK-TEST-1000", "message 2")
	err3 := NewDomainError("RK-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	// Builders keep the code of the template error.
	if !errors.Is(WrongArity("get"), ErrWrongArity) {
		t.Error("WrongArity() should match ErrWrongArity")
	}
	if !errors.Is(InvalidExpire("set"), ErrInvalidExpire) {
		t.Error("InvalidExpire() should match ErrInvalidExpire")
	}
}

func TestDomainError_Copies(t *testing.T) {
	original := NewDomainError("RK-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")

	withDetails := original.WithDetails("additional details")
	withCause := original.WithCause(cause)
	withMessage := original.WithMessage("other")

	if original.Details != "" || original.Cause != nil || original.Message != "original message" {
		t.Error("With* should not modify the original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q", withDetails.Details)
	}
	if errors.Unwrap(withCause) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(withCause), cause)
	}
	if withMessage.Message != "other" || withMessage.Code != original.Code {
		t.Errorf("WithMessage() = %+v", withMessage)
	}
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{"arity lowercases", WrongArity("GET"), "ERR wrong number of arguments for 'get' command"},
		{"invalid expire", InvalidExpire("SET"), "ERR invalid expire time in 'set' command"},
		{"unknown no args", UnknownCommand("FOO", nil), "ERR unknown command 'FOO', with args beginning with: "},
		{"unknown with args", UnknownCommand("foo", [][]byte{[]byte("a"), []byte("b")}),
			"ERR unknown command 'foo', with args beginning with: 'a' 'b' "},
		{"protocol", ProtocolError("invalid bulk length"), "ERR Protocol error: invalid bulk length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.RESP(); got != tt.expected {
				t.Errorf("RESP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestReplyText(t *testing.T) {
	if got := ReplyText(fmt.Errorf("wrapped: %w", ErrSyntax)); got != "ERR syntax error" {
		t.Errorf("ReplyText(wrapped) = %q", got)
	}
	if got := ReplyText(errors.New("boom")); got != "ERR boom" {
		t.Errorf("ReplyText(plain) = %q", got)
	}
}
