package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError is a command-level error. Code identifies the error for
// errors.Is comparisons; Prefix is the leading word of the RESP error reply
// ("ERR", "WRONGTYPE", ...) and Message the text that follows it.
type DomainError struct {
	Code    string // Error code (e.g., "RK-CMD-4001")
	Prefix  string // RESP error prefix
	Message string // Human-readable message sent to the client
	Details string // Optional additional details, never sent to the client
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// RESP returns the text of the error reply, without the leading '-'.
func (e *DomainError) RESP() string {
	if e.Prefix == "" {
		return e.Message
	}
	return e.Prefix + " " + e.Message
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the "ERR" prefix.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Prefix:  "ERR",
		Message: message,
	}
}

// WithMessage returns a copy of the error with a different client message.
func (e *DomainError) WithMessage(message string) *DomainError {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// ReplyText returns the RESP error text for any error. Errors that are not
// a DomainError are reported with the generic "ERR" prefix.
func ReplyText(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.RESP()
	}
	return "ERR " + err.Error()
}

// ============================================================================
// Command Errors (CMD)
// ============================================================================

var (
	// ErrSyntax indicates an unknown option or a malformed option list.
	ErrSyntax = NewDomainError("RK-CMD-4001", "syntax error")

	// ErrNotInteger indicates an argument that must be an integer is not one.
	ErrNotInteger = NewDomainError("RK-CMD-4002", "value is not an integer or out of range")

	// ErrInvalidExpire indicates a negative or overflowing expiration.
	ErrInvalidExpire = NewDomainError("RK-CMD-4003", "invalid expire time")

	// ErrWrongArity indicates a command was given the wrong number of arguments.
	ErrWrongArity = NewDomainError("RK-CMD-4004", "wrong number of arguments")

	// ErrUnknownCommand indicates the command name is not recognized.
	ErrUnknownCommand = NewDomainError("RK-CMD-4040", "unknown command")

	// ErrInvalidCursor indicates a SCAN cursor that could not be parsed.
	ErrInvalidCursor = NewDomainError("RK-CMD-4005", "invalid cursor")
)

// ============================================================================
// Connection Errors (CONN)
// ============================================================================

var (
	// ErrProtocol indicates malformed request framing. The connection is
	// closed after this error is reported.
	ErrProtocol = NewDomainError("RK-CONN-4000", "Protocol error")

	// ErrMaxClients indicates the connection limit was reached.
	ErrMaxClients = NewDomainError("RK-CONN-4290", "max number of clients reached")

	// ErrRateLimited indicates the connection exceeded its command rate.
	ErrRateLimited = NewDomainError("RK-CONN-4291", "rate limit exceeded")
)

// WrongArity builds the arity error for the named command.
func WrongArity(name string) *DomainError {
	return ErrWrongArity.WithMessage(
		fmt.Sprintf("wrong number of arguments for '%s' command", strings.ToLower(name)))
}

// InvalidExpire builds the expiration error for the named command.
func InvalidExpire(name string) *DomainError {
	return ErrInvalidExpire.WithMessage(
		fmt.Sprintf("invalid expire time in '%s' command", strings.ToLower(name)))
}

// UnknownCommand builds the error for an unrecognized command. Like Redis,
// the message quotes the first few arguments.
func UnknownCommand(name string, args [][]byte) *DomainError {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown command '%s', with args beginning with: ", name)
	for i, a := range args {
		if i == 8 {
			break
		}
		fmt.Fprintf(&b, "'%s' ", a)
	}
	return ErrUnknownCommand.WithMessage(b.String())
}

// ProtocolError builds the protocol error reported before a connection is
// closed.
func ProtocolError(detail string) *DomainError {
	return ErrProtocol.WithMessage("Protocol error: " + detail)
}
