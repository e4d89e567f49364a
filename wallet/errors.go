package wallet

import (
	"errors"
	"fmt"
)

var (
	// ErrWalletNotFound is returned when no provider could be resolved after the full wait.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletDisconnected is returned when an operation needs an active connection.
	ErrWalletDisconnected = errors.New("wallet disconnected")
	// ErrWalletConnection is matched by every *ConnectionError.
	ErrWalletConnection = errors.New("wallet connection error")
)

// ConnectionError reports a failed connection attempt.
type ConnectionError struct {
	Message string
	Err     error
}

// NewConnectionError returns a ConnectionError with msg and an optional cause.
func NewConnectionError(msg string, cause error) *ConnectionError {
	return &ConnectionError{Message: msg, Err: cause}
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrWalletConnection, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", ErrWalletConnection, e.Message)
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrWalletConnection
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// EIP-1193 and EIP-1474 provider error codes.
const (
	CodeUserRejectedRequest = 4001
	CodeUnauthorized        = 4100
	CodeUnsupportedMethod   = 4200
	CodeDisconnected        = 4900
	CodeChainDisconnected   = 4901
	CodeInvalidParams       = -32602
	CodeInternalError       = -32603
)

// ProviderRPCError is the error shape returned by EIP-1193 providers and carried by the
// disconnect event.
type ProviderRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ProviderRPCError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// ErrorCode returns the numeric code. It makes ProviderRPCError satisfy go-ethereum's rpc.Error.
func (e *ProviderRPCError) ErrorCode() int { return e.Code }

// ErrorData returns the optional error data, see go-ethereum's rpc.DataError.
func (e *ProviderRPCError) ErrorData() any { return e.Data }

// IsUserRejected reports whether err carries the EIP-1193 "user rejected request" code.
func IsUserRejected(err error) bool {
	var perr *ProviderRPCError
	if errors.As(err, &perr) {
		return perr.Code == CodeUserRejectedRequest
	}

	return false
}
