// Package errs defines the error kinds surfaced at the action boundary of
// the mint terminal. Every kind is recoverable: the caller shows it to the
// user and returns to an interactive state.
package errs

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

// Error kinds.
const (
	KindUserRejected        Kind = "USER_REJECTED"
	KindNetworkMismatch     Kind = "NETWORK_MISMATCH"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindAlreadyMinted       Kind = "ALREADY_MINTED"
	KindRPCFailure          Kind = "RPC_FAILURE"
	KindTransactionReverted Kind = "TRANSACTION_REVERTED"
	KindNotConnected        Kind = "NOT_CONNECTED"
	KindBusy                Kind = "BUSY"
	KindSoldOut             Kind = "SOLD_OUT"
	KindSaleNotStarted      Kind = "SALE_NOT_STARTED"
)

// Error is the structured error type.
type Error struct {
	Kind       Kind   // category, used by errors.Is
	Op         string // operation that failed, e.g. "mint"
	Message    string // human-readable message
	Suggestion string // what the user can do about it
	Cause      error  // underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel errors, one per kind.
var (
	ErrUserRejected = &Error{
		Kind:       KindUserRejected,
		Message:    "request rejected in wallet",
		Suggestion: "Approve the request in the wallet prompt to continue.",
	}

	ErrNetworkMismatch = &Error{
		Kind:       KindNetworkMismatch,
		Message:    "wallet is on the wrong network",
		Suggestion: "Switch the RPC endpoint to the required network.",
	}

	ErrUnauthorized = &Error{
		Kind:       KindUnauthorized,
		Message:    "only the contract owner can do this",
		Suggestion: "Connect with the owner account.",
	}

	ErrAlreadyMinted = &Error{
		Kind:       KindAlreadyMinted,
		Message:    "this account has already minted",
		Suggestion: "Each address can mint one DePleb.",
	}

	ErrRPCFailure = &Error{
		Kind:       KindRPCFailure,
		Message:    "chain request failed",
		Suggestion: "Check the RPC endpoint and try again.",
	}

	ErrTransactionReverted = &Error{
		Kind:       KindTransactionReverted,
		Message:    "transaction reverted on-chain",
		Suggestion: "Refresh the sale state and try again.",
	}

	ErrNotConnected = &Error{
		Kind:       KindNotConnected,
		Message:    "wallet not connected",
		Suggestion: "Press c to connect a wallet.",
	}

	ErrBusy = &Error{
		Kind:       KindBusy,
		Message:    "a transaction is already in flight",
		Suggestion: "Wait for the pending transaction to confirm.",
	}

	ErrSoldOut = &Error{
		Kind:       KindSoldOut,
		Message:    "collection is sold out",
		Suggestion: "All DePlebs have been minted.",
	}

	ErrSaleNotStarted = &Error{
		Kind:       KindSaleNotStarted,
		Message:    "public sale has not started",
		Suggestion: "Wait for the owner to start the public mint.",
	}
)

// Wrap returns a copy of sentinel annotated with op and cause.
func Wrap(sentinel *Error, op string, cause error) *Error {
	return &Error{
		Kind:       sentinel.Kind,
		Op:         op,
		Message:    sentinel.Message,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
	}
}

// WithMessage returns a copy of sentinel with a custom message.
func WithMessage(sentinel *Error, op, message string) *Error {
	e := Wrap(sentinel, op, nil)
	e.Message = message
	return e
}

// KindOf returns the kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// SuggestionOf returns the actionable suggestion attached to err, if any.
func SuggestionOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Suggestion
	}
	return ""
}

// Title returns a short heading for a notification about err.
func Title(err error) string {
	switch KindOf(err) {
	case KindUserRejected:
		return "Request Rejected"
	case KindNetworkMismatch:
		return "Wrong Network"
	case KindUnauthorized:
		return "Not Authorized"
	case KindAlreadyMinted:
		return "Already Minted"
	case KindRPCFailure:
		return "RPC Failure"
	case KindTransactionReverted:
		return "Transaction Reverted"
	case KindNotConnected:
		return "Not Connected"
	case KindBusy:
		return "Busy"
	case KindSoldOut:
		return "Sold Out"
	case KindSaleNotStarted:
		return "Sale Not Started"
	default:
		return "Error"
	}
}
