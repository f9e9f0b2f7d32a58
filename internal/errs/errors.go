// Package errs provides the unified error type used across all of shoal-go.
//
// Every subsystem (stream, transcoder, docstore, sources, …) wraps its
// native errors into *errs.Error before returning them to callers. Callers
// use the Is* predicates to handle errors without importing backend-specific
// packages.
//
// Usage:
//
//	// In a backend — wrap native errors:
//	return errs.Wrap(errs.ErrKindTimeout, "query timed out", nativeErr)
//
//	// In a caller — check error kind:
//	if errs.IsDocumentNotFound(err) {
//	    return defaultDoc, nil
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing backend-specific codes.
// All backends (document store, row sources, codecs, …) map their native
// errors to one of these kinds, giving callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown               ErrKind = iota
	ErrKindInternal                      // unexpected failure inside the client
	ErrKindAlreadyStreamed               // a one-shot result was started or read twice
	ErrKindEmptyDelivery                 // row queue empty right after a produce
	ErrKindTimeout                       // deadline or cancellation on the server side
	ErrKindAuthenticationFailed          // credentials rejected by the server
	ErrKindParsingFailed                 // server could not parse the query
	ErrKindIndexNotFound                 // query referenced a missing index
	ErrKindRateLimited                   // server-side rate limit hit
	ErrKindQuotaExceeded                 // server-side quota exhausted
	ErrKindDocumentNotFound              // no document under the given key
	ErrKindDocumentExists                // insert collided with an existing document
	ErrKindCASMismatch                   // compare-and-swap token was stale
	ErrKindConnectionFailed              // cannot reach the backend
	ErrKindUnsupportedType               // codec cannot encode this value type
	ErrKindUnsupportedFormat             // codec cannot decode this format tag
	ErrKindInvalidInput                  // bad arguments from the caller
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindInternal:
		return "internal"
	case ErrKindAlreadyStreamed:
		return "already_streamed"
	case ErrKindEmptyDelivery:
		return "empty_delivery"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindAuthenticationFailed:
		return "authentication_failed"
	case ErrKindParsingFailed:
		return "parsing_failed"
	case ErrKindIndexNotFound:
		return "index_not_found"
	case ErrKindRateLimited:
		return "rate_limited"
	case ErrKindQuotaExceeded:
		return "quota_exceeded"
	case ErrKindDocumentNotFound:
		return "document_not_found"
	case ErrKindDocumentExists:
		return "document_exists"
	case ErrKindCASMismatch:
		return "cas_mismatch"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindUnsupportedType:
		return "unsupported_type"
	case ErrKindUnsupportedFormat:
		return "unsupported_format"
	case ErrKindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all shoal-go subsystems.
// Backends produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original backend-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates an *Error with a formatted message and no cause.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsInternal reports whether err is an unexpected client-side failure.
func IsInternal(err error) bool {
	return kindOf(err) == ErrKindInternal
}

// IsAlreadyStreamed reports whether err came from re-driving a one-shot result.
func IsAlreadyStreamed(err error) bool {
	return kindOf(err) == ErrKindAlreadyStreamed
}

// IsEmptyDelivery reports whether err is the internal-consistency failure
// raised when the row queue is empty immediately after a produce.
func IsEmptyDelivery(err error) bool {
	return kindOf(err) == ErrKindEmptyDelivery
}

// IsTimeout reports whether err was caused by a server-side deadline.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsAuthenticationFailed reports whether err is a credential failure.
func IsAuthenticationFailed(err error) bool {
	return kindOf(err) == ErrKindAuthenticationFailed
}

// IsParsingFailed reports whether the server rejected the query text.
func IsParsingFailed(err error) bool {
	return kindOf(err) == ErrKindParsingFailed
}

// IsIndexNotFound reports whether the query referenced a missing index.
func IsIndexNotFound(err error) bool {
	return kindOf(err) == ErrKindIndexNotFound
}

// IsRateLimited reports whether the server throttled the request.
func IsRateLimited(err error) bool {
	return kindOf(err) == ErrKindRateLimited
}

// IsQuotaExceeded reports whether a server-side quota was exhausted.
func IsQuotaExceeded(err error) bool {
	return kindOf(err) == ErrKindQuotaExceeded
}

// IsDocumentNotFound reports whether err represents a missing document.
func IsDocumentNotFound(err error) bool {
	return kindOf(err) == ErrKindDocumentNotFound
}

// IsDocumentExists reports whether an insert collided with an existing key.
func IsDocumentExists(err error) bool {
	return kindOf(err) == ErrKindDocumentExists
}

// IsCASMismatch reports whether a compare-and-swap token was stale.
func IsCASMismatch(err error) bool {
	return kindOf(err) == ErrKindCASMismatch
}

// IsConnectionFailed reports whether err is a connectivity failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsUnsupportedType reports whether a codec rejected the value's type.
func IsUnsupportedType(err error) bool {
	return kindOf(err) == ErrKindUnsupportedType
}

// IsUnsupportedFormat reports whether a codec rejected the format tag.
func IsUnsupportedFormat(err error) bool {
	return kindOf(err) == ErrKindUnsupportedFormat
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
