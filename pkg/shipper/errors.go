package shipper

import (
	"errors"
	"fmt"
)

// Codes assigned by the framework when the carrier supplies none.
const (
	CodeUnexpectedStatus = "UNEXPECTED_STATUS"
	CodeTransport        = "TRANSPORT_ERROR"
	CodeFault            = "SOAP_FAULT"
)

// Sentinel errors, matched with errors.Is against the typed errors below.
var (
	// ErrValidation indicates caller input failed schema rules.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidInput indicates the encoder rejected structurally valid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCarrier indicates the remote carrier reported a failure.
	ErrCarrier = errors.New("carrier error")

	// ErrDecode indicates a nominally successful response could not be parsed.
	ErrDecode = errors.New("decode error")

	// ErrSchemaConfig indicates a carrier schema override table is invalid.
	ErrSchemaConfig = errors.New("invalid schema configuration")

	// ErrServiceUnavailable indicates the carrier service is not responding.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrInvalidAddress indicates the carrier rejected an address field.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// ValidationError reports one field that failed schema rules.
type ValidationError struct {
	Group  Group
	Field  string
	Path   string // e.g. "parcels[0].weight"
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Path, e.Reason)
}

// Is implements errors.Is for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// InvalidInputError reports input the encoder refuses to handle.
type InvalidInputError struct {
	Carrier string
	Action  string
	Reason  string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s (%s): %s", ErrInvalidInput, e.Carrier, e.Action, e.Reason)
}

// Is implements errors.Is for InvalidInputError.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// CarrierError represents a failure reported by a shipping carrier.
type CarrierError struct {
	Carrier    string
	Code       string
	Tag        string // carrier field code, when known
	Field      string // logical field name, when known
	Message    string
	StatusCode int
	Retryable  bool
	Raw        *Exchange
	Class      error // optional sentinel such as ErrServiceUnavailable
	Cause      error
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierError.
// Two carrier errors match when their codes match.
func (e *CarrierError) Is(target error) bool {
	if target == ErrCarrier {
		return true
	}
	if e.Class != nil && target == e.Class {
		return true
	}
	t, ok := target.(*CarrierError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(carrier, code, message string) *CarrierError {
	return &CarrierError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *CarrierError) WithStatusCode(code int) *CarrierError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *CarrierError) WithRetryable(retryable bool) *CarrierError {
	e.Retryable = retryable
	return e
}

// WithRaw attaches the raw exchange for diagnostics.
func (e *CarrierError) WithRaw(raw Exchange) *CarrierError {
	e.Raw = &raw
	if e.StatusCode == 0 {
		e.StatusCode = raw.StatusCode
	}
	return e
}

// WithField records which carrier tag and logical field caused the error.
func (e *CarrierError) WithField(tag, field string) *CarrierError {
	e.Tag = tag
	e.Field = field
	return e
}

// WithClass attaches a sentinel the error should match with errors.Is.
func (e *CarrierError) WithClass(class error) *CarrierError {
	e.Class = class
	return e
}

// DecodeError reports response data that could not be parsed even
// though the carrier signalled success.
type DecodeError struct {
	Carrier string
	Reason  string
	Raw     *Exchange
	Cause   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", ErrDecode, e.Carrier, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", ErrDecode, e.Carrier, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// NewDecodeError creates a DecodeError carrying the raw exchange.
func NewDecodeError(carrier, reason string, raw Exchange, cause error) *DecodeError {
	return &DecodeError{
		Carrier: carrier,
		Reason:  reason,
		Raw:     &raw,
		Cause:   cause,
	}
}

// IsRetryable returns true if the error is a CarrierError marked
// retryable. The framework never retries; callers own retry policy.
func IsRetryable(err error) bool {
	var carrierErr *CarrierError
	if errors.As(err, &carrierErr) {
		return carrierErr.Retryable
	}
	return false
}

// Kind returns a short label for the error taxonomy entry err belongs to.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrCarrier):
		return "carrier"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrCarrierNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
