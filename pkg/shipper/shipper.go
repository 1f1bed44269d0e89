// Package shipper provides the carrier adapter framework: a schema-driven
// normalization engine, the Encoder/Transport/Decoder contracts every
// carrier implements, and the Pipeline that composes them.
package shipper

import (
	"context"
	"slices"
	"strings"
)

// Encoder maps a canonical shipment to a carrier wire payload.
// It performs no network access.
type Encoder interface {
	// Actions returns the actions this carrier supports (e.g. "shipping").
	Actions() []string

	// Encode renders the payload for action.
	Encode(ctx context.Context, s *Shipment, action string) (*Payload, error)
}

// Transport sends a payload to the carrier and classifies the response.
// It performs exactly one round trip and never retries.
type Transport interface {
	Send(ctx context.Context, p *Payload) (*TransportResult, error)
}

// Decoder parses a carrier native response into a Result.
type Decoder interface {
	Decode(ctx context.Context, res *TransportResult, outputFormat string) (*Result, error)
}

// Carrier is the facade callers use.
type Carrier interface {
	// Name returns the carrier identifier (e.g., "chronopost", "dpd", "gls").
	Name() string

	// Schema returns the fields this carrier accepts.
	Schema() *Schema

	// Actions returns the supported actions.
	Actions() []string

	// Execute runs normalize, encode, send and decode for one request.
	Execute(ctx context.Context, raw map[string]any, action string) (*Result, error)
}

// CheckAction fails with an InvalidInputError when action is not supported.
func CheckAction(carrier, action string, actions []string) error {
	if slices.Contains(actions, action) {
		return nil
	}
	return &InvalidInputError{
		Carrier: carrier,
		Action:  action,
		Reason:  "action not in " + strings.Join(actions, ", "),
	}
}

// SingleParcel returns the only parcel of s. Multi-parcel shipments are
// not supported.
func SingleParcel(carrier, action string, s *Shipment) (Section, error) {
	if len(s.Parcels) != 1 {
		return nil, &InvalidInputError{
			Carrier: carrier,
			Action:  action,
			Reason:  "multi-parcel shipments are not supported",
		}
	}
	return s.Parcels[0], nil
}
