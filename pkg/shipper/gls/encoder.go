package gls

import (
	"context"
	"fmt"
	"slices"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

var actions = []string{"shipping"}

// Encoder maps shipments to Unibox request lines.
type Encoder struct{}

var _ shipper.Encoder = Encoder{}

// Actions returns the supported actions.
func (Encoder) Actions() []string {
	return slices.Clone(actions)
}

// Encode reshapes the shipment to field codes, drops empty values and
// frames the result.
func (Encoder) Encode(_ context.Context, s *shipper.Shipment, action string) (*shipper.Payload, error) {
	if err := shipper.CheckAction(carrierName, action, actions); err != nil {
		return nil, err
	}
	parcel, err := shipper.SingleParcel(carrierName, action, s)
	if err != nil {
		return nil, err
	}

	tree, _ := shipper.PruneEmpty(reshape(s, parcel)).(map[string]any)
	body, err := Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s request: %w", carrierName, err)
	}

	return &shipper.Payload{
		Carrier:      carrierName,
		Action:       action,
		Body:         body,
		Tree:         tree,
		OutputFormat: s.Service.String("labelFormat"),
	}, nil
}
