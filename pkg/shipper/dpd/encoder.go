package dpd

import (
	"context"
	"fmt"
	"slices"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

var actions = []string{"shipping"}

// Encoder maps shipments to DPD CreateShipmentWithLabelsBc requests.
type Encoder struct{}

var _ shipper.Encoder = Encoder{}

// Actions returns the supported actions.
func (Encoder) Actions() []string {
	return slices.Clone(actions)
}

// Encode reshapes the shipment, drops empty values and serializes the
// request and the credentials header.
func (Encoder) Encode(_ context.Context, s *shipper.Shipment, action string) (*shipper.Payload, error) {
	if err := shipper.CheckAction(carrierName, action, actions); err != nil {
		return nil, err
	}
	if _, err := shipper.SingleParcel(carrierName, action, s); err != nil {
		return nil, err
	}

	tree, _ := shipper.PruneEmpty(reshape(s)).(map[string]any)

	body, err := marshalTree(operation, Namespace, map[string]any{"request": tree})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s request: %w", carrierName, err)
	}
	header, err := marshalTree("UserCredentials", Namespace, map[string]any{
		"userid":   s.Auth.String("login"),
		"password": s.Auth.String("password"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s credentials: %w", carrierName, err)
	}

	return &shipper.Payload{
		Carrier:      carrierName,
		Action:       action,
		Header:       header,
		Body:         body,
		Tree:         tree,
		OutputFormat: s.Service.String("labelFormat"),
	}, nil
}
