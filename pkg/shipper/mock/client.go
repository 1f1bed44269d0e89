// Package mock provides mock carrier parts for testing.
package mock

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Client is a mock carrier for testing. It validates input against the
// base schema and returns a synthetic label.
type Client struct {
	name    string
	schema  *shipper.Schema
	actions []string

	// OnExecute, when set, replaces the default behavior.
	OnExecute func(ctx context.Context, raw map[string]any, action string) (*shipper.Result, error)
}

var _ shipper.Carrier = (*Client)(nil)

// New creates a new mock carrier.
func New(name string) *Client {
	return &Client{
		name:    name,
		schema:  shipper.BaseSchema(),
		actions: []string{"shipping"},
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Schema returns the base schema.
func (c *Client) Schema() *shipper.Schema {
	return c.schema
}

// Actions returns the supported actions.
func (c *Client) Actions() []string {
	return slices.Clone(c.actions)
}

// Execute returns a synthetic result for each parcel.
func (c *Client) Execute(ctx context.Context, raw map[string]any, action string) (*shipper.Result, error) {
	if c.OnExecute != nil {
		return c.OnExecute(ctx, raw, action)
	}
	if err := shipper.CheckAction(c.name, action, c.actions); err != nil {
		return nil, err
	}

	s, err := shipper.Normalize(raw, c.schema)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &shipper.Result{Parcels: make([]shipper.ParcelResult, 0, len(s.Parcels))}
	for i, p := range s.Parcels {
		number := fmt.Sprintf("%s%d%d", c.name[:min(3, len(c.name))], now.UnixNano()%1000000000, i)
		result.Parcels = append(result.Parcels, shipper.ParcelResult{
			ID:        i + 1,
			Reference: p.String("reference"),
			Tracking: shipper.Tracking{
				Number: number,
				URL:    fmt.Sprintf("https://tracking.example.com/%s/%s", c.name, number),
			},
			Label: shipper.Label{
				Data: []byte("mock label " + number),
				Name: "label_" + number,
				Type: s.Service.String("labelFormat"),
			},
		})
	}
	return result, nil
}
