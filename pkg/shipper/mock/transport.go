package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Transport is a stub shipper.Transport that replays a canned response
// and records every payload it receives.
type Transport struct {
	Response        []byte
	SimulateLatency time.Duration

	// OnSend, when set, replaces the canned response.
	OnSend func(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error)

	mu       sync.Mutex
	payloads []*shipper.Payload
}

var _ shipper.Transport = (*Transport)(nil)

// NewTransport returns a Transport that answers every call with response.
func NewTransport(response []byte) *Transport {
	return &Transport{Response: response}
}

// Send records p and returns the canned response.
func (t *Transport) Send(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error) {
	t.mu.Lock()
	t.payloads = append(t.payloads, p)
	t.mu.Unlock()

	if t.SimulateLatency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(t.SimulateLatency):
		}
	}

	if t.OnSend != nil {
		return t.OnSend(ctx, p)
	}
	return &shipper.TransportResult{
		Body: t.Response,
		Raw:  shipper.Exchange{Request: p.Body, StatusCode: 200, Response: t.Response},
	}, nil
}

// Payloads returns the payloads sent so far.
func (t *Transport) Payloads() []*shipper.Payload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*shipper.Payload(nil), t.payloads...)
}
