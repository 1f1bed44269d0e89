package gls

import (
	"context"
	"fmt"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// MockTransport answers like the Unibox gateway without any network
// access. It echoes the request fields back, as the gateway does.
type MockTransport struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnSend func(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error)
}

var _ shipper.Transport = (*MockTransport)(nil)

// NewMockTransport creates a mock transport with default behavior.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// MockResponse builds a response line: RESULT, the echoed request
// fields, then the parcel number when there is one.
func MockResponse(result string, echo map[string]any, parcelNumber string) []byte {
	fields := make(map[string]any, len(echo)+2)
	for k, v := range echo {
		fields[k] = v
	}
	fields[tagResult] = result
	if parcelNumber != "" {
		fields[tagParcelNumber] = parcelNumber
	}
	line, _ := Marshal(fields)
	return line
}

// Send returns a canned response through the real response handling.
func (m *MockTransport) Send(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}
	if m.OnSend != nil {
		return m.OnSend(ctx, p)
	}

	ex := shipper.Exchange{Request: p.Body, StatusCode: 200}
	if m.SimulateErrors {
		ex.Response = MockResponse(resultUnavailable+":", p.Tree, "")
		return handleResponse(ex)
	}

	number := fmt.Sprintf("%011d", time.Now().UnixNano()%100000000000)
	ex.Response = MockResponse(resultOK+":", p.Tree, number)
	return handleResponse(ex)
}
