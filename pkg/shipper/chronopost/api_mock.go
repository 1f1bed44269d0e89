package chronopost

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

const mockResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns1:shippingV3Response xmlns:ns1="http://cxf.shipping.soap.chronopost.fr/">
      <return>
        <errorCode>%s</errorCode>
        <errorMessage>%s</errorMessage>
        <skybillNumber>%s</skybillNumber>
        <skybill>%s</skybill>
      </return>
    </ns1:shippingV3Response>
  </soap:Body>
</soap:Envelope>`

// MockTransport answers like the Chronopost web service without any
// network access.
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

// MockResponse builds a SOAP response as the web service would return it.
func MockResponse(errorCode, errorMessage, skybillNumber string, label []byte) []byte {
	return []byte(fmt.Sprintf(mockResponse, errorCode, errorMessage, skybillNumber,
		base64.StdEncoding.EncodeToString(label)))
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
		ex.Response = MockResponse("2", "Simulated authentication error", "", nil)
		return handleResponse(ex)
	}

	number := fmt.Sprintf("XY%09dFR", time.Now().UnixNano()%1000000000)
	ex.Response = MockResponse("0", "", number, []byte("%PDF-1.4 mock label "+number))
	return handleResponse(ex)
}
