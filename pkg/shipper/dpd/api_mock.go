package dpd

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

const mockResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <CreateShipmentWithLabelsBcResponse xmlns="http://www.cargonet.software">
      <CreateShipmentWithLabelsBcResult>
        <shipments>
          <ShipmentBc>
            <Shipment>
              <parcelnumber>%s</parcelnumber>
              <barcode>%s</barcode>
            </Shipment>
          </ShipmentBc>
        </shipments>
        <labels>
          <Label><label>%s</label><type>EPRINT</type></Label>
          <Label><label>%s</label><type>EPRINTATTACHMENT</type></Label>
        </labels>
      </CreateShipmentWithLabelsBcResult>
    </CreateShipmentWithLabelsBcResponse>
  </soap:Body>
</soap:Envelope>`

const mockFault = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>%s</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`

// MockTransport answers like the DPD web service without any network
// access.
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

// MockResponse builds a successful SOAP response with a parcel label and
// one attachment.
func MockResponse(parcelNumber string, label, attachment []byte) []byte {
	return []byte(fmt.Sprintf(mockResponse, parcelNumber, "00"+parcelNumber,
		base64.StdEncoding.EncodeToString(label),
		base64.StdEncoding.EncodeToString(attachment)))
}

// MockFault builds a SOAP fault response.
func MockFault(message string) []byte {
	return []byte(fmt.Sprintf(mockFault, message))
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
		ex.StatusCode = 500
		ex.Response = MockFault("Simulated authentication error")
		return handleResponse(ex)
	}

	number := fmt.Sprintf("250%011d", time.Now().UnixNano()%100000000000)
	ex.Response = MockResponse(number, []byte("^XA^FDmock label "+number+"^FS^XZ"), []byte("%PDF-1.4 mock"))
	return handleResponse(ex)
}
