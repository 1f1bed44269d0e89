package dpd

import (
	"context"
	"net/http"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/soap"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SOAPTransport is the production Transport for the DPD eprint web
// service.
type SOAPTransport struct {
	url        string
	httpClient shipper.HTTPDoer
	logger     *otelzap.Logger
}

var _ shipper.Transport = (*SOAPTransport)(nil)

// SOAPTransportConfig holds configuration for the SOAP transport.
type SOAPTransportConfig struct {
	URL     string
	Timeout time.Duration
}

// NewSOAPTransport creates a SOAP transport for production use.
func NewSOAPTransport(cfg SOAPTransportConfig, logger *otelzap.Logger) *SOAPTransport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewSOAPTransportWithClient(cfg.URL, &http.Client{Timeout: timeout}, logger)
}

// NewSOAPTransportWithClient creates a SOAP transport using client.
func NewSOAPTransportWithClient(url string, client shipper.HTTPDoer, logger *otelzap.Logger) *SOAPTransport {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return &SOAPTransport{url: url, httpClient: client, logger: logger}
}

// Send wraps the payload with its credentials header and posts it.
func (t *SOAPTransport) Send(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error) {
	msg := soap.Wrap(p.Header, p.Body)

	ex, err := shipper.Post(ctx, t.httpClient, carrierName, t.url, map[string]string{
		"Content-Type": soap.ContentType,
		"SOAPAction":   soapAction,
	}, msg)
	if err != nil {
		t.logger.Ctx(ctx).Error("DPD request failed", zap.Error(err))
		return nil, err
	}

	return handleResponse(ex)
}

func handleResponse(ex shipper.Exchange) (*shipper.TransportResult, error) {
	body, err := soap.HandleResponse(carrierName, ex)
	if err != nil {
		return nil, err
	}
	return &shipper.TransportResult{Body: body, Raw: ex}, nil
}
