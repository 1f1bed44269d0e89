package gls

import (
	"context"
	"net/http"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// HTTPTransport posts Unibox lines to the GLS gateway.
type HTTPTransport struct {
	url        string
	httpClient shipper.HTTPDoer
	logger     *otelzap.Logger
}

var _ shipper.Transport = (*HTTPTransport)(nil)

// HTTPTransportConfig holds the HTTP transport configuration.
type HTTPTransportConfig struct {
	URL     string
	Timeout time.Duration
}

// NewHTTPTransport creates an HTTP transport for production use.
func NewHTTPTransport(cfg HTTPTransportConfig, logger *otelzap.Logger) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewHTTPTransportWithClient(cfg.URL, &http.Client{Timeout: timeout}, logger)
}

// NewHTTPTransportWithClient creates an HTTP transport using client.
func NewHTTPTransportWithClient(url string, client shipper.HTTPDoer, logger *otelzap.Logger) *HTTPTransport {
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return &HTTPTransport{url: url, httpClient: client, logger: logger}
}

// Send posts the request line. The gateway answers 200 with a response
// line for both accepted and rejected shipments.
func (t *HTTPTransport) Send(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error) {
	ex, err := shipper.Post(ctx, t.httpClient, carrierName, t.url, map[string]string{
		"Content-Type": "text/plain; charset=utf-8",
	}, p.Body)
	if err != nil {
		t.logger.Ctx(ctx).Error("GLS request failed", zap.Error(err))
		return nil, err
	}
	return handleResponse(ex)
}

func handleResponse(ex shipper.Exchange) (*shipper.TransportResult, error) {
	if ex.StatusCode != http.StatusOK {
		return nil, shipper.UnexpectedStatus(carrierName, ex)
	}
	return &shipper.TransportResult{Body: ex.Response, Raw: ex}, nil
}
