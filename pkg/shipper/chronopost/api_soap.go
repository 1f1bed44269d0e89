package chronopost

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/soap"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SOAPTransport is the production Transport for the Chronopost shipping
// web service.
type SOAPTransport struct {
	url        string
	envelope   *template.Template
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
func NewSOAPTransport(cfg SOAPTransportConfig, logger *otelzap.Logger) (*SOAPTransport, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return NewSOAPTransportWithClient(cfg.URL, &http.Client{Timeout: timeout}, logger)
}

// NewSOAPTransportWithClient creates a SOAP transport using client.
func NewSOAPTransportWithClient(url string, client shipper.HTTPDoer, logger *otelzap.Logger) (*SOAPTransport, error) {
	envelope, err := template.ParseFS(files, "templates/soap.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chronopost envelope: %w", err)
	}
	if url == "" {
		url = DefaultURL
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return &SOAPTransport{
		url:        url,
		envelope:   envelope,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Send wraps the payload in a SOAP envelope and posts it.
func (t *SOAPTransport) Send(ctx context.Context, p *shipper.Payload) (*shipper.TransportResult, error) {
	var msg bytes.Buffer
	if err := t.envelope.Execute(&msg, string(p.Body)); err != nil {
		return nil, fmt.Errorf("failed to wrap request: %w", err)
	}

	log := t.logger.Ctx(ctx)
	log.Debug("Sending Chronopost request", zap.String("action", p.Action))

	start := time.Now()
	ex, err := shipper.Post(ctx, t.httpClient, carrierName, t.url,
		map[string]string{"Content-Type": "text/xml"}, msg.Bytes())
	if err != nil {
		log.Error("Chronopost request failed", zap.Error(err))
		return nil, err
	}
	log.Info("Chronopost response",
		zap.Int("status", ex.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if ex.StatusCode == http.StatusInternalServerError {
		log.Warn("Chronopost error 500")
	}
	return handleResponse(ex)
}

func handleResponse(ex shipper.Exchange) (*shipper.TransportResult, error) {
	body, err := soap.HandleResponse(carrierName, ex)
	if err != nil {
		return nil, err
	}

	resp, err := parseShippingResponse(body)
	if err != nil {
		return nil, shipper.NewDecodeError(carrierName, "malformed shipping response", ex, err)
	}
	if r := resp.Return; r.Failed() {
		return nil, resultError(r, ex)
	}

	return &shipper.TransportResult{Body: body, Raw: ex}, nil
}

func resultError(r ShippingResult, ex shipper.Exchange) *shipper.CarrierError {
	code := strings.TrimSpace(r.ErrorCode)
	msg := strings.TrimSpace(r.ErrorMessage)
	if msg == "" {
		msg = errorCodes[code]
	}
	if msg == "" {
		msg = "error code " + code
	}
	err := shipper.NewCarrierError(carrierName, code, msg).WithRaw(ex)
	switch code {
	case "3", "4", "33":
		err = err.WithClass(shipper.ErrInvalidAddress)
	case "1":
		err = err.WithRetryable(true)
	}
	return err
}
