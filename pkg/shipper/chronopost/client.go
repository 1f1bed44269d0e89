// Package chronopost provides integration with the Chronopost shipping
// web service.
package chronopost

import (
	"embed"
	"sync"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

const carrierName = "chronopost"

// DefaultURL is the production shipping endpoint.
const DefaultURL = "https://ws.chronopost.fr/shipping-cxf/ShippingServiceWS"

//go:embed schema.yaml templates
var files embed.FS

// Config holds Chronopost configuration.
type Config struct {
	URL     string
	UseMock bool
	Timeout time.Duration
}

// Schema returns the Chronopost schema: the base schema with the
// embedded overrides applied.
var Schema = sync.OnceValues(func() (*shipper.Schema, error) {
	data, err := files.ReadFile("schema.yaml")
	if err != nil {
		return nil, err
	}
	overrides, err := shipper.LoadOverrides(data)
	if err != nil {
		return nil, err
	}
	return shipper.BuildSchema(overrides)
})

// New creates the Chronopost carrier.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Pipeline, error) {
	var transport shipper.Transport
	if cfg.UseMock {
		transport = NewMockTransport()
	} else {
		t, err := NewSOAPTransport(SOAPTransportConfig{URL: cfg.URL, Timeout: cfg.Timeout}, logger)
		if err != nil {
			return nil, err
		}
		transport = t
	}
	return NewWithTransport(transport, logger, tracer)
}

// NewWithTransport creates the Chronopost carrier with a custom transport.
func NewWithTransport(transport shipper.Transport, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Pipeline, error) {
	schema, err := Schema()
	if err != nil {
		return nil, err
	}
	encoder, err := NewEncoder()
	if err != nil {
		return nil, err
	}
	return shipper.NewPipeline(carrierName, shipper.Components{
		Schema:    schema,
		Encoder:   encoder,
		Transport: transport,
		Decoder:   Decoder{},
	}, logger, tracer)
}
