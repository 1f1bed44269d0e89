// Package dpd provides integration with the DPD France eprint web
// service.
package dpd

import (
	"embed"
	"sync"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

const carrierName = "dpd"

// DefaultURL is the production eprint endpoint.
const DefaultURL = "https://e-station.cargonet.software/dpd-eprintwebservice/eprintwebservice.asmx"

//go:embed schema.yaml
var files embed.FS

// Config holds DPD configuration.
type Config struct {
	URL     string
	UseMock bool
	Timeout time.Duration
}

// Schema returns the DPD schema: the base schema with the embedded
// overrides applied.
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

// New creates the DPD carrier.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Pipeline, error) {
	var transport shipper.Transport
	if cfg.UseMock {
		transport = NewMockTransport()
	} else {
		transport = NewSOAPTransport(SOAPTransportConfig{URL: cfg.URL, Timeout: cfg.Timeout}, logger)
	}
	return NewWithTransport(transport, logger, tracer)
}

// NewWithTransport creates the DPD carrier with a custom transport.
func NewWithTransport(transport shipper.Transport, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Pipeline, error) {
	schema, err := Schema()
	if err != nil {
		return nil, err
	}
	return shipper.NewPipeline(carrierName, shipper.Components{
		Schema:    schema,
		Encoder:   Encoder{},
		Transport: transport,
		Decoder:   Decoder{},
	}, logger, tracer)
}
