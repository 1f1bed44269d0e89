// Package gls provides integration with the GLS Unibox gateway, a
// pipe-delimited CODE:VALUE protocol over HTTP.
package gls

import (
	"embed"
	"sync"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
)

const carrierName = "gls"

// DefaultURL is the Unibox gateway endpoint.
const DefaultURL = "http://www.gls-france.com/cgi-bin/glsboxGI.cgi"

//go:embed schema.yaml templates
var files embed.FS

// Config holds GLS configuration.
type Config struct {
	URL     string
	UseMock bool
	Timeout time.Duration
}

// Schema returns the GLS schema: the base schema with the embedded
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

// New creates the GLS carrier.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Pipeline, error) {
	var transport shipper.Transport
	if cfg.UseMock {
		transport = NewMockTransport()
	} else {
		transport = NewHTTPTransport(HTTPTransportConfig{URL: cfg.URL, Timeout: cfg.Timeout}, logger)
	}
	return NewWithTransport(transport, logger, tracer)
}

// NewWithTransport creates the GLS carrier with a custom transport.
func NewWithTransport(transport shipper.Transport, logger *otelzap.Logger, tracer trace.Tracer) (*shipper.Pipeline, error) {
	schema, err := Schema()
	if err != nil {
		return nil, err
	}
	if _, err := labelTemplate(); err != nil {
		return nil, err
	}
	return shipper.NewPipeline(carrierName, shipper.Components{
		Schema:    schema,
		Encoder:   Encoder{},
		Transport: transport,
		Decoder:   NewDecoder(logger),
	}, logger, tracer)
}
