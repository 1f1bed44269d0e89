package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Chronopost
	ChronopostURL     string        `envconfig:"CHRONOPOST_URL" default:"https://ws.chronopost.fr/shipping-cxf/ShippingServiceWS"`
	ChronopostEnabled bool          `envconfig:"CHRONOPOST_ENABLED" default:"true"`
	ChronopostUseMock bool          `envconfig:"CHRONOPOST_USE_MOCK" default:"false"`
	ChronopostTimeout time.Duration `envconfig:"CHRONOPOST_TIMEOUT" default:"30s"`

	// DPD
	DPDURL     string        `envconfig:"DPD_URL" default:"https://e-station.cargonet.software/dpd-eprintwebservice/eprintwebservice.asmx"`
	DPDEnabled bool          `envconfig:"DPD_ENABLED" default:"true"`
	DPDUseMock bool          `envconfig:"DPD_USE_MOCK" default:"false"`
	DPDTimeout time.Duration `envconfig:"DPD_TIMEOUT" default:"30s"`

	// GLS
	GLSURL     string        `envconfig:"GLS_URL" default:"http://www.gls-france.com/cgi-bin/glsboxGI.cgi"`
	GLSEnabled bool          `envconfig:"GLS_ENABLED" default:"true"`
	GLSUseMock bool          `envconfig:"GLS_USE_MOCK" default:"false"`
	GLSTimeout time.Duration `envconfig:"GLS_TIMEOUT" default:"30s"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"carrierkit"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("chronopost.enabled", c.ChronopostEnabled),
		attribute.Bool("dpd.enabled", c.DPDEnabled),
		attribute.Bool("gls.enabled", c.GLSEnabled),
	}
}
