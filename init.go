package main

import (
	"context"
	"fmt"

	"github.com/tournevent/carrierkit/internal/config"
	"github.com/tournevent/carrierkit/internal/telemetry"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/chronopost"
	"github.com/tournevent/carrierkit/pkg/shipper/dpd"
	"github.com/tournevent/carrierkit/pkg/shipper/gls"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if forceMock {
		cfg.ChronopostUseMock = true
		cfg.DPDUseMock = true
		cfg.GLSUseMock = true
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel,
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.Version),
	)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.Attributes()...)
	return shutdown, err
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger) (*shipper.Registry, error) {
	registry := shipper.NewRegistry()

	// Carriers take the global tracer provider installed by initTracer.
	if cfg.ChronopostEnabled {
		c, err := chronopost.New(chronopost.Config{
			URL:     cfg.ChronopostURL,
			UseMock: cfg.ChronopostUseMock,
			Timeout: cfg.ChronopostTimeout,
		}, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("chronopost: %w", err)
		}
		registry.Register(c)
	}

	if cfg.DPDEnabled {
		c, err := dpd.New(dpd.Config{
			URL:     cfg.DPDURL,
			UseMock: cfg.DPDUseMock,
			Timeout: cfg.DPDTimeout,
		}, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("dpd: %w", err)
		}
		registry.Register(c)
	}

	if cfg.GLSEnabled {
		c, err := gls.New(gls.Config{
			URL:     cfg.GLSURL,
			UseMock: cfg.GLSUseMock,
			Timeout: cfg.GLSTimeout,
		}, logger, nil)
		if err != nil {
			return nil, fmt.Errorf("gls: %w", err)
		}
		registry.Register(c)
	}

	return registry, nil
}

// setup loads configuration and builds the logger and carrier registry
// shared by every command.
func setup() (*config.Config, *otelzap.Logger, *shipper.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := initLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	registry, err := initShipperRegistry(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, registry, nil
}
