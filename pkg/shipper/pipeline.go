package shipper

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Components are the parts a carrier plugs into a Pipeline.
type Components struct {
	Schema    *Schema
	Encoder   Encoder
	Transport Transport
	Decoder   Decoder
}

// Pipeline composes normalize, encode, send and decode into a Carrier.
// A Pipeline holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	name      string
	schema    *Schema
	encoder   Encoder
	transport Transport
	decoder   Decoder
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

var _ Carrier = (*Pipeline)(nil)

// NewPipeline creates a Pipeline for carrier name.
func NewPipeline(name string, c Components, logger *otelzap.Logger, tracer trace.Tracer) (*Pipeline, error) {
	switch {
	case c.Schema == nil:
		return nil, fmt.Errorf("%s: schema is required", name)
	case c.Encoder == nil:
		return nil, fmt.Errorf("%s: encoder is required", name)
	case c.Transport == nil:
		return nil, fmt.Errorf("%s: transport is required", name)
	case c.Decoder == nil:
		return nil, fmt.Errorf("%s: decoder is required", name)
	}
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	if tracer == nil {
		tracer = otel.Tracer("carrierkit/" + name)
	}
	return &Pipeline{
		name:      name,
		schema:    c.Schema,
		encoder:   c.Encoder,
		transport: c.Transport,
		decoder:   c.Decoder,
		logger:    logger,
		tracer:    tracer,
	}, nil
}

// Name returns the carrier name.
func (p *Pipeline) Name() string {
	return p.name
}

// Schema returns the carrier schema.
func (p *Pipeline) Schema() *Schema {
	return p.schema
}

// Actions returns the actions the encoder supports, sorted.
func (p *Pipeline) Actions() []string {
	actions := append([]string(nil), p.encoder.Actions()...)
	sort.Strings(actions)
	return actions
}

// ListSchema returns the carrier schema grouped for form generation.
func (p *Pipeline) ListSchema() map[Group][]FieldSpec {
	return p.schema.Describe()
}

// Execute normalizes raw, encodes it for action, sends it and decodes
// the response. Errors are returned unchanged from the failing stage.
func (p *Pipeline) Execute(ctx context.Context, raw map[string]any, action string) (*Result, error) {
	callID := uuid.New().String()
	ctx, span := p.tracer.Start(ctx, p.name+"."+action,
		trace.WithAttributes(
			attribute.String("carrier", p.name),
			attribute.String("action", action),
			attribute.String("call_id", callID),
		),
	)
	defer span.End()

	fields := []zap.Field{
		zap.String("carrier", p.name),
		zap.String("action", action),
		zap.String("call_id", callID),
	}

	result, err := p.execute(ctx, raw, action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Ctx(ctx).Warn("Carrier call failed",
			append(fields, zap.String("kind", Kind(err)), zap.Error(err))...)
		return nil, err
	}

	p.logger.Ctx(ctx).Info("Carrier call succeeded",
		append(fields, zap.Int("parcel_count", len(result.Parcels)))...)
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, raw map[string]any, action string) (*Result, error) {
	if err := CheckAction(p.name, action, p.encoder.Actions()); err != nil {
		return nil, err
	}

	shipment, err := Normalize(raw, p.schema)
	if err != nil {
		return nil, err
	}

	payload, err := p.encoder.Encode(ctx, shipment, action)
	if err != nil {
		return nil, err
	}

	res, err := p.transport.Send(ctx, payload)
	if err != nil {
		return nil, err
	}

	return p.decoder.Decode(ctx, res, shipment.Service.String("labelFormat"))
}
