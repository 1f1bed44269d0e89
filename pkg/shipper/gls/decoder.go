package gls

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/labeltmpl"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// TrackingURL is the public tracking page for a parcel number.
const TrackingURL = "https://gls-group.eu/FR/fr/suivi-colis?match=%s"

// knownGaps are label placeholders Unibox only returns for some routes.
var knownGaps = []string{"T8900", "T8901", "T8717", "T8911"}

var labelTemplate = sync.OnceValues(func() (*labeltmpl.Template, error) {
	data, err := files.ReadFile("templates/label.zpl")
	if err != nil {
		return nil, err
	}
	return labeltmpl.Parse(string(data))
})

// Decoder parses Unibox response lines and renders the ZPL label.
type Decoder struct {
	logger *otelzap.Logger
}

var _ shipper.Decoder = Decoder{}

// NewDecoder creates a decoder that reports unmapped errors and missing
// label data to logger.
func NewDecoder(logger *otelzap.Logger) Decoder {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}
	return Decoder{logger: logger}
}

// Decode classifies the RESULT field and builds the parcel label.
func (d Decoder) Decode(ctx context.Context, res *shipper.TransportResult, _ string) (*shipper.Result, error) {
	fields, err := ParseFields(string(res.Body))
	if err != nil {
		return nil, shipper.NewDecodeError(carrierName, "malformed response", res.Raw, err)
	}

	if err := Classify(fields); err != nil {
		var ce *shipper.CarrierError
		if !errors.As(err, &ce) {
			return nil, shipper.NewDecodeError(carrierName, err.Error(), res.Raw, nil)
		}
		if ce.Class == nil {
			d.logger.Ctx(ctx).Warn("GLS rejected the request",
				zap.String("result", fields[tagResult]),
				zap.String("tag", ce.Tag),
				zap.String("field", ce.Field))
		}
		return nil, ce.WithRaw(res.Raw)
	}

	number := fields[tagParcelNumber]
	if number == "" {
		return nil, shipper.NewDecodeError(carrierName, "response has no parcel number", res.Raw, nil)
	}

	tmpl, err := labelTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s label template: %w", carrierName, err)
	}
	label := tmpl.Render(fields, labeltmpl.Policy{
		KnownGaps: knownGaps,
		OnSuspicious: func(names []string) {
			d.logger.Ctx(ctx).Info("Label placeholders without values",
				zap.String("tracking_number", number),
				zap.Strings("placeholders", names))
		},
	})

	return &shipper.Result{
		Parcels: []shipper.ParcelResult{{
			ID:        1,
			Reference: fields[tagReference],
			Tracking: shipper.Tracking{
				Number: number,
				URL:    fmt.Sprintf(TrackingURL, number),
			},
			Label: shipper.Label{
				Data: []byte(label),
				Name: "label_" + number,
				Type: labelTypeZPL,
			},
		}},
		Annexes: []shipper.Annex{},
	}, nil
}
