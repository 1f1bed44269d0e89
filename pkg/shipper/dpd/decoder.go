package dpd

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// TrackingURL is the public tracking page for a parcel number.
const TrackingURL = "https://www.dpd.fr/trace/%s"

var labelTypes = map[string]string{
	"PDF": "PDF",
	"ZPL": "ZPL",
	"PNG": "PNG",
}

// LabelType returns the file type for a manifest file type.
func LabelType(format string) string {
	format = strings.ToUpper(format)
	if t, ok := labelTypes[format]; ok {
		return t
	}
	return format
}

// Decoder parses DPD CreateShipmentWithLabelsBc responses.
type Decoder struct{}

var _ shipper.Decoder = Decoder{}

// Decode returns the parcel label and any attachments as annexes.
func (Decoder) Decode(_ context.Context, res *shipper.TransportResult, outputFormat string) (*shipper.Result, error) {
	resp, err := parseCreateShipmentResponse(res.Body)
	if err != nil {
		return nil, shipper.NewDecodeError(carrierName, "malformed shipment response", res.Raw, err)
	}
	if len(resp.Result.Shipments) == 0 {
		return nil, shipper.NewDecodeError(carrierName, "response has no shipment", res.Raw, nil)
	}

	number := strings.TrimSpace(resp.Result.Shipments[0].ParcelNumber)
	if number == "" {
		return nil, shipper.NewDecodeError(carrierName, "response has no parcel number", res.Raw, nil)
	}

	var label []byte
	annexes := make([]shipper.Annex, 0)
	for _, l := range resp.Result.Labels {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(l.Label))
		if err != nil {
			return nil, shipper.NewDecodeError(carrierName, fmt.Sprintf("%s label is not valid base64", l.Type), res.Raw, err)
		}
		if strings.EqualFold(l.Type, labelKindParcel) {
			label = data
			continue
		}
		annexes = append(annexes, shipper.Annex{Data: data, Type: l.Type})
	}
	if label == nil {
		return nil, shipper.NewDecodeError(carrierName, "response has no "+labelKindParcel+" label", res.Raw, nil)
	}

	return &shipper.Result{
		Parcels: []shipper.ParcelResult{{
			ID: 1,
			Tracking: shipper.Tracking{
				Number: number,
				URL:    fmt.Sprintf(TrackingURL, number),
			},
			Label: shipper.Label{
				Data: label,
				Name: "label_" + number,
				Type: LabelType(outputFormat),
			},
		}},
		Annexes: annexes,
	}, nil
}
