package chronopost

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// TrackingURL is the public tracking page for a skybill number.
const TrackingURL = "https://www.chronopost.fr/tracking-no-cms/suivi-page?listeNumerosLT=%s"

// labelTypes maps Chronopost label modes to the file type they print as.
var labelTypes = map[string]string{
	"PPR": "PDF",
	"SPD": "PDF",
	"THE": "PDF",
	"Z2D": "ZPL",
}

// LabelType returns the file type of a label printed in mode.
func LabelType(mode string) string {
	mode = strings.ToUpper(mode)
	if t, ok := labelTypes[mode]; ok {
		return t
	}
	return mode
}

// Decoder parses Chronopost shipping responses.
type Decoder struct{}

var _ shipper.Decoder = Decoder{}

// Decode extracts the skybill number and label.
func (Decoder) Decode(_ context.Context, res *shipper.TransportResult, outputFormat string) (*shipper.Result, error) {
	resp, err := parseShippingResponse(res.Body)
	if err != nil {
		return nil, shipper.NewDecodeError(carrierName, "malformed shipping response", res.Raw, err)
	}

	r := resp.Return
	number := strings.TrimSpace(r.SkybillNumber)
	if number == "" {
		return nil, shipper.NewDecodeError(carrierName, "response has no skybill number", res.Raw, nil)
	}

	encoded := r.Skybill
	if encoded == "" {
		encoded = r.PDFEtiquette
	}
	label, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, shipper.NewDecodeError(carrierName, "label is not valid base64", res.Raw, err)
	}
	if len(label) == 0 {
		return nil, shipper.NewDecodeError(carrierName, "response has no label", res.Raw, nil)
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
		Annexes: []shipper.Annex{},
	}, nil
}
