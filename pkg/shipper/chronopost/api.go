package chronopost

import (
	"encoding/xml"
	"strings"
)

// ============================================================================
// Response types (match the Chronopost shipping service structure)
// ============================================================================

// ShippingResponse is the body of a shipping response. The root element
// name varies with the service version and is not checked.
type ShippingResponse struct {
	Return ShippingResult `xml:"return"`
}

// ShippingResult is the <return> element.
type ShippingResult struct {
	ErrorCode     string `xml:"errorCode"`
	ErrorMessage  string `xml:"errorMessage"`
	SkybillNumber string `xml:"skybillNumber"`
	Skybill       string `xml:"skybill"`
	PDFEtiquette  string `xml:"pdfEtiquette"`
}

// Failed reports whether the result carries a non-zero error code.
func (r ShippingResult) Failed() bool {
	code := strings.TrimSpace(r.ErrorCode)
	return code != "" && code != "0"
}

func parseShippingResponse(body []byte) (*ShippingResponse, error) {
	var resp ShippingResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Error codes documented by Chronopost for the shipping service.
var errorCodes = map[string]string{
	"1":  "system error",
	"2":  "invalid account number or password",
	"3":  "invalid shipper or recipient zip code",
	"4":  "invalid shipper or recipient country",
	"5":  "invalid product code for this destination",
	"10": "invalid skybill number",
	"33": "invalid recipient address",
}
