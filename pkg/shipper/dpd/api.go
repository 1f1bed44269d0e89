package dpd

import "encoding/xml"

// Namespace is the DPD web service namespace.
const Namespace = "http://www.cargonet.software"

const operation = "CreateShipmentWithLabelsBc"

// soapAction is sent in the SOAPAction header.
const soapAction = Namespace + "/" + operation

// ============================================================================
// Response types (match the DPD eprint web service structure)
// ============================================================================

// CreateShipmentResponse is the CreateShipmentWithLabelsBcResponse body.
type CreateShipmentResponse struct {
	XMLName xml.Name             `xml:"CreateShipmentWithLabelsBcResponse"`
	Result  CreateShipmentResult `xml:"CreateShipmentWithLabelsBcResult"`
}

// CreateShipmentResult holds the created shipments and their labels.
type CreateShipmentResult struct {
	Shipments []ShipmentBc `xml:"shipments>ShipmentBc"`
	Labels    []LabelBc    `xml:"labels>Label"`
}

// ShipmentBc is one created shipment.
type ShipmentBc struct {
	ParcelNumber string `xml:"Shipment>parcelnumber"`
	Barcode      string `xml:"Shipment>barcode"`
	BarcodeID    string `xml:"Shipment>barcode_id"`
}

// LabelBc is one base64 document. Type EPRINT is the parcel label;
// other types are attachments such as customs documents.
type LabelBc struct {
	Label string `xml:"label"`
	Type  string `xml:"type"`
}

const labelKindParcel = "EPRINT"

func parseCreateShipmentResponse(body []byte) (*CreateShipmentResponse, error) {
	var resp CreateShipmentResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
