package dpd

import (
	"github.com/tournevent/carrierkit/pkg/shipper"
)

// HarmonizeReceiver fills the receiver name fields. DPD only prints a
// first and last name together; without a first name everything goes
// into the firm name.
func HarmonizeReceiver(company, firstName, lastName string) map[string]any {
	if firstName == "" {
		if company == lastName {
			return map[string]any{"receiverFirmName": company}
		}
		return map[string]any{"receiverFirmName": lastName + " " + company}
	}
	return map[string]any{
		"receiverFirmName":  company,
		"receiverFirstName": firstName,
		"receiverLastName":  lastName,
	}
}

// reshape maps a shipment to the CreateShipmentWithLabelsBc request.
func reshape(s *shipper.Shipment) map[string]any {
	req := make(map[string]any)
	merge := func(m map[string]any) {
		for k, v := range m {
			req[k] = v
		}
	}

	merge(manifest(s))
	merge(parcels(s))
	merge(receiver(s.To))
	merge(sender(s))
	merge(service(s.Service))
	merge(products(s.Service))
	return req
}

func manifest(s *shipper.Shipment) map[string]any {
	return map[string]any{
		"manifest": map[string]any{
			"language":           "fr",
			"labelFormat":        "A4",
			"referenceAsBarcode": false,
			"fileType":           s.Service.String("labelFormat"),
			"dpi":                "300",
		},
	}
}

func parcels(s *shipper.Shipment) map[string]any {
	out := make([]any, 0, len(s.Parcels))
	for _, p := range s.Parcels {
		out = append(out, map[string]any{
			"cref1":  s.Service.String("reference1"),
			"cref2":  s.Service.String("reference2"),
			"cref3":  s.Service.String("reference3"),
			"weight": p.Decimal("weight"),
		})
	}
	return map[string]any{"parcels": out}
}

func receiver(to shipper.Section) map[string]any {
	add := HarmonizeReceiver(to.String("company"), to.String("firstName"), to.String("name"))
	add["receiverStreet"] = to.String("street1")
	add["receiverStreetInfo"] = to.String("street2")
	add["receiverCountryCode"] = to.String("country")
	add["receiverCity"] = to.String("city")
	add["receiverZipCode"] = to.String("zip")
	add["receiverMobileNumber"] = to.String("phone")
	add["receiverEmailAddress"] = to.String("email")
	add["receiverDoorCode1"] = to.String("door1")
	add["receiverDoorCode2"] = to.String("door2")
	add["receiverIntercom"] = to.String("intercom")
	return add
}

func sender(s *shipper.Shipment) map[string]any {
	if !s.Service.Bool("replaceSender") {
		return map[string]any{"replaceSender": shipper.Keep{Value: false}}
	}
	name := s.From.String("company")
	if name == "" {
		name = s.From.String("name")
	}
	return map[string]any{
		"replaceSender": true,
		"replaceSenderAddress": map[string]any{
			"name":        name,
			"street":      s.From.String("street1"),
			"streetInfo":  s.From.String("street2"),
			"countryCode": s.From.String("country"),
			"city":        s.From.String("city"),
			"zipCode":     s.From.String("zip"),
			"telNo":       s.From.String("phone"),
		},
	}
}

func service(svc shipper.Section) map[string]any {
	return map[string]any{
		"shipmentDate":              svc.String("shippingDate"),
		"payerId":                   svc.Int("customerId"),
		"payerAddressId":            svc.Int("customerAddressId"),
		"senderId":                  svc.Int("senderId"),
		"senderAddressId":           svc.Int("senderAddressId"),
		"senderZipCode":             svc.String("senderZipCode"),
		"senderCountryCode":         svc.String("customerCountry"),
		"departureUnitId":           svc.String("agencyId"),
		"parcelShopId":              svc.String("parcelShopId"),
		"receiverAdditionalAdrInfo": svc.String("instructions"),
	}
}

func products(svc shipper.Section) map[string]any {
	return map[string]any{
		"products": map[string]any{
			"productId": svc.Int("product"),
		},
	}
}
