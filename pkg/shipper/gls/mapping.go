package gls

import (
	"strings"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// reshape maps a shipment to Unibox field codes. Values are strings or
// ints; empty values are dropped afterwards by the encoder.
func reshape(s *shipper.Shipment, parcel shipper.Section) map[string]any {
	fields := map[string]any{
		tagSaveMode:     saveModeNoSave,
		tagDepot:        s.Service.String("agencyId"),
		tagCustomerID:   s.Service.String("customerId"),
		tagContactID:    s.Service.String("contactId"),
		tagProduct:      s.Service.String("product"),
		tagShippingDate: uniboxDate(s.Service.String("shippingDate")),
		tagReference:    firstNonEmpty(s.Service.String("reference1"), parcel.String("reference")),
		tagInstructions: s.Service.String("instructions"),
		tagParcelCount:  1,
		tagParcelTotal:  1,
		tagWeight:       parcel.Decimal("weight").StringFixed(2),
	}

	from := s.From
	fields[tagSenderName] = firstNonEmpty(from.String("company"), from.String("name"))
	if from.String("company") != "" {
		fields[tagSenderName2] = from.String("name")
	}
	fields[tagSenderStreet] = from.String("street1")
	fields[tagSenderCountry] = from.String("country")
	fields[tagSenderZipCode] = from.String("zip")
	fields[tagSenderCity] = from.String("city")
	fields[tagSenderPhone] = from.String("phone")

	to := s.To
	contact := strings.TrimSpace(to.String("firstName") + " " + to.String("name"))
	if to.String("company") != "" {
		fields[tagName] = to.String("company")
		fields[tagName2] = contact
	} else {
		fields[tagName] = contact
	}
	fields[tagStreet] = to.String("street1")
	fields[tagStreet2] = strings.TrimSpace(to.String("street2") + " " + to.String("street3"))
	fields[tagZipCode] = to.String("zip")
	fields[tagCity] = to.String("city")
	fields[tagCountry] = to.String("country")
	fields[tagPhone] = to.String("phone")
	fields[tagEmail] = to.String("email")

	return fields
}

// uniboxDate converts a YYYY-MM-DD date to the YYYYMMDD form Unibox
// expects. Dates were validated during normalization.
func uniboxDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return ""
	}
	return t.Format("20060102")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
