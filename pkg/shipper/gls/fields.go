package gls

// Unibox field codes used by the encoder and reported back in RESULT.
const (
	tagSaveMode      = "T090"
	tagCountry       = "T100"
	tagProduct       = "T206"
	tagZipCode       = "T330"
	tagWeight        = "T530"
	tagShippingDate  = "T540"
	tagSenderName    = "T810"
	tagSenderName2   = "T811"
	tagSenderStreet  = "T820"
	tagSenderCountry = "T821"
	tagSenderZipCode = "T822"
	tagSenderCity    = "T823"
	tagSenderPhone   = "T851"
	tagName          = "T860"
	tagName2         = "T861"
	tagStreet2       = "T862"
	tagStreet        = "T863"
	tagCity          = "T864"
	tagPhone         = "T871"
	tagEmail         = "T1229"
	tagDepot         = "T8700"
	tagParcelCount   = "T8904"
	tagParcelTotal   = "T8905"
	tagInstructions  = "T8906"
	tagContactID     = "T8914"
	tagCustomerID    = "T8915"
	tagReference     = "T8975"
	tagParcelNumber  = "T8913"
	tagResult        = "RESULT"
)

const (
	resultOK          = "E000"
	resultUnavailable = "E999"
	saveModeNoSave    = "NOSAVE"
	labelTypeZPL      = "ZPL"
)

// fieldNames maps field codes to the logical field they carry. RESULT
// errors name the offending code; these names make them readable.
var fieldNames = map[string]string{
	tagSaveMode:      "save mode",
	tagCountry:       "toAddress.country",
	tagProduct:       "service.product",
	tagZipCode:       "toAddress.zip",
	tagWeight:        "parcels.weight",
	tagShippingDate:  "service.shippingDate",
	tagSenderName:    "fromAddress.name",
	tagSenderName2:   "fromAddress.company",
	tagSenderStreet:  "fromAddress.street1",
	tagSenderCountry: "fromAddress.country",
	tagSenderZipCode: "fromAddress.zip",
	tagSenderCity:    "fromAddress.city",
	tagSenderPhone:   "fromAddress.phone",
	tagName:          "toAddress.name",
	tagName2:         "toAddress.company",
	tagStreet2:       "toAddress.street2",
	tagStreet:        "toAddress.street1",
	tagCity:          "toAddress.city",
	tagPhone:         "toAddress.phone",
	tagEmail:         "toAddress.email",
	tagDepot:         "service.agencyId",
	tagParcelCount:   "parcel sequence number",
	tagParcelTotal:   "parcel count",
	tagInstructions:  "service.instructions",
	tagContactID:     "service.contactId",
	tagCustomerID:    "service.customerId",
	tagReference:     "service.reference1",
}

// FieldName returns the logical field carried by a Unibox code, or ""
// when the code is not one the encoder sends.
func FieldName(tag string) string {
	return fieldNames[tag]
}
