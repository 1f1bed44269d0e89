package gls

import (
	"fmt"
	"strings"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Classify inspects the RESULT field of a parsed response. RESULT has
// the form CODE:TAG[:VALUE]; E000 means success. It returns nil on
// success, a plain error when RESULT is missing or has no code, and a
// *shipper.CarrierError otherwise.
func Classify(fields map[string]string) error {
	result, ok := fields[tagResult]
	if !ok {
		return fmt.Errorf("response has no %s field", tagResult)
	}

	parts := strings.SplitN(result, ":", 3)
	code := strings.TrimSpace(parts[0])
	if code == "" {
		return fmt.Errorf("%s field has no code", tagResult)
	}
	var tag, value string
	if len(parts) > 1 {
		tag = parts[1]
	}
	if len(parts) > 2 {
		value = parts[2]
	}

	if code == resultOK {
		return nil
	}

	err := shipper.NewCarrierError(carrierName, code, "").WithField(tag, FieldName(tag))
	switch {
	case code == resultUnavailable:
		err.Message = "Unibox server is not responding, check network connection and web service accessibility"
		return err.WithClass(shipper.ErrServiceUnavailable)
	case tag == tagZipCode:
		err.Message = fmt.Sprintf("postal code '%s' is wrong relative to the destination country", firstNonEmpty(fields[tagZipCode], value))
		return err.WithClass(shipper.ErrInvalidAddress)
	case tag == tagCountry:
		err.Message = fmt.Sprintf("country code '%s' is wrong", firstNonEmpty(fields[tagCountry], value))
		return err.WithClass(shipper.ErrInvalidAddress)
	default:
		err.Message = fmt.Sprintf("web service error: code %s, tag %s, value %s", code, tag, value)
		return err
	}
}
