// Package soap holds the SOAP 1.1 envelope helpers shared by the XML
// carriers.
package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// Namespace is the SOAP 1.1 envelope namespace.
const Namespace = "http://schemas.xmlsoap.org/soap/envelope/"

// ContentType is the request content type for SOAP 1.1.
const ContentType = "text/xml; charset=utf-8"

// Fault is a SOAP fault.
type Fault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail string `xml:"detail"`
}

// Envelope is a parsed SOAP envelope.
type Envelope struct {
	Header []byte
	Body   []byte // inner XML of soap:Body
	Fault  *Fault
}

type rawEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Header  struct {
		Inner []byte `xml:",innerxml"`
	} `xml:"Header"`
	Body struct {
		Inner []byte `xml:",innerxml"`
		Fault *Fault `xml:"Fault"`
	} `xml:"Body"`
}

// Wrap places header and body inside a SOAP envelope. header may be nil.
func Wrap(header, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(`<soapenv:Envelope xmlns:soapenv="` + Namespace + `">`)
	if len(header) > 0 {
		buf.WriteString("<soapenv:Header>")
		buf.Write(header)
		buf.WriteString("</soapenv:Header>")
	}
	buf.WriteString("<soapenv:Body>")
	buf.Write(body)
	buf.WriteString("</soapenv:Body></soapenv:Envelope>")
	return buf.Bytes()
}

// ParseEnvelope extracts the header, body and fault of a SOAP message.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse SOAP envelope: %w", err)
	}
	return &Envelope{
		Header: bytes.TrimSpace(raw.Header.Inner),
		Body:   bytes.TrimSpace(raw.Body.Inner),
		Fault:  raw.Body.Fault,
	}, nil
}

// HandleResponse classifies a SOAP exchange. A 200 yields the inner
// body; a fault inside a 200 or a 500 fault yields a *CarrierError coded
// with the fault code; any other status is CodeUnexpectedStatus.
func HandleResponse(carrier string, ex shipper.Exchange) ([]byte, error) {
	switch ex.StatusCode {
	case http.StatusOK:
		env, err := ParseEnvelope(ex.Response)
		if err != nil {
			return nil, shipper.NewDecodeError(carrier, "malformed SOAP response", ex, err)
		}
		if env.Fault != nil {
			return nil, faultError(carrier, env.Fault, ex)
		}
		return env.Body, nil
	case http.StatusInternalServerError:
		env, err := ParseEnvelope(ex.Response)
		if err != nil || env.Fault == nil {
			return nil, shipper.NewCarrierError(carrier, shipper.CodeFault, "server error without SOAP fault").
				WithCause(err).
				WithRaw(ex)
		}
		return nil, faultError(carrier, env.Fault, ex)
	default:
		return nil, shipper.UnexpectedStatus(carrier, ex)
	}
}

func faultError(carrier string, f *Fault, ex shipper.Exchange) *shipper.CarrierError {
	code := f.Code
	if code == "" {
		code = shipper.CodeFault
	}
	return shipper.NewCarrierError(carrier, code, f.String).WithRaw(ex)
}
