package chronopost

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

var actions = []string{"shipping"}

// Encoder renders Chronopost request bodies from the embedded templates.
type Encoder struct {
	templates *template.Template
}

var _ shipper.Encoder = (*Encoder)(nil)

// NewEncoder parses the embedded templates.
func NewEncoder() (*Encoder, error) {
	tmpl, err := template.New("chronopost").
		Option("missingkey=zero").
		ParseFS(files, "templates/shipping.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse chronopost templates: %w", err)
	}
	return &Encoder{templates: tmpl}, nil
}

// Actions returns the supported actions.
func (e *Encoder) Actions() []string {
	return slices.Clone(actions)
}

// Encode renders the template named after action. Every bound value is
// XML-escaped before rendering.
func (e *Encoder) Encode(_ context.Context, s *shipper.Shipment, action string) (*shipper.Payload, error) {
	if err := shipper.CheckAction(carrierName, action, actions); err != nil {
		return nil, err
	}
	parcel, err := shipper.SingleParcel(carrierName, action, s)
	if err != nil {
		return nil, err
	}

	from := escapeSection(s.From)
	data := map[string]map[string]string{
		"service":      escapeSection(s.Service),
		"parcel":       escapeSection(parcel),
		"from_address": from,
		// The customer is the shipper until billing addresses are supported.
		"customer_address": from,
		"to_address":       escapeSection(s.To),
		"auth":             escapeSection(s.Auth),
	}

	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, action+".xml", data); err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", action, err)
	}

	return &shipper.Payload{
		Carrier:      carrierName,
		Action:       action,
		Body:         buf.Bytes(),
		OutputFormat: s.Service.String("labelFormat"),
	}, nil
}

func escapeSection(sec shipper.Section) map[string]string {
	out := make(map[string]string, len(sec))
	for k := range sec {
		out[k] = escape(sec.String(k))
	}
	return out
}

func escape(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
