package chronopost_test

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/chronopost"
	"github.com/tournevent/carrierkit/pkg/shipper/mock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testInput() map[string]any {
	return map[string]any{
		"auth": map[string]any{"login": "19869502", "password": "255562"},
		"service": map[string]any{
			"labelFormat":  "ppr",
			"productCode":  "01",
			"shippingDate": "2024-05-02",
			"reference1":   "SO042",
		},
		"fromAddress": map[string]any{
			"name":    "Durand",
			"company": "Tournevent",
			"street1": "1 place du Marché",
			"city":    "Lyon",
			"zip":     "69001",
			"country": "FR",
			"phone":   "0400000000",
		},
		"toAddress": map[string]any{
			"name":    `O'Brien "Jr"`,
			"company": "Dupont & Fils <SARL>",
			"street1": "12 rue de la Paix",
			"city":    "Paris",
			"zip":     "75002",
			"country": "FR",
		},
		"parcels": []any{map[string]any{"weight": 1.2}},
	}
}

func newTestCarrier(t *testing.T, transport shipper.Transport) *shipper.Pipeline {
	t.Helper()
	c, err := chronopost.NewWithTransport(transport, otelzap.New(zap.NewNop()), nil)
	require.NoError(t, err)
	return c
}

func encode(t *testing.T, in map[string]any) *shipper.Payload {
	t.Helper()
	schema, err := chronopost.Schema()
	require.NoError(t, err)
	s, err := shipper.Normalize(in, schema)
	require.NoError(t, err)
	enc, err := chronopost.NewEncoder()
	require.NoError(t, err)
	p, err := enc.Encode(context.Background(), s, "shipping")
	require.NoError(t, err)
	return p
}

func TestEncoder_EscapesMarkup(t *testing.T) {
	p := encode(t, testInput())

	var doc struct {
		Recipient struct {
			Name  string `xml:"recipientName"`
			Name2 string `xml:"recipientName2"`
		} `xml:"recipientValue"`
		Shipper struct {
			Address string `xml:"shipperAdress1"`
		} `xml:"shipperValue"`
		Customer struct {
			Name string `xml:"customerName"`
		} `xml:"customerValue"`
		Skybill struct {
			ProductCode string `xml:"productCode"`
			Weight      string `xml:"weight"`
		} `xml:"skybillValue"`
		Mode string `xml:"skybillParamsValue>mode"`
	}
	require.NoError(t, xml.Unmarshal(p.Body, &doc), "rendered body must be well-formed XML")

	assert.Equal(t, "Dupont & Fils <SARL>", doc.Recipient.Name)
	assert.Equal(t, `O'Brien "Jr"`, doc.Recipient.Name2)
	assert.Equal(t, "1 place du Marché", doc.Shipper.Address)
	assert.Equal(t, "Tournevent", doc.Customer.Name, "customer address is the shipper")
	assert.Equal(t, "01", doc.Skybill.ProductCode)
	assert.Equal(t, "1.2", doc.Skybill.Weight)
	assert.Equal(t, "PPR", doc.Mode)
	assert.Equal(t, "PPR", p.OutputFormat)
}

func TestEncoder_Deterministic(t *testing.T) {
	assert.Equal(t, encode(t, testInput()).Body, encode(t, testInput()).Body)
}

func TestEncoder_UnknownAction(t *testing.T) {
	schema, err := chronopost.Schema()
	require.NoError(t, err)
	s, err := shipper.Normalize(testInput(), schema)
	require.NoError(t, err)
	enc, err := chronopost.NewEncoder()
	require.NoError(t, err)

	_, err = enc.Encode(context.Background(), s, "tracking")
	assert.True(t, errors.Is(err, shipper.ErrInvalidInput))
}

func TestEncoder_ActionsAreCopied(t *testing.T) {
	enc, err := chronopost.NewEncoder()
	require.NoError(t, err)

	enc.Actions()[0] = "cancel"
	assert.Equal(t, []string{"shipping"}, enc.Actions())
}

func TestSchema_Overrides(t *testing.T) {
	schema, err := chronopost.Schema()
	require.NoError(t, err)

	in := testInput()
	in["service"].(map[string]any)["labelFormat"] = "GIF"
	_, err = shipper.Normalize(in, schema)
	assert.True(t, errors.Is(err, shipper.ErrValidation))

	in = testInput()
	delete(in["service"].(map[string]any), "productCode")
	_, err = shipper.Normalize(in, schema)
	assert.True(t, errors.Is(err, shipper.ErrValidation))
}

func TestCarrier_Execute(t *testing.T) {
	label := []byte("%PDF-1.4 label")
	server := soapServer(t, http.StatusOK, chronopost.MockResponse("0", "", "XY123456789FR", label))
	c := newTestCarrier(t, soapTransport(t, server))

	result, err := c.Execute(context.Background(), testInput(), "shipping")
	require.NoError(t, err)
	require.Len(t, result.Parcels, 1)

	parcel := result.Parcels[0]
	assert.Equal(t, "XY123456789FR", parcel.Tracking.Number)
	assert.Contains(t, parcel.Tracking.URL, "XY123456789FR")
	assert.Equal(t, label, parcel.Label.Data)
	assert.Equal(t, "label_XY123456789FR", parcel.Label.Name)
	assert.Equal(t, "PDF", parcel.Label.Type, "PPR prints as PDF")
	assert.Empty(t, result.Annexes)
}

func TestCarrier_ExecuteIdempotent(t *testing.T) {
	transport := mock.NewTransport(nil)
	transport.OnSend = func(_ context.Context, p *shipper.Payload) (*shipper.TransportResult, error) {
		return &shipper.TransportResult{Body: []byte(`<r><return><errorCode>0</errorCode><skybillNumber>XY1FR</skybillNumber><skybill>bGFiZWw=</skybill></return></r>`)}, nil
	}
	c := newTestCarrier(t, transport)

	first, err := c.Execute(context.Background(), testInput(), "shipping")
	require.NoError(t, err)
	second, err := c.Execute(context.Background(), testInput(), "shipping")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	payloads := transport.Payloads()
	require.Len(t, payloads, 2)
	assert.Equal(t, payloads[0].Body, payloads[1].Body)
}

func TestCarrier_Mock(t *testing.T) {
	c := newTestCarrier(t, chronopost.NewMockTransport())

	result, err := c.Execute(context.Background(), testInput(), "shipping")
	require.NoError(t, err)
	require.Len(t, result.Parcels, 1)
	assert.NotEmpty(t, result.Parcels[0].Tracking.Number)
	assert.NotEmpty(t, result.Parcels[0].Label.Data)
}

func TestCarrier_MockErrors(t *testing.T) {
	tr := chronopost.NewMockTransport()
	tr.SimulateErrors = true
	c := newTestCarrier(t, tr)

	_, err := c.Execute(context.Background(), testInput(), "shipping")
	var ce *shipper.CarrierError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "2", ce.Code)
}

func TestLabelType(t *testing.T) {
	tests := map[string]string{
		"PPR": "PDF",
		"SPD": "PDF",
		"THE": "PDF",
		"Z2D": "ZPL",
		"PDF": "PDF",
		"ZPL": "ZPL",
	}
	for mode, want := range tests {
		assert.Equal(t, want, chronopost.LabelType(mode), mode)
	}
}
