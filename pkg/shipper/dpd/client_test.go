package dpd_test

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/dpd"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func testInput() map[string]any {
	return map[string]any{
		"auth": map[string]any{"login": "demo", "password": "secret"},
		"service": map[string]any{
			"labelFormat":     "PDF",
			"agencyId":        "077",
			"customerCountry": "fr",
			"customerId":      "1234",
			"senderZipCode":   "69001",
			"product":         "DPD PREDICT",
			"reference1":      "SO042",
		},
		"fromAddress": map[string]any{
			"name":    "Durand",
			"company": "Tournevent",
			"street1": "1 place Bellecour",
			"city":    "Lyon",
			"zip":     "69002",
			"country": "FR",
			"phone":   "0400000000",
		},
		"toAddress": map[string]any{
			"name":    "Dupont",
			"company": "ACME",
			"street1": "12 rue de la Paix",
			"city":    "Paris",
			"zip":     "75002",
			"country": "FR",
		},
		"parcels": []any{map[string]any{"weight": 2.5}},
	}
}

func encode(t *testing.T, in map[string]any) *shipper.Payload {
	t.Helper()
	schema, err := dpd.Schema()
	require.NoError(t, err)
	s, err := shipper.Normalize(in, schema)
	require.NoError(t, err)
	p, err := dpd.Encoder{}.Encode(context.Background(), s, "shipping")
	require.NoError(t, err)
	return p
}

func newTestCarrier(t *testing.T, transport shipper.Transport) *shipper.Pipeline {
	t.Helper()
	c, err := dpd.NewWithTransport(transport, otelzap.New(zap.NewNop()), nil)
	require.NoError(t, err)
	return c
}

func TestHarmonizeReceiver(t *testing.T) {
	tests := []struct {
		name                         string
		company, firstName, lastName string
		want                         map[string]any
	}{
		{
			name:     "no first name, company equals last name",
			company:  "ACME",
			lastName: "ACME",
			want:     map[string]any{"receiverFirmName": "ACME"},
		},
		{
			name:     "no first name, company differs",
			company:  "ACME",
			lastName: "Dupont",
			want:     map[string]any{"receiverFirmName": "Dupont ACME"},
		},
		{
			name:      "first name present",
			company:   "ACME",
			firstName: "Jean",
			lastName:  "Dupont",
			want: map[string]any{
				"receiverFirmName":  "ACME",
				"receiverFirstName": "Jean",
				"receiverLastName":  "Dupont",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dpd.HarmonizeReceiver(tt.company, tt.firstName, tt.lastName))
		})
	}
}

func TestEncoder_Tree(t *testing.T) {
	p := encode(t, testInput())
	tree := p.Tree

	assert.Equal(t, "Dupont ACME", tree["receiverFirmName"])
	assert.Equal(t, 1234, tree["payerId"])
	assert.Equal(t, "FR", tree["senderCountryCode"])
	assert.Equal(t, "077", tree["departureUnitId"])
	assert.Equal(t, map[string]any{"productId": 40275}, tree["products"])
	assert.Equal(t, false, tree["replaceSender"], "replaceSender is always sent")
	assert.NotContains(t, tree, "replaceSenderAddress")
	assert.NotContains(t, tree, "payerAddressId", "zero ids are pruned")
	assert.NotContains(t, tree, "receiverStreetInfo", "empty strings are pruned")

	manifest := tree["manifest"].(map[string]any)
	assert.Equal(t, "PDF", manifest["fileType"])
	assert.NotContains(t, manifest, "referenceAsBarcode")

	parcels := tree["parcels"].([]any)
	require.Len(t, parcels, 1)
	parcel := parcels[0].(map[string]any)
	assert.Equal(t, "SO042", parcel["cref1"])
	assert.NotContains(t, parcel, "cref2")
}

func TestEncoder_XML(t *testing.T) {
	p := encode(t, testInput())

	var doc struct {
		XMLName xml.Name
		Request struct {
			ReplaceSender    string `xml:"replaceSender"`
			ReceiverFirmName string `xml:"receiverFirmName"`
			ProductID        string `xml:"products>productId"`
			Weight           string `xml:"parcels>weight"`
			FileType         string `xml:"manifest>fileType"`
		} `xml:"request"`
	}
	require.NoError(t, xml.Unmarshal(p.Body, &doc))

	assert.Equal(t, dpd.Namespace, doc.XMLName.Space)
	assert.Equal(t, "CreateShipmentWithLabelsBc", doc.XMLName.Local)
	assert.Equal(t, "false", doc.Request.ReplaceSender)
	assert.Equal(t, "Dupont ACME", doc.Request.ReceiverFirmName)
	assert.Equal(t, "40275", doc.Request.ProductID)
	assert.Equal(t, "2.5", doc.Request.Weight)
	assert.Equal(t, "PDF", doc.Request.FileType)

	var creds struct {
		UserID   string `xml:"userid"`
		Password string `xml:"password"`
	}
	require.NoError(t, xml.Unmarshal(p.Header, &creds))
	assert.Equal(t, "demo", creds.UserID)
	assert.Equal(t, "secret", creds.Password)
}

func TestEncoder_ActionsAreCopied(t *testing.T) {
	dpd.Encoder{}.Actions()[0] = "cancel"
	assert.Equal(t, []string{"shipping"}, dpd.Encoder{}.Actions())
}

func TestEncoder_Deterministic(t *testing.T) {
	assert.Equal(t, encode(t, testInput()).Body, encode(t, testInput()).Body)
}

func TestEncoder_ReplaceSender(t *testing.T) {
	in := testInput()
	in["service"].(map[string]any)["replaceSender"] = true
	in["fromAddress"].(map[string]any)["company"] = ""

	tree := encode(t, in).Tree
	assert.Equal(t, true, tree["replaceSender"])
	addr := tree["replaceSenderAddress"].(map[string]any)
	assert.Equal(t, "Durand", addr["name"], "falls back to the name without a company")
	assert.Equal(t, "69002", addr["zipCode"])
	assert.NotContains(t, addr, "streetInfo")
}

func TestSchema_Coercions(t *testing.T) {
	schema, err := dpd.Schema()
	require.NoError(t, err)

	in := testInput()
	in["service"].(map[string]any)["product"] = "DPD SOMETHING NEW"
	in["toAddress"].(map[string]any)["firstName"] = "Hélène"
	in["toAddress"].(map[string]any)["name"] = "Müller"
	in["toAddress"].(map[string]any)["company"] = "Café"

	s, err := shipper.Normalize(in, schema)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Service.Int("product"), "unknown products fall back to DPD CLASSIC")
	assert.Equal(t, "Helene", s.To.String("firstName"))
	assert.Equal(t, "Muller", s.To.String("name"))
	assert.Equal(t, "Cafe", s.To.String("company"))
	assert.Equal(t, "ZPL", schema.Defaults()[shipper.GroupService]["labelFormat"])
}

func TestSchema_ProductCodePassesThrough(t *testing.T) {
	schema, err := dpd.Schema()
	require.NoError(t, err)

	in := testInput()
	in["service"].(map[string]any)["product"] = float64(40033)

	s, err := shipper.Normalize(in, schema)
	require.NoError(t, err)
	assert.Equal(t, 40033, s.Service.Int("product"))
}

func TestSchema_RequiredFields(t *testing.T) {
	schema, err := dpd.Schema()
	require.NoError(t, err)

	in := testInput()
	delete(in["service"].(map[string]any), "agencyId")

	_, err = shipper.Normalize(in, schema)
	var ve *shipper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "agencyId", ve.Field)
}

func TestSchema_CustomerIDOutOfRange(t *testing.T) {
	schema, err := dpd.Schema()
	require.NoError(t, err)

	in := testInput()
	in["service"].(map[string]any)["customerId"] = 1e20

	_, err = shipper.Normalize(in, schema)
	var ve *shipper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "customerId", ve.Field)
	assert.Equal(t, shipper.GroupService, ve.Group)
}

func dpdServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, _ := io.ReadAll(r.Body)
		if r.Header.Get("SOAPAction") == "" || !strings.Contains(string(req), "<UserCredentials") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCarrier_Execute(t *testing.T) {
	label := []byte("%PDF-1.4 label")
	attachment := []byte("%PDF-1.4 customs")
	server := dpdServer(t, http.StatusOK, dpd.MockResponse("250012345678", label, attachment))
	c := newTestCarrier(t, dpd.NewSOAPTransportWithClient(server.URL, server.Client(), nil))

	result, err := c.Execute(context.Background(), testInput(), "shipping")
	require.NoError(t, err)
	require.Len(t, result.Parcels, 1)

	parcel := result.Parcels[0]
	assert.Equal(t, "250012345678", parcel.Tracking.Number)
	assert.Equal(t, "https://www.dpd.fr/trace/250012345678", parcel.Tracking.URL)
	assert.Equal(t, label, parcel.Label.Data)
	assert.Equal(t, "PDF", parcel.Label.Type)

	require.Len(t, result.Annexes, 1)
	assert.Equal(t, attachment, result.Annexes[0].Data)
	assert.Equal(t, "EPRINTATTACHMENT", result.Annexes[0].Type)
}

func TestCarrier_Fault(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusInternalServerError} {
		server := dpdServer(t, status, dpd.MockFault("Invalid customer"))
		c := newTestCarrier(t, dpd.NewSOAPTransportWithClient(server.URL, server.Client(), nil))

		_, err := c.Execute(context.Background(), testInput(), "shipping")
		var ce *shipper.CarrierError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "soap:Server", ce.Code)
		assert.Equal(t, "Invalid customer", ce.Message)
	}
}

func TestCarrier_UnexpectedStatus(t *testing.T) {
	server := dpdServer(t, http.StatusServiceUnavailable, []byte("maintenance"))
	c := newTestCarrier(t, dpd.NewSOAPTransportWithClient(server.URL, server.Client(), nil))

	_, err := c.Execute(context.Background(), testInput(), "shipping")
	var ce *shipper.CarrierError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, shipper.CodeUnexpectedStatus, ce.Code)
}

func TestDecoder_MissingLabel(t *testing.T) {
	body := []byte(`<CreateShipmentWithLabelsBcResponse xmlns="http://www.cargonet.software"><CreateShipmentWithLabelsBcResult><shipments><ShipmentBc><Shipment><parcelnumber>1</parcelnumber></Shipment></ShipmentBc></shipments><labels/></CreateShipmentWithLabelsBcResult></CreateShipmentWithLabelsBcResponse>`)

	_, err := dpd.Decoder{}.Decode(context.Background(), &shipper.TransportResult{Body: body}, "PDF")
	assert.True(t, errors.Is(err, shipper.ErrDecode))
}

func TestCarrier_Mock(t *testing.T) {
	c := newTestCarrier(t, dpd.NewMockTransport())

	result, err := c.Execute(context.Background(), testInput(), "shipping")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Parcels[0].Tracking.Number)
	assert.Len(t, result.Annexes, 1)

	tr := dpd.NewMockTransport()
	tr.SimulateErrors = true
	c = newTestCarrier(t, tr)
	_, err = c.Execute(context.Background(), testInput(), "shipping")
	assert.True(t, errors.Is(err, shipper.ErrCarrier))
}
