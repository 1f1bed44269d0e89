package shipper_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
)

func address(name string) map[string]any {
	return map[string]any{
		"name":    name,
		"street1": "12 rue de la Paix",
		"city":    "Paris",
		"zip":     "75002",
		"country": "fr",
	}
}

func validInput() map[string]any {
	return map[string]any{
		"auth":        map[string]any{"login": "user", "password": ""},
		"service":     map[string]any{"labelFormat": "pdf", "shippingDate": "2024-05-02"},
		"fromAddress": address("Sender"),
		"toAddress":   address("Receiver"),
		"parcels":     []any{map[string]any{"weight": 1.5, "reference": "REF-1"}},
	}
}

func validationErrors(t *testing.T, err error) map[string]*shipper.ValidationError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, shipper.ErrValidation))

	out := make(map[string]*shipper.ValidationError)
	var collect func(error)
	collect = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				collect(inner)
			}
			return
		}
		var ve *shipper.ValidationError
		if errors.As(e, &ve) {
			out[ve.Path] = ve
		}
	}
	collect(err)
	return out
}

func TestNormalize_Valid(t *testing.T) {
	s, err := shipper.Normalize(validInput(), shipper.BaseSchema())
	require.NoError(t, err)

	assert.Equal(t, "user", s.Auth.String("login"))
	assert.Equal(t, "", s.Auth.String("password"))
	assert.Equal(t, "PDF", s.Service.String("labelFormat"))
	assert.Equal(t, "FR", s.To.String("country"))
	assert.Equal(t, "", s.To.String("company"), "optional fields take their default")

	require.Len(t, s.Parcels, 1)
	assert.True(t, decimal.RequireFromString("1.5").Equal(s.Parcels[0].Decimal("weight")))
	assert.Equal(t, "REF-1", s.Parcels[0].String("reference"))
}

func TestNormalize_Idempotent(t *testing.T) {
	schema := shipper.BaseSchema()

	first, err := shipper.Normalize(validInput(), schema)
	require.NoError(t, err)

	raw := map[string]any{
		"auth":        map[string]any(first.Auth),
		"service":     map[string]any(first.Service),
		"fromAddress": map[string]any(first.From),
		"toAddress":   map[string]any(first.To),
		"parcels":     []any{map[string]any(first.Parcels[0])},
	}
	second, err := shipper.Normalize(raw, schema)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalize_MissingRequired(t *testing.T) {
	in := validInput()
	delete(in["auth"].(map[string]any), "login")
	in["parcels"] = []any{map[string]any{"reference": "REF-1"}}

	_, err := shipper.Normalize(in, shipper.BaseSchema())
	errs := validationErrors(t, err)

	require.Contains(t, errs, "auth.login")
	assert.Equal(t, "login", errs["auth.login"].Field)
	require.Contains(t, errs, "parcels[0].weight")
	assert.Equal(t, shipper.GroupParcels, errs["parcels[0].weight"].Group)
	assert.Equal(t, "required field is missing", errs["parcels[0].weight"].Reason)
}

func TestNormalize_EmptyNotAllowed(t *testing.T) {
	in := validInput()
	in["toAddress"].(map[string]any)["city"] = ""

	_, err := shipper.Normalize(in, shipper.BaseSchema())
	errs := validationErrors(t, err)

	require.Contains(t, errs, "toAddress.city")
	assert.Equal(t, "must not be empty", errs["toAddress.city"].Reason)
}

func TestNormalize_Checks(t *testing.T) {
	tests := []struct {
		name  string
		group string
		field string
		value any
		path  string
	}{
		{"bad email", "toAddress", "email", "not-an-email", "toAddress.email"},
		{"bad country", "fromAddress", "country", "zz", "fromAddress.country"},
		{"bad date", "service", "shippingDate", "02/05/2024", "service.shippingDate"},
		{"wrong type", "toAddress", "name", 42, "toAddress.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in[tt.group].(map[string]any)[tt.field] = tt.value

			_, err := shipper.Normalize(in, shipper.BaseSchema())
			errs := validationErrors(t, err)
			assert.Contains(t, errs, tt.path)
		})
	}
}

func TestNormalize_BadWeight(t *testing.T) {
	in := validInput()
	in["parcels"] = []any{map[string]any{"weight": "heavy"}}

	_, err := shipper.Normalize(in, shipper.BaseSchema())
	errs := validationErrors(t, err)
	assert.Contains(t, errs, "parcels[0].weight")
}

func TestNormalize_WeightFromString(t *testing.T) {
	in := validInput()
	in["parcels"] = []any{map[string]any{"weight": "2.25"}}

	s, err := shipper.Normalize(in, shipper.BaseSchema())
	require.NoError(t, err)
	assert.Equal(t, "2.25", s.Parcels[0].String("weight"))
}

func TestNormalize_NoParcels(t *testing.T) {
	in := validInput()
	in["parcels"] = []any{}

	_, err := shipper.Normalize(in, shipper.BaseSchema())
	errs := validationErrors(t, err)
	require.Contains(t, errs, "parcels")
	assert.Equal(t, "at least one parcel is required", errs["parcels"].Reason)
}

func TestNormalize_GroupNotObject(t *testing.T) {
	in := validInput()
	in["service"] = "express"

	_, err := shipper.Normalize(in, shipper.BaseSchema())
	errs := validationErrors(t, err)
	assert.Contains(t, errs, "service")
}

func TestNormalize_UnknownKeysIgnored(t *testing.T) {
	in := validInput()
	in["service"].(map[string]any)["colour"] = "blue"
	in["extra"] = map[string]any{"a": 1}

	s, err := shipper.Normalize(in, shipper.BaseSchema())
	require.NoError(t, err)
	_, ok := s.Service["colour"]
	assert.False(t, ok)
}

func TestNormalize_Overrides(t *testing.T) {
	overrides, err := shipper.LoadOverrides([]byte(`
service:
  product:
    default: STD
    coerce: enum
    enum:
      Express: EXP
      Standard: STD
    allowed: [EXP, STD]
  insurance:
    new: true
    type: int
    coerce: int
    default: 0
toAddress:
  name:
    coerce: accents
`))
	require.NoError(t, err)
	schema, err := shipper.BuildSchema(overrides)
	require.NoError(t, err)

	t.Run("defaults apply", func(t *testing.T) {
		s, err := shipper.Normalize(validInput(), schema)
		require.NoError(t, err)
		assert.Equal(t, "STD", s.Service.String("product"))
		assert.Equal(t, 0, s.Service.Int("insurance"))
	})

	t.Run("label maps to code", func(t *testing.T) {
		in := validInput()
		in["service"].(map[string]any)["product"] = "Express"
		in["service"].(map[string]any)["insurance"] = "250"
		in["toAddress"].(map[string]any)["name"] = "Hélène Müller"

		s, err := shipper.Normalize(in, schema)
		require.NoError(t, err)
		assert.Equal(t, "EXP", s.Service.String("product"))
		assert.Equal(t, 250, s.Service.Int("insurance"))
		assert.Equal(t, "Helene Muller", s.To.String("name"))
	})

	t.Run("code passes through", func(t *testing.T) {
		in := validInput()
		in["service"].(map[string]any)["product"] = "EXP"

		s, err := shipper.Normalize(in, schema)
		require.NoError(t, err)
		assert.Equal(t, "EXP", s.Service.String("product"))
	})

	t.Run("out of range integer fails", func(t *testing.T) {
		for _, v := range []any{1e20, -1e20, decimal.RequireFromString("100000000000000000000"), "100000000000000000000"} {
			in := validInput()
			in["service"].(map[string]any)["insurance"] = v

			_, err := shipper.Normalize(in, schema)
			errs := validationErrors(t, err)
			assert.Contains(t, errs, "service.insurance", "value %v", v)
		}
	})

	t.Run("unknown label fails", func(t *testing.T) {
		in := validInput()
		in["service"].(map[string]any)["product"] = "Overnight"

		_, err := shipper.Normalize(in, schema)
		errs := validationErrors(t, err)
		assert.Contains(t, errs, "service.product")
	})
}

func TestNormalize_EnumFallback(t *testing.T) {
	overrides, err := shipper.LoadOverrides([]byte(`
service:
  product:
    coerce: enum
    enum:
      Express: EXP
    enumFallback: STD
    allowed: [EXP, STD]
`))
	require.NoError(t, err)
	schema, err := shipper.BuildSchema(overrides)
	require.NoError(t, err)

	in := validInput()
	in["service"].(map[string]any)["product"] = "Overnight"

	s, err := shipper.Normalize(in, schema)
	require.NoError(t, err)
	assert.Equal(t, "STD", s.Service.String("product"))
}

func TestSection_Int(t *testing.T) {
	s := shipper.Section{
		"int":     42,
		"float":   float64(7),
		"decimal": decimal.NewFromInt(9),
		"string":  " 12 ",
		"huge":    1e20,
		"hugeDec": decimal.RequireFromString("-100000000000000000000"),
	}

	assert.Equal(t, 42, s.Int("int"))
	assert.Equal(t, 7, s.Int("float"))
	assert.Equal(t, 9, s.Int("decimal"))
	assert.Equal(t, 12, s.Int("string"))
	assert.Equal(t, 0, s.Int("huge"))
	assert.Equal(t, 0, s.Int("hugeDec"))
	assert.Equal(t, 0, s.Int("missing"))
}

func TestStripAccents(t *testing.T) {
	got, err := shipper.StripAccents("Crème brûlée à Besançon")
	require.NoError(t, err)
	assert.Equal(t, "Creme brulee a Besancon", got)
}
