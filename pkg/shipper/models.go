package shipper

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Group is a logical group of schema fields.
type Group string

const (
	GroupAuth        Group = "auth"
	GroupService     Group = "service"
	GroupFromAddress Group = "fromAddress"
	GroupToAddress   Group = "toAddress"
	GroupParcels     Group = "parcels"
)

// Groups lists every group in normalization order.
var Groups = []Group{GroupAuth, GroupService, GroupFromAddress, GroupToAddress, GroupParcels}

// Valid reports whether g is a known group.
func (g Group) Valid() bool {
	for _, known := range Groups {
		if g == known {
			return true
		}
	}
	return false
}

// Section holds the normalized values of one group.
type Section map[string]any

// String returns the value of key rendered as a string.
func (s Section) String(key string) string {
	switch v := s[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value of key as an int, or 0 when it is missing or
// does not fit.
func (s Section) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0
		}
		return int(v)
	case float64:
		if !floatFitsInt(v) {
			return 0
		}
		return int(v)
	case decimal.Decimal:
		if !decimalFitsInt(v) {
			return 0
		}
		return int(v.IntPart())
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

// Bool returns the value of key as a bool.
func (s Section) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Decimal returns the value of key as a decimal, or zero.
func (s Section) Decimal(key string) decimal.Decimal {
	switch v := s[key].(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Shipment is the normalized request every encoder consumes.
// It is built once per call by Normalize and never mutated afterwards.
type Shipment struct {
	Auth    Section
	Service Section
	From    Section
	To      Section
	Parcels []Section
}

// Section returns the values of a non-sequence group.
func (s *Shipment) Section(g Group) Section {
	switch g {
	case GroupAuth:
		return s.Auth
	case GroupService:
		return s.Service
	case GroupFromAddress:
		return s.From
	case GroupToAddress:
		return s.To
	default:
		return nil
	}
}

// Payload is the carrier wire request produced by an Encoder.
// Templated carriers fill Body; key/value carriers fill Tree and
// usually Body with its serialized form.
type Payload struct {
	Carrier      string
	Action       string
	Header       []byte // protocol header built from auth, e.g. SOAP credentials
	Body         []byte
	Tree         map[string]any
	OutputFormat string
}

// Exchange is the raw request/response pair of one carrier call.
type Exchange struct {
	Request    []byte
	StatusCode int
	Response   []byte
}

// TransportResult is what a Transport hands to the Decoder.
type TransportResult struct {
	Body []byte // carrier native body, outer envelope removed
	Raw  Exchange
}

// Tracking identifies a parcel in the carrier's tracking system.
type Tracking struct {
	Number string `json:"number"`
	URL    string `json:"url"`
}

// Label is a printable label artifact.
type Label struct {
	Data []byte `json:"data"` // raw bytes, never carrier markup
	Name string `json:"name"`
	Type string `json:"type"`
}

// ParcelResult is the outcome for one parcel.
type ParcelResult struct {
	ID        int      `json:"id"`
	Reference string   `json:"reference"`
	Tracking  Tracking `json:"tracking"`
	Label     Label    `json:"label"`
}

// Annex is an extra document returned alongside the labels.
type Annex struct {
	Data []byte `json:"data"`
	Type string `json:"type"`
}

// Result is the normalized response of a carrier call.
type Result struct {
	Parcels []ParcelResult `json:"parcels"`
	Annexes []Annex        `json:"annexes"`
}
