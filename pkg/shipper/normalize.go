package shipper

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Normalize validates raw caller input against s and returns the
// canonical shipment. Every failing field yields a *ValidationError;
// several failures are joined. Keys unknown to the schema are ignored.
func Normalize(raw map[string]any, s *Schema) (*Shipment, error) {
	var errs []error

	section := func(g Group) Section {
		in, err := groupInput(raw, g)
		if err != nil {
			errs = append(errs, err)
		}
		out, fieldErrs := normalizeSection(s, g, string(g), in)
		errs = append(errs, fieldErrs...)
		return out
	}

	shipment := &Shipment{
		Auth:    section(GroupAuth),
		Service: section(GroupService),
		From:    section(GroupFromAddress),
		To:      section(GroupToAddress),
	}

	parcels, parcelErrs := normalizeParcels(raw, s)
	shipment.Parcels = parcels
	errs = append(errs, parcelErrs...)

	switch len(errs) {
	case 0:
		return shipment, nil
	case 1:
		return nil, errs[0]
	default:
		return nil, errors.Join(errs...)
	}
}

func groupInput(raw map[string]any, g Group) (map[string]any, error) {
	v, ok := raw[string(g)]
	if !ok || v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}, &ValidationError{Group: g, Path: string(g), Value: v, Reason: "must be an object"}
	}
	return m, nil
}

func normalizeParcels(raw map[string]any, s *Schema) ([]Section, []error) {
	var items []map[string]any
	switch v := raw[string(GroupParcels)].(type) {
	case nil:
	case []map[string]any:
		items = v
	case []any:
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, []error{&ValidationError{
					Group:  GroupParcels,
					Path:   fmt.Sprintf("parcels[%d]", i),
					Value:  item,
					Reason: "must be an object",
				}}
			}
			items = append(items, m)
		}
	default:
		return nil, []error{&ValidationError{Group: GroupParcels, Path: "parcels", Value: v, Reason: "must be a list"}}
	}

	if len(items) == 0 {
		return nil, []error{&ValidationError{Group: GroupParcels, Path: "parcels", Reason: "at least one parcel is required"}}
	}

	var errs []error
	parcels := make([]Section, 0, len(items))
	for i, item := range items {
		out, fieldErrs := normalizeSection(s, GroupParcels, fmt.Sprintf("parcels[%d]", i), item)
		parcels = append(parcels, out)
		errs = append(errs, fieldErrs...)
	}
	return parcels, errs
}

func normalizeSection(s *Schema, g Group, prefix string, in map[string]any) (Section, []error) {
	out := make(Section, len(s.groups[g]))
	var errs []error
	for _, f := range s.Fields(g) {
		v, err := normalizeField(g, prefix+"."+f.Name, f, in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[f.Name] = v
	}
	return out, errs
}

func normalizeField(g Group, path string, f FieldSpec, in map[string]any) (any, error) {
	fail := func(v any, format string, args ...any) error {
		return &ValidationError{Group: g, Field: f.Name, Path: path, Value: v, Reason: fmt.Sprintf(format, args...)}
	}

	v, provided := in[f.Name]
	if v == nil {
		provided = false
	}
	if !provided {
		if f.Default == nil {
			if f.Required {
				return nil, fail(nil, "required field is missing")
			}
			return zeroOf(f.Type), nil
		}
		v = f.Default
	}

	if isEmptyValue(v) {
		if !f.EmptyAllowed && (f.Required || provided) {
			return nil, fail(v, "must not be empty")
		}
		return zeroOf(f.Type), nil
	}

	coerced, err := coerce(f, v)
	if err != nil {
		return nil, fail(v, "cannot coerce value: %v", err)
	}
	value, err := conform(f.Type, coerced)
	if err != nil {
		return nil, fail(v, "%v", err)
	}

	if len(f.Allowed) > 0 && !contains(f.Allowed, v) && !contains(f.Allowed, value) {
		return nil, fail(v, "value %v is not one of %v", v, f.Allowed)
	}

	if f.Validate != "" {
		if str, ok := value.(string); ok && str != "" {
			if err := validate.Var(str, f.Validate); err != nil {
				return nil, fail(v, "value %q fails %s check", str, f.Validate)
			}
		}
	}
	return value, nil
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func zeroOf(t FieldType) any {
	switch t {
	case TypeInt:
		return 0
	case TypeBool:
		return false
	case TypeDecimal:
		return decimal.Zero
	default:
		return ""
	}
}
