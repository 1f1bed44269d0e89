package shipper

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// FieldType is the value type a field holds after normalization.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeBool    FieldType = "bool"
	TypeEnum    FieldType = "enum"
	TypeDecimal FieldType = "decimal"
)

func (t FieldType) valid() bool {
	switch t {
	case TypeString, TypeInt, TypeBool, TypeEnum, TypeDecimal:
		return true
	}
	return false
}

// FieldSpec describes one schema field.
type FieldSpec struct {
	Name         string         `json:"name" yaml:"name"`
	Type         FieldType      `json:"type" yaml:"type"`
	Required     bool           `json:"required" yaml:"required"`
	EmptyAllowed bool           `json:"emptyAllowed" yaml:"emptyAllowed"`
	Default      any            `json:"default,omitempty" yaml:"default,omitempty"`
	Allowed      []any          `json:"allowed,omitempty" yaml:"allowed,omitempty"`
	Coerce       CoerceKind     `json:"coerce,omitempty" yaml:"coerce,omitempty"`
	Enum         map[string]any `json:"enum,omitempty" yaml:"enum,omitempty"`
	EnumFallback any            `json:"enumFallback,omitempty" yaml:"enumFallback,omitempty"`
	Validate     string         `json:"validate,omitempty" yaml:"validate,omitempty"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// Schema maps each group to its field specs. A Schema is immutable once
// built and safe for concurrent use.
type Schema struct {
	groups map[Group]map[string]FieldSpec
}

// Field returns the spec of a field.
func (s *Schema) Field(g Group, name string) (FieldSpec, bool) {
	f, ok := s.groups[g][name]
	return f, ok
}

// Fields returns the specs of a group sorted by name.
func (s *Schema) Fields(g Group) []FieldSpec {
	fields := make([]FieldSpec, 0, len(s.groups[g]))
	for _, f := range s.groups[g] {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// Describe returns every group's fields, for form generation and listing.
func (s *Schema) Describe() map[Group][]FieldSpec {
	out := make(map[Group][]FieldSpec, len(s.groups))
	for _, g := range Groups {
		out[g] = s.Fields(g)
	}
	return out
}

// Defaults returns the value every field takes when the caller omits it.
func (s *Schema) Defaults() map[Group]map[string]any {
	out := make(map[Group]map[string]any, len(s.groups))
	for _, g := range Groups {
		vals := make(map[string]any, len(s.groups[g]))
		for name, f := range s.groups[g] {
			vals[name] = f.Default
		}
		out[g] = vals
	}
	return out
}

func addressFields() map[string]FieldSpec {
	return map[string]FieldSpec{
		"name":      {Type: TypeString, Required: true, Default: ""},
		"firstName": {Type: TypeString, EmptyAllowed: true, Default: ""},
		"company":   {Type: TypeString, EmptyAllowed: true, Default: ""},
		"street1":   {Type: TypeString, Required: true, Default: ""},
		"street2":   {Type: TypeString, EmptyAllowed: true, Default: ""},
		"street3":   {Type: TypeString, EmptyAllowed: true, Default: ""},
		"city":      {Type: TypeString, Required: true, Default: ""},
		"zip":       {Type: TypeString, Required: true, Default: ""},
		"country":   {Type: TypeString, Required: true, Default: "", Coerce: CoerceUpper, Validate: "iso3166_1_alpha2"},
		"phone":     {Type: TypeString, EmptyAllowed: true, Default: ""},
		"email":     {Type: TypeString, EmptyAllowed: true, Default: "", Validate: "email"},
	}
}

// BaseSchema returns the fields every carrier needs.
func BaseSchema() *Schema {
	groups := map[Group]map[string]FieldSpec{
		GroupAuth: {
			"login":    {Type: TypeString, Required: true, Default: ""},
			"password": {Type: TypeString, Required: true, EmptyAllowed: true, Default: ""},
		},
		GroupService: {
			"labelFormat":  {Type: TypeString, Required: true, Default: "", Coerce: CoerceUpper},
			"customerId":   {Type: TypeString, EmptyAllowed: true, Default: ""},
			"agencyId":     {Type: TypeString, EmptyAllowed: true, Default: ""},
			"product":      {Type: TypeString, EmptyAllowed: true, Default: ""},
			"productCode":  {Type: TypeString, EmptyAllowed: true, Default: ""},
			"shippingId":   {Type: TypeString, EmptyAllowed: true, Default: ""},
			"shippingDate": {Type: TypeString, EmptyAllowed: true, Default: "", Validate: "datetime=2006-01-02"},
			"reference1":   {Type: TypeString, EmptyAllowed: true, Default: ""},
			"reference2":   {Type: TypeString, EmptyAllowed: true, Default: ""},
			"reference3":   {Type: TypeString, EmptyAllowed: true, Default: ""},
			"instructions": {Type: TypeString, EmptyAllowed: true, Default: ""},
		},
		GroupFromAddress: addressFields(),
		GroupToAddress:   addressFields(),
		GroupParcels: {
			"weight":    {Type: TypeDecimal, Required: true, Coerce: CoerceDecimal},
			"reference": {Type: TypeString, EmptyAllowed: true, Default: ""},
		},
	}
	for _, fields := range groups {
		for name, f := range fields {
			f.Name = name
			fields[name] = f
		}
	}
	return &Schema{groups: groups}
}

// FieldOverride changes or adds one field. Unset (nil) attributes keep
// the base definition.
type FieldOverride struct {
	New          bool           `yaml:"new"`
	Type         *FieldType     `yaml:"type"`
	Required     *bool          `yaml:"required"`
	EmptyAllowed *bool          `yaml:"emptyAllowed"`
	Default      any            `yaml:"default"`
	Allowed      []any          `yaml:"allowed"`
	Coerce       *CoerceKind    `yaml:"coerce"`
	Enum         map[string]any `yaml:"enum"`
	EnumFallback any            `yaml:"enumFallback"`
	Validate     *string        `yaml:"validate"`
	Description  *string        `yaml:"description"`
}

// Overrides is a carrier override table keyed by group then field name.
type Overrides map[Group]map[string]FieldOverride

// LoadOverrides decodes a YAML override table. Unknown attributes are
// rejected.
func LoadOverrides(data []byte) (Overrides, error) {
	var o Overrides
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrSchemaConfig, err)
	}
	return o, nil
}

// BuildSchema applies override tables to the base schema in order;
// later tables win. Unknown groups or fields (without new: true) fail.
func BuildSchema(overrides ...Overrides) (*Schema, error) {
	s := BaseSchema()
	for _, o := range overrides {
		if err := s.apply(o); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Schema) apply(o Overrides) error {
	groups := make([]string, 0, len(o))
	for g := range o {
		groups = append(groups, string(g))
	}
	sort.Strings(groups)

	for _, gname := range groups {
		g := Group(gname)
		if !g.Valid() {
			return fmt.Errorf("%w: unknown group %q", ErrSchemaConfig, g)
		}
		names := make([]string, 0, len(o[g]))
		for name := range o[g] {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ov := o[g][name]
			base, exists := s.groups[g][name]
			switch {
			case !exists && !ov.New:
				return fmt.Errorf("%w: %s.%s is not a base field (set new: true to add it)", ErrSchemaConfig, g, name)
			case exists && ov.New:
				return fmt.Errorf("%w: %s.%s already exists", ErrSchemaConfig, g, name)
			case !exists:
				base = FieldSpec{Name: name, Type: TypeString, EmptyAllowed: true}
			}
			merged := merge(base, ov)
			if err := checkSpec(g, merged); err != nil {
				return err
			}
			s.groups[g][name] = merged
		}
	}
	return nil
}

func merge(f FieldSpec, ov FieldOverride) FieldSpec {
	if ov.Type != nil {
		f.Type = *ov.Type
	}
	if ov.Required != nil {
		f.Required = *ov.Required
	}
	if ov.EmptyAllowed != nil {
		f.EmptyAllowed = *ov.EmptyAllowed
	}
	if ov.Default != nil {
		f.Default = ov.Default
	}
	if ov.Allowed != nil {
		f.Allowed = ov.Allowed
	}
	if ov.Coerce != nil {
		f.Coerce = *ov.Coerce
	}
	if ov.Enum != nil {
		f.Enum = ov.Enum
	}
	if ov.EnumFallback != nil {
		f.EnumFallback = ov.EnumFallback
	}
	if ov.Validate != nil {
		f.Validate = *ov.Validate
	}
	if ov.Description != nil {
		f.Description = *ov.Description
	}
	return f
}

func checkSpec(g Group, f FieldSpec) error {
	if !f.Type.valid() {
		return fmt.Errorf("%w: %s.%s has unknown type %q", ErrSchemaConfig, g, f.Name, f.Type)
	}
	if f.Coerce != "" && !f.Coerce.valid() {
		return fmt.Errorf("%w: %s.%s has unknown coercion %q", ErrSchemaConfig, g, f.Name, f.Coerce)
	}
	if f.Coerce == CoerceEnum && len(f.Enum) == 0 {
		return fmt.Errorf("%w: %s.%s uses enum coercion without an enum table", ErrSchemaConfig, g, f.Name)
	}
	if f.EnumFallback != nil && len(f.Allowed) > 0 && !contains(f.Allowed, f.EnumFallback) {
		return fmt.Errorf("%w: %s.%s enum fallback %v is not an allowed value", ErrSchemaConfig, g, f.Name, f.EnumFallback)
	}
	return nil
}
