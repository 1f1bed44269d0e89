package dpd

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// marshalTree serializes a nested mapping as XML elements under root.
// Keys are emitted in sorted order, sequences repeat their element and
// nil values are skipped. Children inherit the root's default namespace.
func marshalTree(root, namespace string, tree map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	start := xml.StartElement{Name: xml.Name{Space: namespace, Local: root}}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	if err := encodeMap(enc, tree); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeMap(enc *xml.Encoder, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := encodeElement(enc, k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func encodeElement(enc *xml.Encoder, name string, v any) error {
	if v == nil {
		return nil
	}
	if items, ok := v.([]any); ok {
		for _, item := range items {
			if err := encodeElement(enc, name, item); err != nil {
				return err
			}
		}
		return nil
	}

	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch t := v.(type) {
	case map[string]any:
		if err := encodeMap(enc, t); err != nil {
			return err
		}
	default:
		text, err := scalarText(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := enc.EncodeToken(xml.CharData(text)); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case decimal.Decimal:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
