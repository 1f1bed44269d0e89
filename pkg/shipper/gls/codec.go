package gls

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	frameStart = `\\\\\GLS\\\\\`
	frameEnd   = `/////GLS/////`
)

// Marshal frames fields as a Unibox request line. Fields are written in
// code order so identical shipments produce identical requests.
func Marshal(fields map[string]any) ([]byte, error) {
	tags := make([]string, 0, len(fields))
	for tag := range fields {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString(frameStart)
	b.WriteByte('|')
	for _, tag := range tags {
		text, err := fieldText(fields[tag])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", tag, err)
		}
		b.WriteString(tag)
		b.WriteByte(':')
		b.WriteString(strings.ReplaceAll(text, "|", " "))
		b.WriteByte('|')
	}
	b.WriteString(frameEnd)
	return []byte(b.String()), nil
}

func fieldText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case decimal.Decimal:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// ParseFields decodes a Unibox response line. The segments before the
// first and after the last '|' are framing and ignored; every other
// non-empty segment is CODE:VALUE, split on the first ':'.
func ParseFields(line string) (map[string]string, error) {
	segments := strings.Split(strings.TrimSpace(line), "|")
	if len(segments) < 2 {
		return nil, fmt.Errorf("response is not a Unibox line")
	}

	fields := make(map[string]string, len(segments)-2)
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		key, value, ok := strings.Cut(seg, ":")
		if !ok {
			return nil, fmt.Errorf("segment %q has no ':'", seg)
		}
		fields[key] = value
	}
	return fields, nil
}
