package shipper

import "github.com/shopspring/decimal"

// Keep marks a value that PruneEmpty must retain even when empty, such
// as a collection the remote protocol requires as a marker.
type Keep struct {
	Value any
}

// PruneEmpty recursively drops map and sequence entries whose value is
// empty: nil, "", false, zero numbers, and maps or sequences that are
// empty or become empty once pruned. Keep values are unwrapped and
// retained as-is.
func PruneEmpty(v any) any {
	switch t := v.(type) {
	case Keep:
		return t.Value
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if kept, ok := val.(Keep); ok {
				out[k] = kept.Value
				continue
			}
			if pruned := PruneEmpty(val); !blank(pruned) {
				out[k] = pruned
			}
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if kept, ok := val.(Keep); ok {
				out = append(out, kept.Value)
				continue
			}
			if pruned := PruneEmpty(val); !blank(pruned) {
				out = append(out, pruned)
			}
		}
		return out
	case []map[string]any:
		items := make([]any, len(t))
		for i, m := range t {
			items[i] = m
		}
		return PruneEmpty(items)
	default:
		return v
	}
}

func blank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case decimal.Decimal:
		return t.IsZero()
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
