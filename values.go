package fabricate

import "reflect"

// asColumn normalises a generator result into a column. Slices and arrays of
// any element type become []any; every other value is treated as a scalar and
// wrapped in a single-element column.
func asColumn(value any) []any {
	if value == nil {
		return []any{nil}
	}
	if col, ok := value.([]any); ok {
		return col
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return []any{value}
	}
}

// toFloats coerces a column of numeric values into []float64. The boolean
// reports whether every element was numeric.
func toFloats(values []any) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
