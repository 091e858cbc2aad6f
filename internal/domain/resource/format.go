package resource

import (
	"strconv"
	"time"
)

// ShapeRow formats a raw database row for list output according to the
// schema's field types: currency and percent values gain fixed two-decimal
// string forms, dates collapse to YYYY-MM-DD, and unknown columns (id,
// timestamps) pass through untouched.
func (s *Schema) ShapeRow(row map[string]any) map[string]any {
	shaped := make(map[string]any, len(row))
	for col, v := range row {
		f := s.FieldByName(col)
		if f == nil || v == nil {
			shaped[col] = passThrough(v)
			continue
		}
		switch f.Type {
		case Currency:
			shaped[col] = formatDecimal(v, "")
		case Percent:
			shaped[col] = formatDecimal(v, "%")
		case Date:
			shaped[col] = formatDate(v)
		default:
			shaped[col] = passThrough(v)
		}
	}
	return shaped
}

// passThrough normalizes driver-side types that do not render cleanly as JSON.
func passThrough(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return v
}

func formatDecimal(v any, suffix string) any {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', 2, 64) + suffix
	case float32:
		return strconv.FormatFloat(float64(n), 'f', 2, 32) + suffix
	case int64:
		return strconv.FormatFloat(float64(n), 'f', 2, 64) + suffix
	case string:
		// Numeric columns may scan as strings; reformat when parseable.
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return strconv.FormatFloat(parsed, 'f', 2, 64) + suffix
		}
		return n
	default:
		return v
	}
}

func formatDate(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(dateLayout)
	}
	return v
}
