package etl

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// RenderCSV serializes a transformed record set as RFC 4180 CSV: a header row
// in schema order followed by one row per record, with nulls rendered as
// empty strings. Records must already be projected onto the table schema.
func RenderCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Columns); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	row := make([]string, len(Columns))
	for i, rec := range records {
		for j, col := range Columns {
			row[j] = formatValue(rec[col])
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// formatValue renders one typed cell for the archive file.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
