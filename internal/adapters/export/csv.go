package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"hotel_value/internal/domain"
)

// WriteCSV writes one row per record. The header is the sorted union of every record's keys,
// and the features list is joined with ", ". Nothing is written for an empty slice.
func WriteCSV[T Row](w io.Writer, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	maps, cols, err := flattenAll(rows)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, m := range maps {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = cellText(c, m[c])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func flattenAll[T Row](rows []T) ([]map[string]any, []string, error) {
	maps := make([]map[string]any, len(rows))
	seen := map[string]struct{}{}
	for i, r := range rows {
		m, err := r.Flatten()
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		maps[i] = m
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return maps, cols, nil
}

func cellText(col string, v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		if col == domain.KeyFeatures {
			parts := make([]string, 0, len(t))
			for _, x := range t {
				parts = append(parts, fmt.Sprint(x))
			}
			return strings.Join(parts, ", ")
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
