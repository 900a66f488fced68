package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/quotelens/internal/model"
)

// WriteCSV writes a header row and one record per table row
func WriteCSV(w io.Writer, t model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the table as an array of objects keyed by column.
// Key order follows the columns.
func WriteJSON(w io.Writer, t model.Table) error {
	records := make([]orderedRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := orderedRecord{columns: t.Columns, values: make([]any, len(t.Columns))}
		for i := range t.Columns {
			if i < len(row) {
				rec.values[i] = jsonCell(row[i])
			}
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	return nil
}

type orderedRecord struct {
	columns []string
	values  []any
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, col := range r.columns {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}
