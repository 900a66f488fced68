package wikidata

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/quotelens/internal/corpus"
	"github.com/ppiankov/quotelens/internal/model"
)

// LoadLabels reads a delimited label table. The header must name a QID and a
// Label column; a Description column is optional. The first row for a QID wins.
func LoadLabels(r io.Reader, delimiter rune) (model.LabelTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("label table is empty")
		}
		return nil, fmt.Errorf("read label header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	idCol, ok := cols["qid"]
	if !ok {
		return nil, fmt.Errorf("label table has no QID column")
	}
	labelCol, ok := cols["label"]
	if !ok {
		return nil, fmt.Errorf("label table has no Label column")
	}
	descCol, hasDesc := cols["description"]

	table := make(model.LabelTable)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read label row: %w", err)
		}
		if idCol >= len(rec) || labelCol >= len(rec) {
			continue
		}

		id := strings.TrimSpace(rec[idCol])
		if id == "" {
			continue
		}
		if _, dup := table[id]; dup {
			continue
		}

		l := model.Label{Label: rec[labelCol]}
		if hasDesc && descCol < len(rec) {
			l.Description = rec[descCol]
		}
		table[id] = l
	}

	return table, nil
}

// LoadLabelsFile loads a label table, tab-delimited for .tsv files
func LoadLabelsFile(path string) (model.LabelTable, error) {
	rc, err := corpus.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	delimiter := ','
	if strings.Contains(path, ".tsv") {
		delimiter = '\t'
	}

	table, err := LoadLabels(rc, delimiter)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return table, nil
}
