package model

// Table is a plain row/column view of any result set.
// Renderers consume tables without knowing where the rows came from.
type Table struct {
	Title   string   `json:"title,omitempty"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// AddRow appends a row. Missing trailing cells are left nil.
func (t *Table) AddRow(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Column returns the index of a named column, or -1
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
