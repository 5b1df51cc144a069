package normalizer

// Table is a column-labelled snapshot of the in-memory data. Transform steps
// take a snapshot and return a new one; nothing mutates a table after it is
// built, which keeps the step ordering explicit instead of hidden in shared
// state.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable builds a snapshot from a column list and row data. Rows are copied.
func NewTable(columns []string, rows [][]string) Table {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		index[name] = i
	}
	copied := make([][]string, len(rows))
	for i, row := range rows {
		copied[i] = append([]string(nil), row...)
	}
	return Table{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    copied,
	}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.rows)
}

// Columns returns a copy of the column names in order.
func (t Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Rows returns a copy of the row data.
func (t Table) Rows() [][]string {
	copied := make([][]string, len(t.rows))
	for i, row := range t.rows {
		copied[i] = append([]string(nil), row...)
	}
	return copied
}

// value reads one cell. Unknown columns and short rows read as empty, which
// matches how the raw file treats absent second-leg fields.
func (t Table) value(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) || i >= len(t.rows[row]) {
		return ""
	}
	return t.rows[row][i]
}

// withColumns returns a snapshot with the named columns appended; values[i]
// holds the new cells for column names[i].
func (t Table) withColumns(names []string, values [][]string) Table {
	columns := append(t.Columns(), names...)
	rows := t.Rows()
	for i := range rows {
		for _, column := range values {
			cell := ""
			if i < len(column) {
				cell = column[i]
			}
			rows[i] = append(rows[i], cell)
		}
	}
	return NewTable(columns, rows)
}

// mapColumn returns a snapshot with fn applied to every cell of one column.
func (t Table) mapColumn(name string, fn func(string) string) Table {
	i, ok := t.index[name]
	if !ok {
		return t
	}
	rows := t.Rows()
	for r := range rows {
		for len(rows[r]) <= i {
			rows[r] = append(rows[r], "")
		}
		rows[r][i] = fn(rows[r][i])
	}
	return NewTable(t.columns, rows)
}

// selectColumns returns a snapshot holding only the named columns, in the
// given order. Columns not named are dropped.
func (t Table) selectColumns(names ...string) Table {
	rows := make([][]string, len(t.rows))
	for r := range t.rows {
		row := make([]string, len(names))
		for c, name := range names {
			row[c] = t.value(r, name)
		}
		rows[r] = row
	}
	return NewTable(names, rows)
}
