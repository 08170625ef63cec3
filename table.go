package fabricate

import (
	"fmt"
	"strings"
)

// Table is an ordered sequence of same-length named columns. It is the
// rectangular container fabrication assembles into and resampling consumes.
// Tables are not safe for concurrent mutation; fabrication owns the
// accumulating table exclusively and hands out independent copies.
type Table struct {
	names []string
	cols  map[string][]any
	rows  int
}

// NewTable constructs an empty table with the given number of rows and no
// columns yet.
func NewTable(rows int) *Table {
	return &Table{
		cols: make(map[string][]any),
		rows: rows,
	}
}

// TableFromColumns builds a table from ordered (name, values) pairs. All
// columns must share the same length.
func TableFromColumns(names []string, cols map[string][]any) (*Table, error) {
	rows := -1
	for _, name := range names {
		values, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("fabricate: table column %q has no values", name)
		}
		if rows == -1 {
			rows = len(values)
		} else if len(values) != rows {
			return nil, fmt.Errorf("fabricate: table column %q has %d rows, want %d",
				name, len(values), rows)
		}
	}
	if rows == -1 {
		rows = 0
	}
	t := NewTable(rows)
	for _, name := range names {
		if err := t.AppendColumn(name, cols[name]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NumRows returns the table's row count.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// NumCols returns the table's column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns the named column's values.
func (t *Table) Column(name string) ([]any, bool) {
	if t == nil {
		return nil, false
	}
	values, ok := t.cols[name]
	return values, ok
}

// Has reports whether the table carries the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// AppendColumn adds a column at the end. The column length must match the
// table's row count; duplicate names are rejected.
func (t *Table) AppendColumn(name string, values []any) error {
	return t.InsertColumn(len(t.names), name, values)
}

// InsertColumn adds a column at position idx within the column order.
func (t *Table) InsertColumn(idx int, name string, values []any) error {
	if _, exists := t.cols[name]; exists {
		return fmt.Errorf("fabricate: table already has column %q", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("fabricate: column %q has %d rows, table has %d",
			name, len(values), t.rows)
	}
	if idx < 0 || idx > len(t.names) {
		return fmt.Errorf("fabricate: column index %d out of range", idx)
	}
	t.names = append(t.names, "")
	copy(t.names[idx+1:], t.names[idx:])
	t.names[idx] = name
	t.cols[name] = values
	return nil
}

// Select returns a new table containing the given rows, in order. Row indices
// may repeat; each occurrence yields an independent row.
func (t *Table) Select(rows []int) *Table {
	out := NewTable(len(rows))
	for _, name := range t.names {
		src := t.cols[name]
		values := make([]any, len(rows))
		for i, r := range rows {
			values[i] = src[r]
		}
		out.names = append(out.names, name)
		out.cols[name] = values
	}
	return out
}

// Expand replicates each row i counts[i] times, preserving order. This is the
// cascade step: parent values are broadcast unchanged into child rows.
func (t *Table) Expand(counts []int) *Table {
	total := 0
	for _, c := range counts {
		total += c
	}
	rows := make([]int, 0, total)
	for i, c := range counts {
		for j := 0; j < c; j++ {
			rows = append(rows, i)
		}
	}
	return t.Select(rows)
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := NewTable(t.rows)
	for _, name := range t.names {
		values := make([]any, t.rows)
		copy(values, t.cols[name])
		out.names = append(out.names, name)
		out.cols[name] = values
	}
	return out
}

// SetColumn replaces the named column's values in place.
func (t *Table) SetColumn(name string, values []any) error {
	if _, exists := t.cols[name]; !exists {
		return fmt.Errorf("fabricate: table has no column %q", name)
	}
	if len(values) != t.rows {
		return fmt.Errorf("fabricate: column %q has %d rows, table has %d",
			name, len(values), t.rows)
	}
	t.cols[name] = values
	return nil
}

// Row returns a single row as a name-to-value map.
func (t *Table) Row(i int) map[string]any {
	out := make(map[string]any, len(t.names))
	for _, name := range t.names {
		out[name] = t.cols[name][i]
	}
	return out
}

// Group pairs a group key with the rows carrying that key.
type Group struct {
	Key  any
	Rows []int
}

// GroupBy partitions row indices by the named column's values, ordered by
// first occurrence.
func (t *Table) GroupBy(name string) ([]Group, error) {
	values, ok := t.Column(name)
	if !ok {
		return nil, fmt.Errorf("fabricate: table has no column %q", name)
	}
	index := make(map[any]int)
	var groups []Group
	for i, v := range values {
		gi, seen := index[v]
		if !seen {
			gi = len(groups)
			index[v] = gi
			groups = append(groups, Group{Key: v})
		}
		groups[gi].Rows = append(groups[gi].Rows, i)
	}
	return groups, nil
}

// Concat vertically concatenates tables sharing an identical column layout.
func Concat(tables ...*Table) (*Table, error) {
	var kept []*Table
	for _, t := range tables {
		if t != nil {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return NewTable(0), nil
	}
	first := kept[0]
	total := 0
	for _, t := range kept {
		if strings.Join(t.names, "\x00") != strings.Join(first.names, "\x00") {
			return nil, fmt.Errorf("fabricate: cannot concat tables with different columns")
		}
		total += t.rows
	}
	out := NewTable(total)
	for _, name := range first.names {
		values := make([]any, 0, total)
		for _, t := range kept {
			values = append(values, t.cols[name]...)
		}
		out.names = append(out.names, name)
		out.cols[name] = values
	}
	return out, nil
}
