package fabricate

import (
	"reflect"
	"testing"
)

func mustTable(t *testing.T, names []string, cols map[string][]any) *Table {
	t.Helper()
	tbl, err := TableFromColumns(names, cols)
	if err != nil {
		t.Fatalf("building table: %v", err)
	}
	return tbl
}

func TestTableExpandCascades(t *testing.T) {
	tbl := mustTable(t, []string{"region", "gdp"}, map[string][]any{
		"region": {"r1", "r2"},
		"gdp":    {10.0, 20.0},
	})

	out := tbl.Expand([]int{2, 3})
	if out.NumRows() != 5 {
		t.Fatalf("expected 5 rows, got %d", out.NumRows())
	}
	gdp, _ := out.Column("gdp")
	want := []any{10.0, 10.0, 20.0, 20.0, 20.0}
	if !reflect.DeepEqual(gdp, want) {
		t.Fatalf("expected cascaded gdp %v, got %v", want, gdp)
	}
}

func TestTableGroupByFirstOccurrenceOrder(t *testing.T) {
	tbl := mustTable(t, []string{"id"}, map[string][]any{
		"id": {"b", "a", "b", "c", "a"},
	})

	groups, err := tbl.GroupBy("id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Key != "b" || groups[1].Key != "a" || groups[2].Key != "c" {
		t.Fatalf("expected groups ordered by first occurrence, got %v", groups)
	}
	if !reflect.DeepEqual(groups[0].Rows, []int{0, 2}) {
		t.Fatalf("expected rows [0 2] for b, got %v", groups[0].Rows)
	}
}

func TestTableSelectRepeatsRows(t *testing.T) {
	tbl := mustTable(t, []string{"x"}, map[string][]any{
		"x": {1, 2, 3},
	})
	out := tbl.Select([]int{2, 0, 2})
	col, _ := out.Column("x")
	if !reflect.DeepEqual(col, []any{3, 1, 3}) {
		t.Fatalf("expected [3 1 3], got %v", col)
	}
}

func TestTableInsertColumnOrder(t *testing.T) {
	tbl := mustTable(t, []string{"a", "c"}, map[string][]any{
		"a": {1},
		"c": {3},
	})
	if err := tbl.InsertColumn(1, "b", []any{2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tbl.Columns(), []string{"a", "b", "c"}) {
		t.Fatalf("expected [a b c], got %v", tbl.Columns())
	}
	if err := tbl.InsertColumn(0, "a", []any{9}); err == nil {
		t.Fatalf("expected duplicate column error")
	}
	if err := tbl.AppendColumn("d", []any{1, 2}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestConcatChecksLayout(t *testing.T) {
	a := mustTable(t, []string{"x"}, map[string][]any{"x": {1}})
	b := mustTable(t, []string{"x"}, map[string][]any{"x": {2}})
	out, err := Concat(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := out.Column("x")
	if !reflect.DeepEqual(col, []any{1, 2}) {
		t.Fatalf("expected [1 2], got %v", col)
	}

	c := mustTable(t, []string{"y"}, map[string][]any{"y": {3}})
	if _, err := Concat(a, c); err == nil {
		t.Fatalf("expected layout mismatch error")
	}
}

func TestTableCloneIsIndependent(t *testing.T) {
	tbl := mustTable(t, []string{"x"}, map[string][]any{"x": {1, 2}})
	clone := tbl.Clone()
	if err := clone.SetColumn("x", []any{9, 9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := tbl.Column("x")
	if !reflect.DeepEqual(col, []any{1, 2}) {
		t.Fatalf("mutating clone affected original: %v", col)
	}
}
