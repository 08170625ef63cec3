package fabricate

import (
	"encoding/json"
	"testing"
)

func TestDescribeTable(t *testing.T) {
	tbl, err := Fabricate([]LevelSpec{
		Level("regions", 2, Var("gdp", Const([]float64{10, 20}))),
		Level("cities", 2, Var("coastal", Const([]bool{true, false, true, false}))),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	book := DescribeTable(tbl)
	if book.NumRows != 4 {
		t.Fatalf("expected 4 rows, got %d", book.NumRows)
	}
	kinds := make(map[string]ColumnSchema)
	for _, col := range book.Columns {
		kinds[col.Name] = col
	}
	if !kinds["regions"].Identifier || !kinds["cities"].Identifier {
		t.Fatalf("expected identifier columns flagged, got %+v", book.Columns)
	}
	if kinds["gdp"].Kind != "number" || kinds["gdp"].Identifier {
		t.Fatalf("expected gdp to be a plain number column, got %+v", kinds["gdp"])
	}
	if kinds["coastal"].Kind != "bool" {
		t.Fatalf("expected coastal kind bool, got %q", kinds["coastal"].Kind)
	}

	payload, err := book.ToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("codebook JSON does not round-trip: %v", err)
	}
}

func TestInferKindMixed(t *testing.T) {
	if kind := inferKind([]any{1.0, "x"}); kind != "mixed" {
		t.Fatalf("expected mixed, got %q", kind)
	}
	if kind := inferKind([]any{nil, nil}); kind != "empty" {
		t.Fatalf("expected empty, got %q", kind)
	}
	if kind := inferKind([]any{nil, "a"}); kind != "string" {
		t.Fatalf("expected string, got %q", kind)
	}
}
