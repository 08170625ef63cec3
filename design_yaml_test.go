package fabricate

import (
	"errors"
	"reflect"
	"testing"
)

const sampleDesign = `
levels:
  - name: regions
    n: 2
    variables:
      - name: gdp
        expr: "[10.0, 20.0]"
  - name: cities
    n: 3
    variables:
      - name: months
        expr: '["Jan", "Feb", "Mar", "Apr"]'
        recycle: true
`

func TestLoadDesignYAML(t *testing.T) {
	design, err := LoadDesignYAML([]byte(sampleDesign))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(design.Levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(design.Levels))
	}
	if design.Levels[0].Name != "regions" || design.Levels[0].N != 2 {
		t.Fatalf("unexpected first level %+v", design.Levels[0])
	}
	if !design.Levels[1].Variables[0].Recycle {
		t.Fatalf("expected recycle flag to carry through")
	}

	tbl, err := design.Fabricate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.NumRows() != 6 {
		t.Fatalf("expected 6 rows, got %d", tbl.NumRows())
	}
	want := []string{"regions", "gdp", "cities", "months"}
	if !reflect.DeepEqual(tbl.Columns(), want) {
		t.Fatalf("expected columns %v, got %v", want, tbl.Columns())
	}
	months, _ := tbl.Column("months")
	if months[0] != "Jan" || months[4] != "Jan" || months[5] != "Feb" {
		t.Fatalf("expected recycled months, got %v", months)
	}
}

func TestLoadDesignYAMLValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"no levels", `levels: []`},
		{"missing level name", "levels:\n  - n: 3"},
		{"missing variable name", "levels:\n  - name: a\n    n: 1\n    variables:\n      - expr: \"1\""},
		{"missing expression", "levels:\n  - name: a\n    n: 1\n    variables:\n      - name: x"},
		{"not yaml", `{{{`},
	}
	for _, tc := range cases {
		if _, err := LoadDesignYAML([]byte(tc.payload)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadDesignYAMLMissingSize(t *testing.T) {
	design, err := LoadDesignYAML([]byte("levels:\n  - name: units"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := design.Fabricate(); !errors.Is(err, ErrMissingSize) {
		t.Fatalf("expected ErrMissingSize, got %v", err)
	}
}
