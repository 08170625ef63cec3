package randfn_test

import (
	"math/rand/v2"
	"reflect"
	"testing"

	fabricate "github.com/goliatone/go-fabricate"
	"github.com/goliatone/go-fabricate/pkg/randfn"
)

func TestRegisterDrawLengths(t *testing.T) {
	registry := fabricate.NewFunctionRegistry()
	if err := randfn.Register(registry, rand.NewPCG(1, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		name string
		args []any
	}{
		{"normal", []any{5, 0.0, 1.0}},
		{"uniform", []any{5, 0.0, 10.0}},
		{"bernoulli", []any{5, 0.5}},
		{"binomial", []any{5, 10.0, 0.5}},
		{"poisson", []any{5, 3.0}},
	}
	for _, tc := range cases {
		result, err := registry.Call(tc.name, tc.args...)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice || rv.Len() != 5 {
			t.Fatalf("%s: expected 5 draws, got %v", tc.name, result)
		}
	}
}

func TestRegisterArgumentValidation(t *testing.T) {
	registry := fabricate.NewFunctionRegistry()
	if err := randfn.Register(registry, rand.NewPCG(1, 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := registry.Call("normal", 5, 0.0); err == nil {
		t.Fatalf("expected arity error")
	}
	if _, err := registry.Call("normal", "five", 0.0, 1.0); err == nil {
		t.Fatalf("expected count type error")
	}
	if _, err := registry.Call("sample", 3, []any{}); err == nil {
		t.Fatalf("expected empty pool error")
	}
}

func TestSampleDrawsFromPool(t *testing.T) {
	registry := randfn.New(7)
	result, err := registry.Call("sample", 10, []any{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, ok := result.([]any)
	if !ok || len(values) != 10 {
		t.Fatalf("expected 10 sampled values, got %v", result)
	}
	for _, v := range values {
		if v != "a" && v != "b" {
			t.Fatalf("sampled value %v not in pool", v)
		}
	}
}

func TestFabricationDeterministicUnderSeed(t *testing.T) {
	run := func() []any {
		tbl, err := fabricate.Fabricate([]fabricate.LevelSpec{
			fabricate.Level("units", 8, fabricate.Expr("y", "normal(N, 0.0, 1.0)")),
		}, fabricate.WithFunctionRegistry(randfn.New(42)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		col, _ := tbl.Column("y")
		return col
	}
	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical draws under identical seeds:\n%v\n%v", a, b)
	}
	if len(a) != 8 {
		t.Fatalf("expected 8 draws, got %d", len(a))
	}
}
