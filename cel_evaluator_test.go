package fabricate

import (
	"errors"
	"testing"
)

func TestCELEvaluatorSeesBindings(t *testing.T) {
	evaluator := NewCELEvaluator()
	result, err := evaluator.Evaluate(EvalContext{
		Level:    "units",
		N:        4,
		Bindings: map[string]any{"N": 4},
	}, "N * 2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := toInt(result); !ok || n != 8 {
		t.Fatalf("expected 8, got %v", result)
	}
}

func TestCELEvaluatorUndefinedName(t *testing.T) {
	evaluator := NewCELEvaluator()
	_, err := evaluator.Evaluate(EvalContext{
		Level:    "units",
		N:        2,
		Bindings: map[string]any{"N": 2},
	}, "ghost * 2")
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected ErrUndefinedVariable, got %v", err)
	}
	var undefErr *UndefinedVariableError
	if !errors.As(err, &undefErr) {
		t.Fatalf("expected UndefinedVariableError, got %T", err)
	}
	if undefErr.Name != "ghost" {
		t.Fatalf("expected ghost, got %q", undefErr.Name)
	}
}

func TestCELEvaluatorCallFunction(t *testing.T) {
	registry := NewFunctionRegistry()
	if err := registry.Register("twice", func(args ...any) (any, error) {
		n, _ := toFloat(args[0])
		return n * 2, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	evaluator := NewCELEvaluator(CELWithFunctionRegistry(registry))
	result, err := evaluator.Evaluate(EvalContext{
		N:        1,
		Bindings: map[string]any{"N": 1},
	}, `call("twice", 21.0)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, ok := toFloat(result); !ok || n != 42.0 {
		t.Fatalf("expected 42, got %v", result)
	}
}

func TestCELEvaluatorAsDesignEngine(t *testing.T) {
	tbl, err := Fabricate([]LevelSpec{
		Level("units", 3, Expr("doubled", "[2, 4, 6]")),
	}, WithEvaluator(NewCELEvaluator()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := tbl.Column("doubled")
	if len(col) != 3 {
		t.Fatalf("expected 3 values, got %v", col)
	}
}
