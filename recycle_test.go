package fabricate

import (
	"errors"
	"reflect"
	"testing"
)

func TestRecycleToTiles(t *testing.T) {
	out, err := RecycleTo([]any{"a", "b", "c"}, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{"a", "b", "c", "a", "b", "c", "a"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
}

func TestRecycleToIdempotent(t *testing.T) {
	first, err := RecycleTo([]any{1, 2}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := RecycleTo(first, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recycling an already recycled vector changed it: %v vs %v", first, second)
	}
}

func TestRecycleToEmptyInput(t *testing.T) {
	_, err := RecycleTo(nil, 4)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	var emptyErr *EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyInputError, got %T", err)
	}
	if emptyErr.Want != 4 {
		t.Fatalf("expected Want=4, got %d", emptyErr.Want)
	}
}

func TestRecycleToZeroLength(t *testing.T) {
	out, err := RecycleTo([]any{"x"}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty result, got %v", out)
	}
}
