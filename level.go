package fabricate

import (
	"fmt"
	"time"
)

// Variable declares one generated column: a name, the generator producing its
// values, and whether short results may be recycled to the level length.
type Variable struct {
	Name    string
	Gen     Generator
	Recycle bool
}

// Var declares a variable backed by gen.
func Var(name string, gen Generator) Variable {
	return Variable{Name: name, Gen: gen}
}

// RecycledVar declares a variable whose result is tiled cyclically whenever
// it comes back shorter than the level size.
func RecycledVar(name string, gen Generator) Variable {
	return Variable{Name: name, Gen: gen, Recycle: true}
}

// Expr declares a variable generated by an expression in the design's
// configured engine.
func Expr(name, src string) Variable {
	return Variable{Name: name, Gen: Expression(src)}
}

// RecycledExpr is Expr with recycling enabled.
func RecycledExpr(name, src string) Variable {
	return Variable{Name: name, Gen: Expression(src), Recycle: true}
}

// LevelSpec describes one layer of the hierarchy: an ordered set of declared
// variables plus how the level sizes itself. For the outermost level N is the
// total row count; for nested levels N is the per-parent child count and
// Counts may give a per-parent vector instead. A spec with Modify set
// re-opens an existing level instead of adding a nesting depth.
type LevelSpec struct {
	Name      string
	N         int
	Counts    []int
	Variables []Variable
	Modify    bool
}

// Level declares a level with an explicit size.
func Level(name string, n int, vars ...Variable) LevelSpec {
	return LevelSpec{Name: name, N: n, Variables: vars}
}

// NestedLevel declares a level sized by a per-parent count vector.
func NestedLevel(name string, counts []int, vars ...Variable) LevelSpec {
	return LevelSpec{Name: name, Counts: counts, Variables: vars}
}

// ModifyLevel re-opens an existing level and evaluates vars at its
// granularity, splicing the results into that level's block.
func ModifyLevel(name string, vars ...Variable) LevelSpec {
	return LevelSpec{Name: name, Variables: vars, Modify: true}
}

// resolveBaseSize resolves the outermost level's row count: explicit N wins,
// otherwise the inherited size (imported data row count).
func (spec LevelSpec) resolveBaseSize(inherited int) (int, error) {
	if spec.N > 0 {
		return spec.N, nil
	}
	if len(spec.Counts) == 1 {
		return spec.Counts[0], nil
	}
	if len(spec.Counts) > 1 {
		return 0, &LengthMismatchError{Level: spec.Name, Variable: "N", Got: len(spec.Counts), Want: 1}
	}
	if inherited > 0 {
		return inherited, nil
	}
	return 0, &MissingSizeError{Level: spec.Name}
}

// resolveCounts resolves a nested level's per-parent child counts. A scalar
// count applies to every parent; a vector must be length one or match the
// parent row count exactly. An evenly dividing vector is still an error, not
// a recycle.
func (spec LevelSpec) resolveCounts(parentRows int) ([]int, error) {
	if len(spec.Counts) > 0 {
		switch len(spec.Counts) {
		case 1:
			return repeatCount(spec.Counts[0], parentRows), nil
		case parentRows:
			out := make([]int, parentRows)
			copy(out, spec.Counts)
			return out, nil
		default:
			return nil, &LengthMismatchError{
				Level:    spec.Name,
				Variable: "N",
				Got:      len(spec.Counts),
				Want:     parentRows,
			}
		}
	}
	if spec.N > 0 {
		return repeatCount(spec.N, parentRows), nil
	}
	// Without an explicit size each parent row gets exactly one child.
	return repeatCount(1, parentRows), nil
}

func repeatCount(n, times int) []int {
	out := make([]int, times)
	for i := range out {
		out[i] = n
	}
	return out
}

// evaluateVariables runs the level's declared generators in order against the
// live scope, so each expression sees every variable declared before it. Each
// result is conformed to the level size and bound before the next runs.
func evaluateVariables(spec LevelSpec, scope *Scope, cfg *designConfig) error {
	for _, v := range spec.Variables {
		ctx := GenContext{
			Level: spec.Name,
			N:     scope.N(),
			Rand:  cfg.resolveRandom(),
			scope: scope,
			cfg:   cfg,
		}
		start := time.Now()
		raw, err := v.Gen.Generate(ctx)
		duration := time.Since(start)
		err = wrapEvaluationError("", "", spec.Name, v.Name, err)
		cfg.evalLogger().LogEvaluation(EvalLogEvent{
			Level:    spec.Name,
			Variable: v.Name,
			N:        scope.N(),
			Duration: duration,
			Err:      err,
		})
		if err != nil {
			return err
		}
		values, err := conformLength(spec.Name, v.Name, asColumn(raw), scope.N(), v.Recycle)
		if err != nil {
			return err
		}
		scope.bind(v.Name, values)
	}
	return nil
}

// conformLength validates a produced column against the level size: exact
// length passes, length one broadcasts, and anything shorter tiles only when
// recycling was requested explicitly. A result longer than the level size is
// always rejected; recycling never discards values.
func conformLength(level, variable string, values []any, n int, recycle bool) ([]any, error) {
	switch {
	case len(values) == n:
		return values, nil
	case len(values) == 1:
		return RecycleTo(values, n)
	case recycle && len(values) == 0:
		return nil, &EmptyInputError{Want: n}
	case recycle && len(values) < n:
		return RecycleTo(values, n)
	default:
		return nil, &LengthMismatchError{Level: level, Variable: variable, Got: len(values), Want: n}
	}
}

// idLabels synthesizes the sequential identifier labels for a level.
func idLabels(level string, n int) []any {
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = fmt.Sprintf("%s_%d", level, i+1)
	}
	return out
}
