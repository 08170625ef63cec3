// Package randfn binds random-variate generating functions into fabrication
// expression environments. Every distribution comes from gonum's distuv; this
// package only adapts argument handling and threads the injected random
// source through, so simulations stay reproducible under a fixed seed.
package randfn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	fabricate "github.com/goliatone/go-fabricate"
)

// New returns the default fabrication registry extended with the distuv
// generators, all drawing from a PCG source seeded with seed.
func New(seed uint64) *fabricate.FunctionRegistry {
	registry := fabricate.DefaultFunctions()
	if err := Register(registry, rand.NewPCG(seed, seed)); err != nil {
		panic(err)
	}
	return registry
}

// Register installs the generating functions into registry, all drawing from
// src. Registered names: normal, uniform, bernoulli, binomial, poisson,
// sample.
func Register(registry *fabricate.FunctionRegistry, src rand.Source) error {
	rng := rand.New(src)
	generators := map[string]fabricate.Function{
		"normal": func(args ...any) (any, error) {
			n, params, err := drawArgs("normal", args, 2)
			if err != nil {
				return nil, err
			}
			dist := distuv.Normal{Mu: params[0], Sigma: params[1], Src: src}
			return draw(n, dist.Rand), nil
		},
		"uniform": func(args ...any) (any, error) {
			n, params, err := drawArgs("uniform", args, 2)
			if err != nil {
				return nil, err
			}
			dist := distuv.Uniform{Min: params[0], Max: params[1], Src: src}
			return draw(n, dist.Rand), nil
		},
		"bernoulli": func(args ...any) (any, error) {
			n, params, err := drawArgs("bernoulli", args, 1)
			if err != nil {
				return nil, err
			}
			dist := distuv.Bernoulli{P: params[0], Src: src}
			return drawInts(n, dist.Rand), nil
		},
		"binomial": func(args ...any) (any, error) {
			n, params, err := drawArgs("binomial", args, 2)
			if err != nil {
				return nil, err
			}
			dist := distuv.Binomial{N: params[0], P: params[1], Src: src}
			return drawInts(n, dist.Rand), nil
		},
		"poisson": func(args ...any) (any, error) {
			n, params, err := drawArgs("poisson", args, 1)
			if err != nil {
				return nil, err
			}
			dist := distuv.Poisson{Lambda: params[0], Src: src}
			return drawInts(n, dist.Rand), nil
		},
		"sample": func(args ...any) (any, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("randfn: sample expects a count and a value list")
			}
			n, ok := argInt(args[0])
			if !ok {
				return nil, fmt.Errorf("randfn: sample count must be a number, got %T", args[0])
			}
			pool, ok := args[1].([]any)
			if !ok || len(pool) == 0 {
				return nil, fmt.Errorf("randfn: sample expects a non-empty value list")
			}
			out := make([]any, n)
			for i := range out {
				out[i] = pool[rng.IntN(len(pool))]
			}
			return out, nil
		},
	}
	for name, fn := range generators {
		if err := registry.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// drawArgs validates a generator call shape: a draw count followed by want
// distribution parameters.
func drawArgs(name string, args []any, want int) (int, []float64, error) {
	if len(args) != want+1 {
		return 0, nil, fmt.Errorf("randfn: %s expects a count and %d parameters, got %d arguments",
			name, want, len(args))
	}
	n, ok := argInt(args[0])
	if !ok {
		return 0, nil, fmt.Errorf("randfn: %s count must be a number, got %T", name, args[0])
	}
	params := make([]float64, want)
	for i := 0; i < want; i++ {
		f, ok := argFloat(args[i+1])
		if !ok {
			return 0, nil, fmt.Errorf("randfn: %s parameter %d must be a number, got %T", name, i+1, args[i+1])
		}
		params[i] = f
	}
	return n, params, nil
}

func draw(n int, sample func() float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = sample()
	}
	return out
}

func drawInts(n int, sample func() float64) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = int(sample())
	}
	return out
}

func argFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func argInt(v any) (int, bool) {
	f, ok := argFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
