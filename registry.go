package fabricate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/montanaflynn/stats"
)

// Function represents a callable registered against expression engines.
type Function func(args ...any) (any, error)

// FunctionRegistry stores custom functions keyed by name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("fabricate: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("fabricate: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("fabricate: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("fabricate: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("fabricate: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry configures a design to expose registry inside
// expression environments.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *designConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the design.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *designConfig) {
		if cfg.functions == nil {
			cfg.functions = DefaultFunctions()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// DefaultFunctions returns the registry expression generators see out of the
// box: summary statistics over columns plus small sequence helpers. The
// statistics are bound from montanaflynn/stats; nothing here implements one.
func DefaultFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	summary := map[string]func(stats.Float64Data) (float64, error){
		"mean":   stats.Mean,
		"median": stats.Median,
		"sd":     stats.StandardDeviation,
		"min":    stats.Min,
		"max":    stats.Max,
		"sum":    stats.Sum,
	}
	for name, fn := range summary {
		fn := fn
		name := name
		_ = registry.Register(name, func(args ...any) (any, error) {
			data, err := numericArg(name, args)
			if err != nil {
				return nil, err
			}
			return fn(data)
		})
	}
	_ = registry.Register("seq", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("fabricate: seq expects one argument")
		}
		n, ok := toInt(args[0])
		if !ok {
			return nil, fmt.Errorf("fabricate: seq expects a number, got %T", args[0])
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			out[i] = i + 1
		}
		return out, nil
	})
	_ = registry.Register("rep", func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("fabricate: rep expects a value and a count")
		}
		n, ok := toInt(args[1])
		if !ok {
			return nil, fmt.Errorf("fabricate: rep count must be a number, got %T", args[1])
		}
		return RecycleTo(asColumn(args[0]), n)
	})
	return registry
}

func numericArg(name string, args []any) (stats.Float64Data, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("fabricate: %s expects one column argument", name)
	}
	data, ok := toFloats(asColumn(args[0]))
	if !ok {
		return nil, fmt.Errorf("fabricate: %s expects numeric values", name)
	}
	return data, nil
}
