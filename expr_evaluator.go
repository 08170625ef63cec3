package fabricate

import (
	"fmt"
	"sort"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures an expr evaluator instance.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache wires a ProgramCache into the expr evaluator.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr evaluator.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// exprEvaluator executes generating expressions using
// github.com/expr-lang/expr. Environments are strict: a name bound neither in
// the fabrication scope nor in the function registry fails compilation and
// surfaces as an UndefinedVariableError.
type exprEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Evaluate compiles and runs expression against ctx.Bindings.
func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEngineError("expr", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx)
	if err != nil {
		return nil, err
	}
	result, err := exprlang.Run(program, ctx.Bindings)
	if err != nil {
		return nil, e.mapError(ctx, expression, err)
	}
	return result, nil
}

// Compile returns a compiled rule; programs are specialised per binding set,
// so actual compilation happens lazily against each context and goes through
// the cache.
func (e *exprEvaluator) Compile(expression string, _ ...CompileOption) (CompiledExpr, error) {
	if expression == "" {
		return nil, wrapEngineError("expr", fmt.Errorf("expression must not be empty"))
	}
	return &exprCompiledExpr{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *exprEvaluator) loadOrCompile(expression string, ctx EvalContext) (*exprvm.Program, error) {
	key := cacheKey("expr", expression, ctx.Bindings)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(ctx.Bindings),
	}
	for _, name := range e.registryNames() {
		fn := e.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	if e.registry != nil {
		options = append(options, exprlang.Function("call", func(arguments ...any) (any, error) {
			if len(arguments) == 0 {
				return nil, fmt.Errorf("fabricate: call requires a function name")
			}
			name, ok := arguments[0].(string)
			if !ok {
				return nil, fmt.Errorf("fabricate: call name must be a string")
			}
			return e.registry.Call(name, arguments[1:]...)
		}))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, e.mapError(ctx, expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// mapError translates expr's unknown-name failures into the fabricate
// taxonomy and wraps everything else with engine metadata.
func (e *exprEvaluator) mapError(ctx EvalContext, expression string, err error) error {
	if err == nil {
		return nil
	}
	if name, ok := unknownName(err.Error()); ok {
		return &UndefinedVariableError{Level: ctx.Level, Name: name}
	}
	return wrapEvaluationError("expr", expression, ctx.Level, "", err)
}

// unknownName extracts the identifier from expr's "unknown name X" message.
func unknownName(msg string) (string, bool) {
	const marker = "unknown name "
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return "", false
	}
	rest := msg[idx+len(marker):]
	end := 0
	for end < len(rest) {
		r := rest[end]
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return "", false
	}
	return rest[:end], true
}

type exprCompiledExpr struct {
	evaluator  *exprEvaluator
	expression string
}

func (r *exprCompiledExpr) Evaluate(ctx EvalContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEngineError("expr", fmt.Errorf("compiled expression missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

func (e *exprEvaluator) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprEvaluator) registryFunction(name string) func(...any) (any, error) {
	if e == nil || e.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}

// cacheKey namespaces compiled programs by engine, expression, and the set of
// bound names, since strict environments specialise programs per name set.
func cacheKey(engine, expression string, bindings map[string]any) string {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return engine + "\x00" + expression + "\x00" + strings.Join(names, ",")
}
