//go:build js_eval

package fabricate

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEngineError("js", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	if e.cache == nil {
		return e.run(ctx, expression, nil)
	}
	program, err := e.loadOrCompile(ctx, expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledExpr, error) {
	if expression == "" {
		return nil, wrapEngineError("js", fmt.Errorf("expression must not be empty"))
	}
	return &jsCompiledExpr{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(ctx EvalContext, expression string) (*goja.Program, error) {
	key := cacheKey("js", expression, nil)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", e.wrapExpression(expression), false)
	if err != nil {
		return nil, e.mapError(ctx, expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx EvalContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	e.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, e.mapError(ctx, expression, err)
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(e.wrapExpression(expression))
	if err != nil {
		return nil, e.mapError(ctx, expression, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) injectContext(vm *goja.Runtime, ctx EvalContext) {
	for key, value := range ctx.Bindings {
		vm.Set(key, value)
	}
	if e.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		})
		for _, name := range e.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			})
		}
	}
}

func (e *jsEvaluator) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

// mapError translates goja's reference failures into the fabricate taxonomy.
func (e *jsEvaluator) mapError(ctx EvalContext, expression string, err error) error {
	if err == nil {
		return nil
	}
	if name, ok := jsNotDefined(err.Error()); ok {
		return &UndefinedVariableError{Level: ctx.Level, Name: name}
	}
	return wrapEvaluationError("js", expression, ctx.Level, "", err)
}

// jsNotDefined extracts the identifier from "ReferenceError: X is not defined".
func jsNotDefined(msg string) (string, bool) {
	const marker = " is not defined"
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return "", false
	}
	head := msg[:idx]
	cut := strings.LastIndexAny(head, ": ")
	name := head
	if cut != -1 {
		name = head[cut+1:]
	}
	if name == "" {
		return "", false
	}
	return name, true
}

type jsCompiledExpr struct {
	evaluator  *jsEvaluator
	expression string
}

func (r *jsCompiledExpr) Evaluate(ctx EvalContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEngineError("js", fmt.Errorf("compiled expression missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

func jsEvaluatorAvailable() bool {
	return true
}
