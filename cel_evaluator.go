package fabricate

import (
	"fmt"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// call takes a function name plus up to celCallMaxArgs trailing arguments;
// CEL overloads are fixed arity, so one overload is declared per arity.
const celCallMaxArgs = 8

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEngineError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	program, err := e.loadOrCompile(expression, ctx)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, e.mapError(ctx, expression, err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) Compile(expression string, _ ...CompileOption) (CompiledExpr, error) {
	if expression == "" {
		return nil, wrapEngineError("cel", fmt.Errorf("expression must not be empty"))
	}
	return &celCompiledExpr{
		evaluator:  e,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string, ctx EvalContext) (*celProgram, error) {
	key := cacheKey("cel", expression, ctx.Bindings)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv(ctx.Bindings)
	if err != nil {
		return nil, wrapEngineError("cel", err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, e.mapError(ctx, expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, e.mapError(ctx, expression, issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapEngineError("cel", err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(key, bundle)
	}
	return bundle, nil
}

func (e *celEvaluator) buildEnv(bindings map[string]any) (*celgo.Env, error) {
	opts := make([]celgo.EnvOption, 0, len(bindings)+1)
	for key := range bindings {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	if e.registry != nil {
		overloads := make([]celgo.FunctionOpt, 0, celCallMaxArgs+1)
		argTypes := []*celgo.Type{celgo.StringType}
		for i := 0; i <= celCallMaxArgs; i++ {
			declared := make([]*celgo.Type, len(argTypes))
			copy(declared, argTypes)
			overloads = append(overloads, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", i),
				declared,
				celgo.DynType,
				celgo.FunctionBinding(e.callBinding()),
			))
			argTypes = append(argTypes, celgo.DynType)
		}
		opts = append(opts, celgo.Function("call", overloads...))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) activation(ctx EvalContext) map[string]any {
	activation := make(map[string]any, len(ctx.Bindings)+1)
	for key, value := range ctx.Bindings {
		activation[key] = value
	}
	if e.registry != nil {
		activation["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return activation
}

// mapError translates CEL's undeclared-reference failures into the fabricate
// taxonomy and wraps everything else with engine metadata.
func (e *celEvaluator) mapError(ctx EvalContext, expression string, err error) error {
	if err == nil {
		return nil
	}
	if name, ok := undeclaredReference(err.Error()); ok {
		return &UndefinedVariableError{Level: ctx.Level, Name: name}
	}
	return wrapEvaluationError("cel", expression, ctx.Level, "", err)
}

// undeclaredReference extracts the identifier from CEL's
// "undeclared reference to 'X'" message.
func undeclaredReference(msg string) (string, bool) {
	const marker = "undeclared reference to '"
	idx := strings.Index(msg, marker)
	if idx == -1 {
		return "", false
	}
	rest := msg[idx+len(marker):]
	end := strings.IndexByte(rest, '\'')
	if end <= 0 {
		return "", false
	}
	return rest[:end], true
}

type celCompiledExpr struct {
	evaluator  *celEvaluator
	expression string
}

func (r *celCompiledExpr) Evaluate(ctx EvalContext) (any, error) {
	if r.evaluator == nil {
		return nil, wrapEngineError("cel", fmt.Errorf("compiled expression missing evaluator"))
	}
	return r.evaluator.Evaluate(ctx, r.expression)
}

func (e *celEvaluator) callBinding() func(...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("fabricate: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("fabricate: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("fabricate: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
