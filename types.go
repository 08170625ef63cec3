package fabricate

import (
	"math/rand/v2"
)

// Generator is the capability a declared variable carries: a unit of
// computation that, given the level's evaluation context, returns a value or
// sequence of values. The core is polymorphic over this interface and never
// depends on which concrete generator produced a column.
type Generator interface {
	Generate(ctx GenContext) (any, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx GenContext) (any, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx GenContext) (any, error) {
	return f(ctx)
}

// GenContext carries everything a generator may need: the level name, the
// resolved row count, the injected random source, and lookup access to every
// variable visible at the point of evaluation.
type GenContext struct {
	Level string
	N     int
	Rand  *rand.Rand

	scope *Scope
	cfg   *designConfig
}

// Lookup resolves a visible variable to its column. Unknown names return an
// UndefinedVariableError.
func (c GenContext) Lookup(name string) ([]any, error) {
	if c.scope == nil {
		return nil, &UndefinedVariableError{Level: c.Level, Name: name}
	}
	return c.scope.Lookup(name)
}

// Bindings flattens the visible scope, including N, into a map suitable for
// expression engine environments.
func (c GenContext) Bindings() map[string]any {
	if c.scope == nil {
		return map[string]any{"N": c.N}
	}
	return c.scope.Bindings()
}

// Const returns a generator that yields the same value every time. Slices
// become columns; scalars broadcast to the level size.
func Const(value any) Generator {
	return GeneratorFunc(func(GenContext) (any, error) {
		return value, nil
	})
}

// Expression returns a generator that defers to the design's configured
// expression engine (expr-lang by default).
func Expression(src string) Generator {
	return exprGen{src: src}
}

type exprGen struct {
	src string
}

func (g exprGen) Generate(ctx GenContext) (any, error) {
	cfg := ctx.cfg
	if cfg == nil {
		cfg = &designConfig{}
	}
	evaluator := cfg.resolveEvaluator()
	return evaluator.Evaluate(EvalContext{
		Level:    ctx.Level,
		N:        ctx.N,
		Bindings: ctx.Bindings(),
	}, g.src)
}

// EvalContext carries the inputs an expression engine needs for one
// evaluation: the level under fabrication, its resolved size, and the
// flattened variable bindings (N included, inner shadowing outer).
type EvalContext struct {
	Level    string
	N        int
	Bindings map[string]any
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Bindings == nil {
		ctx.Bindings = map[string]any{"N": ctx.N}
	}
	return ctx
}

// Evaluator executes expression source against an evaluation context. The
// fabrication core calls it once per declared expression variable and
// otherwise treats it as opaque.
type Evaluator interface {
	Evaluate(ctx EvalContext, expression string) (any, error)
	Compile(expression string, opts ...CompileOption) (CompiledExpr, error)
}

// CompiledExpr represents a reusable expression program.
type CompiledExpr interface {
	Evaluate(ctx EvalContext) (any, error)
}

// CompileOption configures engine compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// Option configures a Design.
type Option func(*designConfig)

type designConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvalLogger
	random       *rand.Rand
	trace        *Trace
	data         *Table
}

func applyOptions(opts []Option) designConfig {
	cfg := designConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEvaluator configures the expression engine used by Expression
// generators.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *designConfig) {
		cfg.evaluator = e
	}
}

// WithRandom injects the random source used for resampling draws and exposed
// to generators. Equal sources fed equal seeds reproduce identical output.
func WithRandom(r *rand.Rand) Option {
	return func(cfg *designConfig) {
		cfg.random = r
	}
}

// WithData seeds fabrication with imported data: the first level inherits its
// row count and its columns become visible to expressions.
func WithData(t *Table) Option {
	return func(cfg *designConfig) {
		cfg.data = t
	}
}

// WithTrace collects per-level provenance into trace during fabrication.
func WithTrace(trace *Trace) Option {
	return func(cfg *designConfig) {
		cfg.trace = trace
	}
}

func (cfg *designConfig) resolveEvaluator() Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	var exprOpts []ExprEvaluatorOption
	if cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cfg.programCache))
	}
	exprOpts = append(exprOpts, ExprWithFunctionRegistry(cfg.resolveFunctions()))
	cfg.evaluator = NewExprEvaluator(exprOpts...)
	return cfg.evaluator
}

func (cfg *designConfig) resolveFunctions() *FunctionRegistry {
	if cfg.functions == nil {
		cfg.functions = DefaultFunctions()
	}
	return cfg.functions
}

func (cfg *designConfig) resolveRandom() *rand.Rand {
	if cfg.random == nil {
		cfg.random = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return cfg.random
}

func (cfg *designConfig) evalLogger() EvalLogger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopEvalLogger{}
}
