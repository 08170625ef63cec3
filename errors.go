package fabricate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSize indicates no row count could be resolved for a level.
	ErrMissingSize = errors.New("fabricate: level size not resolvable")
	// ErrLengthMismatch indicates a produced variable is incompatible with
	// the level's resolved row count.
	ErrLengthMismatch = errors.New("fabricate: variable length incompatible with level size")
	// ErrUndefinedVariable indicates an expression referenced an unbound name.
	ErrUndefinedVariable = errors.New("fabricate: reference to undefined variable")
	// ErrEmptyInput indicates recycling was attempted from a zero-length source.
	ErrEmptyInput = errors.New("fabricate: cannot recycle empty input")
	// ErrUnknownLevel indicates a resample request named a level the table
	// does not carry.
	ErrUnknownLevel = errors.New("fabricate: level not present in table")
)

// MissingSizeError reports the level whose size could not be resolved.
type MissingSizeError struct {
	Level string
}

func (e *MissingSizeError) Error() string {
	return fmt.Sprintf("fabricate: level %q: no explicit N and no inherited size", e.Level)
}

func (e *MissingSizeError) Unwrap() error { return ErrMissingSize }

// LengthMismatchError reports a variable whose length is neither the level
// size, one, nor an explicitly recycled divisor of the level size.
type LengthMismatchError struct {
	Level    string
	Variable string
	Got      int
	Want     int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("fabricate: level %q variable %q: length %d incompatible with N=%d",
		e.Level, e.Variable, e.Got, e.Want)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// UndefinedVariableError reports a reference to a name that is bound neither
// at the current level nor at any ancestor level.
type UndefinedVariableError struct {
	Level    string
	Variable string
	Name     string
}

func (e *UndefinedVariableError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("fabricate: level %q: undefined variable %q", e.Level, e.Name)
	}
	return fmt.Sprintf("fabricate: level %q variable %q: undefined variable %q",
		e.Level, e.Variable, e.Name)
}

func (e *UndefinedVariableError) Unwrap() error { return ErrUndefinedVariable }

// EmptyInputError reports a recycle request with nothing to repeat.
type EmptyInputError struct {
	Want int
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("fabricate: cannot recycle empty input to length %d", e.Want)
}

func (e *EmptyInputError) Unwrap() error { return ErrEmptyInput }

// UnknownLevelError reports a resample target absent from the table's
// identifier columns.
type UnknownLevelError struct {
	Level string
	Known []string
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("fabricate: unknown level %q (identifier columns: %s)",
		e.Level, strings.Join(e.Known, ", "))
}

func (e *UnknownLevelError) Unwrap() error { return ErrUnknownLevel }

// EvaluationError captures engine metadata alongside the originating error.
type EvaluationError struct {
	Engine   string
	Expr     string
	Level    string
	Variable string
	Err      error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("fabricate: %s engine %s level=%s variable=%s: %v",
		e.Engine, describeExpression(e.Expr), e.Level, e.Variable, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEngineError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "fabricate:") {
		return err
	}
	return fmt.Errorf("fabricate: %s engine: %w", engine, err)
}

func wrapEvaluationError(engine, expr, level, variable string, err error) error {
	if err == nil {
		return nil
	}

	// Scope errors keep their own identity so callers can match on the
	// fabricate sentinels directly.
	var undefErr *UndefinedVariableError
	if errors.As(err, &undefErr) {
		if undefErr.Level == "" {
			undefErr.Level = level
		}
		if undefErr.Variable == "" {
			undefErr.Variable = variable
		}
		return undefErr
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Level == "" {
			evalErr.Level = level
		}
		if evalErr.Variable == "" {
			evalErr.Variable = variable
		}
		return evalErr
	}

	return &EvaluationError{
		Engine:   engine,
		Expr:     expr,
		Level:    level,
		Variable: variable,
		Err:      err,
	}
}
