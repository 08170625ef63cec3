package fabricate

import "time"

// EvalLogEvent describes one variable evaluation for logging.
type EvalLogEvent struct {
	Level    string
	Variable string
	N        int
	Duration time.Duration
	Err      error
}

// EvalLogger records variable evaluation events.
type EvalLogger interface {
	LogEvaluation(EvalLogEvent)
}

// EvalLoggerFunc adapts a function to EvalLogger.
type EvalLoggerFunc func(EvalLogEvent)

// LogEvaluation implements EvalLogger.
func (f EvalLoggerFunc) LogEvaluation(event EvalLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopEvalLogger struct{}

func (noopEvalLogger) LogEvaluation(EvalLogEvent) {}

// WithEvalLogger attaches an evaluation logger to the design.
func WithEvalLogger(logger EvalLogger) Option {
	return func(cfg *designConfig) {
		if logger == nil {
			cfg.logger = noopEvalLogger{}
			return
		}
		cfg.logger = logger
	}
}
