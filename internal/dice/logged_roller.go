package dice

import (
	"time"

	"go.uber.org/zap"
)

// LoggedRoller wraps an Engine and logs every evaluation at debug level with
// the expression, per-iteration totals and elapsed time. Failures are logged
// with the error.
type LoggedRoller struct {
	engine *Engine
	logger *zap.Logger
}

// NewLoggedRoller creates a LoggedRoller around engine.
//
// Precondition: engine and logger must be non-nil.
func NewLoggedRoller(engine *Engine, logger *zap.Logger) *LoggedRoller {
	return &LoggedRoller{engine: engine, logger: logger}
}

// RollExpr parses and rolls text, logging the result.
func (r *LoggedRoller) RollExpr(text string) (RollSet, error) {
	start := time.Now()
	expr, err := Parse(text)
	if err != nil {
		r.logger.Debug("dice parse failed",
			zap.String("expression", text),
			zap.Error(err),
		)
		return nil, err
	}
	set, err := r.engine.Roll(expr)
	if err != nil {
		r.logger.Debug("dice roll failed",
			zap.String("expression", text),
			zap.Error(err),
		)
		return nil, err
	}
	fields := []zap.Field{
		zap.String("expression", text),
		zap.Int("iterations", len(set)),
		zap.Int64s("totals", set.Totals()),
		zap.Stringer("convention", expr.Convention()),
		zap.Duration("elapsed", time.Since(start)),
	}
	if expr.Versus != nil {
		fields = append(fields, zap.Int64("target", expr.Versus.Target))
	}
	r.logger.Debug("dice roll", fields...)
	return set, nil
}

// Evaluate parses, rolls and formats text, logging the result.
func (r *LoggedRoller) Evaluate(text string) (string, error) {
	set, err := r.RollExpr(text)
	if err != nil {
		return "", err
	}
	return set.String(), nil
}
