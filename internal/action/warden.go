package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Warden executes a middleware pipeline with failure recovery. It maintains
// two ordered sequences over the finalized stages: the pending queue of
// stages not yet dispatched, and the recover stack of stages whose Call has
// been entered, most recent first. At any steady point their union is the
// finalized pipeline.
//
// A Warden runs synchronously on the caller's goroutine and executes its
// pipeline once. Wardens nest: a Warden is itself a Middleware, and a
// nested Warden that fails unwinds its own stages and clears its stack so
// the enclosing Warden does not unwind them again.
type Warden struct {
	logger   *slog.Logger
	triggers Triggers

	pending []Middleware
	stack   []Middleware
}

// NewWarden finalizes the given stage descriptors into a pipeline. Each
// descriptor is either a Middleware value, which is surrounded by a
// before-trigger and an after-trigger stage keyed by its stable name, or a
// plain stage function, which becomes a single synthetic stage. Any other
// descriptor fails with ErrInvalidStage.
func NewWarden(logger *slog.Logger, triggers Triggers, stages []any) (*Warden, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &Warden{
		logger:   logger,
		triggers: triggers,
	}

	for i, raw := range stages {
		switch stage := raw.(type) {
		case Middleware:
			w.pending = append(w.pending,
				&beforeTrigger{warden: w, name: stage.Name()},
				stage,
				&afterTrigger{warden: w, name: stage.Name()},
			)
		case Func:
			w.pending = append(w.pending, &funcStage{fn: stage})
		case func(ctx context.Context, env Env) error:
			w.pending = append(w.pending, &funcStage{fn: stage})
		default:
			return nil, fmt.Errorf("%w: stage %d is %T", ErrInvalidStage, i, raw)
		}
	}

	return w, nil
}

// Name returns the stable name of the pipeline for trigger keying when a
// Warden is nested as a stage.
func (w *Warden) Name() string { return "pipeline" }

// Call dispatches the pending stages in order. Each dispatch is preceded
// and followed by an interrupt checkpoint; no polling happens inside a
// stage. A stage is pushed onto the recover stack before its Call is
// entered so a stage that fails mid-execution is itself unwound.
func (w *Warden) Call(ctx context.Context, env Env) error {
	for len(w.pending) > 0 {
		if err := w.checkpoint(ctx, env); err != nil {
			return w.fail(ctx, env, err)
		}

		stage := w.pending[0]
		w.pending = w.pending[1:]
		w.stack = append([]Middleware{stage}, w.stack...)

		w.logger.DebugContext(ctx, "executing stage", slog.String("stage", stage.Name()))

		if err := stage.Call(ctx, env); err != nil {
			var exit *ExitError
			if errors.As(err, &exit) {
				// Process-exit requests propagate without recovery.
				return err
			}
			return w.fail(ctx, env, err)
		}

		if err := w.checkpoint(ctx, env); err != nil {
			return w.fail(ctx, env, err)
		}

		w.logger.DebugContext(ctx, "stage completed", slog.String("stage", stage.Name()))
	}

	return nil
}

// checkpoint raises ErrInterrupt when the environment's interrupt flag is
// set or the context has been canceled.
func (w *Warden) checkpoint(ctx context.Context, env Env) error {
	if env.Interrupted() || ctx.Err() != nil {
		return ErrInterrupt
	}
	return nil
}

// fail records the error on the environment, runs the recovery pass, and
// returns the error. The error is logged and recorded only if it is not the
// error already recorded, so a failure rethrown through nested pipelines is
// reported once.
func (w *Warden) fail(ctx context.Context, env Env, err error) error {
	if recorded := env.Error(); recorded != err {
		w.logger.ErrorContext(ctx, "pipeline failure",
			slog.String("error", err.Error()),
		)
		env[EnvError] = err
	}

	w.unwind(ctx, env)
	return err
}

// unwind runs Recover on every entered stage that supports it, most recent
// entry first, then clears the recover stack so an enclosing pipeline does
// not unwind the same stages again. Recovery failures are logged, never
// raised.
func (w *Warden) unwind(ctx context.Context, env Env) {
	for _, stage := range w.stack {
		r, ok := stage.(Recoverable)
		if !ok {
			continue
		}

		w.logger.DebugContext(ctx, "recovering stage", slog.String("stage", stage.Name()))
		if err := r.Recover(ctx, env); err != nil {
			w.logger.ErrorContext(ctx, "stage recovery failed",
				slog.String("stage", stage.Name()),
				slog.String("error", err.Error()),
			)
		}
	}

	w.stack = nil
}

// Remaining returns the number of stages not yet dispatched.
func (w *Warden) Remaining() int {
	return len(w.pending)
}

// Entered returns the number of stages on the recover stack.
func (w *Warden) Entered() int {
	return len(w.stack)
}
