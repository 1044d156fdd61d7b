// Package action provides the middleware pipeline executor used to run
// composed operations against a basis or project. A pipeline is an ordered
// list of stages dispatched by a Warden; on failure the stages already
// entered are unwound in reverse order.
package action

import (
	"context"
	"errors"
	"fmt"
)

// Recognized environment keys.
const (
	// EnvInterrupted is polled between stages; setting it true raises
	// ErrInterrupt at the next checkpoint.
	EnvInterrupted = "interrupted"

	// EnvError records the error that failed the pipeline. Nested pipelines
	// use it to avoid logging the same failure twice.
	EnvError = "vagrant.error"

	// EnvTriggerHost optionally selects an alternate environment handed to
	// trigger hooks.
	EnvTriggerHost = "trigger_env"
)

// Env carries per-invocation state through a pipeline. Stages share opaque
// payload keys; the recognized keys above have fixed meaning.
type Env map[string]any

// NewEnv creates an empty environment.
func NewEnv() Env {
	return make(Env)
}

// Interrupted reports whether the interrupt flag is set.
func (e Env) Interrupted() bool {
	v, _ := e[EnvInterrupted].(bool)
	return v
}

// SetInterrupted sets the interrupt flag. The pipeline raises ErrInterrupt
// at its next checkpoint.
func (e Env) SetInterrupted(v bool) {
	e[EnvInterrupted] = v
}

// Error returns the recorded pipeline error, if any.
func (e Env) Error() error {
	err, _ := e[EnvError].(error)
	return err
}

// ErrInterrupt is raised at a checkpoint when the environment's interrupt
// flag is set or the context is done. It unwinds the pipeline like any
// other failure but is not itself recoverable.
var ErrInterrupt = errors.New("pipeline interrupted")

// ErrInvalidStage indicates a pipeline descriptor that is neither a
// Middleware nor a plain stage function.
var ErrInvalidStage = errors.New("invalid pipeline stage")

// ExitError carries a process-exit request through the pipeline. It
// propagates immediately without running the recovery pass.
type ExitError struct {
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("exit requested with code %d", e.Code)
}

// Middleware is a unit in a pipeline. Call performs the stage's work;
// stages that also implement Recoverable are unwound on failure.
type Middleware interface {
	// Name returns the stage's stable name, used to key trigger hooks.
	Name() string

	// Call performs the stage's work.
	Call(ctx context.Context, env Env) error
}

// Recoverable is implemented by middleware that must release resources when
// a later stage fails. Recover runs during the unwind pass in reverse entry
// order.
type Recoverable interface {
	Recover(ctx context.Context, env Env) error
}

// Func adapts a plain function into a pipeline stage. Func stages have no
// trigger wrapping and no recovery.
type Func func(ctx context.Context, env Env) error

// funcStage is the synthetic stage wrapping a Func descriptor.
type funcStage struct {
	fn Func
}

func (s *funcStage) Name() string { return "func" }

func (s *funcStage) Call(ctx context.Context, env Env) error {
	return s.fn(ctx, env)
}
