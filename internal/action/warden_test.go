package action

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects enter/exit/recover events across test stages.
type recorder struct {
	events []string
}

func (r *recorder) add(event string) {
	r.events = append(r.events, event)
}

// testStage is a recording middleware with optional failure and recovery.
type testStage struct {
	name     string
	rec      *recorder
	failWith error
	// onCall runs after the enter event, before any failure.
	onCall func(env Env)
}

func (s *testStage) Name() string { return s.name }

func (s *testStage) Call(ctx context.Context, env Env) error {
	s.rec.add("in " + s.name)
	if s.onCall != nil {
		s.onCall(env)
	}
	if s.failWith != nil {
		return s.failWith
	}
	s.rec.add("out " + s.name)
	return nil
}

func (s *testStage) Recover(ctx context.Context, env Env) error {
	s.rec.add("recover " + s.name)
	return nil
}

func newTestWarden(t *testing.T, stages []any) *Warden {
	t.Helper()
	w, err := NewWarden(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), nil, stages)
	require.NoError(t, err)
	return w
}

func TestWarden_LinearSuccess(t *testing.T) {
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec}
	b := &testStage{name: "b", rec: rec}
	c := &testStage{name: "c", rec: rec}

	w := newTestWarden(t, []any{a, b, c})
	env := NewEnv()

	require.NoError(t, w.Call(context.Background(), env))

	assert.Equal(t, []string{"in a", "out a", "in b", "out b", "in c", "out c"}, rec.events)
	assert.Nil(t, env.Error())

	// On normal termination every finalized stage sits on the recover stack
	// and nothing remains pending. Each middleware finalizes to three stages
	// (trigger wrappers included).
	assert.Equal(t, 0, w.Remaining())
	assert.Equal(t, 9, w.Entered())
}

func TestWarden_MidPipelineFailure(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec}
	b := &testStage{name: "b", rec: rec, failWith: boom}
	c := &testStage{name: "c", rec: rec}

	w := newTestWarden(t, []any{a, b, c})
	env := NewEnv()

	err := w.Call(context.Background(), env)
	require.Error(t, err)
	assert.Same(t, boom, err)

	// The failing stage itself is recovered, then earlier stages in LIFO
	// order; the stage after the failure never runs.
	assert.Equal(t, []string{"in a", "out a", "in b", "recover b", "recover a"}, rec.events)
	assert.Same(t, boom, env.Error())

	// The recover stack is drained so an enclosing pipeline cannot unwind
	// these stages again.
	assert.Equal(t, 0, w.Entered())
}

func TestWarden_NestedPipeline(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec}
	x := &testStage{name: "x", rec: rec}
	y := &testStage{name: "y", rec: rec, failWith: boom}
	c := &testStage{name: "c", rec: rec}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	inner, err := NewWarden(logger, nil, []any{x, y})
	require.NoError(t, err)
	outer, err := NewWarden(logger, nil, []any{a, inner, c})
	require.NoError(t, err)

	env := NewEnv()
	err = outer.Call(context.Background(), env)
	require.Error(t, err)
	assert.Same(t, boom, err)

	// The inner pipeline unwinds its own stages and clears its stack; the
	// outer pipeline then unwinds only its own entered stages.
	assert.Equal(t, []string{
		"in a", "out a",
		"in x", "out x",
		"in y",
		"recover y", "recover x",
		"recover a",
	}, rec.events)
	assert.Equal(t, 0, inner.Entered())
	assert.Equal(t, 0, outer.Entered())
	assert.Same(t, boom, env.Error())

	// The failure is logged exactly once even though it unwound two
	// pipelines.
	assert.Equal(t, 1, strings.Count(logBuf.String(), "pipeline failure"))
}

func TestWarden_InterruptBetweenStages(t *testing.T) {
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec, onCall: func(env Env) {
		env.SetInterrupted(true)
	}}
	b := &testStage{name: "b", rec: rec}

	w := newTestWarden(t, []any{a, b})
	env := NewEnv()

	err := w.Call(context.Background(), env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupt))

	// The checkpoint fires after the running stage returns; the next stage
	// is never dispatched and only entered stages are recovered.
	assert.Equal(t, []string{"in a", "out a", "recover a"}, rec.events)
	assert.Same(t, ErrInterrupt, env.Error())
}

func TestWarden_InterruptBeforeFirstStage(t *testing.T) {
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec}

	w := newTestWarden(t, []any{a})
	env := NewEnv()
	env.SetInterrupted(true)

	err := w.Call(context.Background(), env)
	require.ErrorIs(t, err, ErrInterrupt)
	assert.Empty(t, rec.events)
}

func TestWarden_ContextCancellation(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	a := &testStage{name: "a", rec: rec, onCall: func(Env) { cancel() }}
	b := &testStage{name: "b", rec: rec}

	w := newTestWarden(t, []any{a, b})

	err := w.Call(ctx, NewEnv())
	require.ErrorIs(t, err, ErrInterrupt)
	assert.Equal(t, []string{"in a", "out a", "recover a"}, rec.events)
}

func TestWarden_ExitErrorSkipsRecovery(t *testing.T) {
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec}
	b := &testStage{name: "b", rec: rec, failWith: &ExitError{Code: 3}}

	w := newTestWarden(t, []any{a, b})
	env := NewEnv()

	err := w.Call(context.Background(), env)
	require.Error(t, err)

	var exit *ExitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 3, exit.Code)

	// No recovery pass and no recorded env error.
	assert.Equal(t, []string{"in a", "out a", "in b"}, rec.events)
	assert.Nil(t, env.Error())
}

func TestWarden_FuncStage(t *testing.T) {
	var called bool
	fn := func(ctx context.Context, env Env) error {
		called = true
		env["payload"] = "set"
		return nil
	}

	w := newTestWarden(t, []any{fn})
	env := NewEnv()

	require.NoError(t, w.Call(context.Background(), env))
	assert.True(t, called)
	assert.Equal(t, "set", env["payload"])

	// A func descriptor finalizes to a single stage without trigger wrapping.
	assert.Equal(t, 1, w.Entered())
}

func TestNewWarden_InvalidStage(t *testing.T) {
	_, err := NewWarden(nil, nil, []any{42})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestWarden_ErrorNotDoubleRecorded(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{}
	a := &testStage{name: "a", rec: rec, failWith: boom}

	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	w, err := NewWarden(logger, nil, []any{a})
	require.NoError(t, err)

	env := NewEnv()
	// Pre-record the same error object, as a parent pipeline would have.
	env[EnvError] = boom

	require.Error(t, w.Call(context.Background(), env))
	assert.Zero(t, strings.Count(logBuf.String(), "pipeline failure"))
}
